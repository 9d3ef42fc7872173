package user

// Country as returned by the catalog endpoints.
type Country struct {
	ID      int64  `json:"id"`
	ISOCode string `json:"isoCode"`
	Name    string `json:"name"`
}

type Company struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Country Country `json:"country"`
	Address string  `json:"address"`
}

type User struct {
	ID                int64   `json:"id"`
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	KeycloakID        string  `json:"keycloakId"`
	Role              string  `json:"role"`
	Company           Company `json:"company"`
	Country           Country `json:"country"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
	Active            bool    `json:"active"`
	Admin             bool    `json:"admin"`
	RoleDisplayName   string  `json:"roleDisplayName"`
	StatusDisplayName string  `json:"statusDisplayName"`
}
