package card

import "strings"

// Card is a payment instrument belonging to a user and a company.
type Card struct {
	ID               int64   `json:"id"`
	MaskedCardNumber string  `json:"maskedCardNumber"`
	HolderName       string  `json:"holderName"`
	CardType         string  `json:"cardType"`
	ExpirationDate   string  `json:"expirationDate"`
	IssuerBank       string  `json:"issuerBank"`
	CreditLimit      float64 `json:"creditLimit"`
	Status           string  `json:"status"`
	Description      string  `json:"description"`
	UserName         string  `json:"userName"`
	CompanyName      string  `json:"companyName"`
	CompanyID        int64   `json:"companyId"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

const StatusActive = "ACTIVE"

// IsSelectable reports whether the card may be attached to a new invoice.
// Only active cards qualify.
func (c Card) IsSelectable() bool {
	return strings.EqualFold(c.Status, StatusActive)
}
