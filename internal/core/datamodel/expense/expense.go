package expense

import "strings"

// Expense is one invoice line as reported by the backend. Field names mirror
// the REST payload; the client never mutates an expense, it only re-fetches.
type Expense struct {
	ID             int64   `json:"id"`
	InvoiceID      int64   `json:"idInvoice"`
	VendorName     string  `json:"vendorName"`
	Concept        string  `json:"concept"`
	Category       string  `json:"category"`
	CategoryID     int64   `json:"categoryId"`
	InvoiceDate    string  `json:"invoiceDate"`
	TotalAmount    float64 `json:"totalAmount"`
	Currency       string  `json:"currency"`
	CostCenterID   *int64  `json:"costCenterId"`
	CostCenterName *string `json:"costCenterName"`
	CountryID      *int64  `json:"countryId,omitempty"`
	ClientVisited  *string `json:"clientVisited"`
	Notes          *string `json:"notes"`
	Status         string  `json:"status"`
	Icon           string  `json:"icon"`
	Path           string  `json:"path,omitempty"`
	FileName       string  `json:"fileName,omitempty"`
}

// Group bundles all expenses of one card for one calendar month. Total and
// Count are server-derived; the client trusts them even when it narrows the
// expense list for display.
type Group struct {
	Month    string    `json:"month"`
	Total    float64   `json:"total"`
	Count    int       `json:"count"`
	Status   string    `json:"status"`
	Expenses []Expense `json:"expenses"`
}

// Group statuses are opaque display strings from the backend. The approval
// view only ever distinguishes these two.
const (
	GroupStatusPending  = "PENDIENTE"
	GroupStatusApproved = "APROBADO"
)

func (g Group) IsApproved() bool {
	return strings.EqualFold(g.Status, GroupStatusApproved)
}

func (g Group) IsPending() bool {
	return strings.EqualFold(g.Status, GroupStatusPending)
}
