package api

import "errors"

// InvoiceRequest creates the bare invoice record (legacy two-call flow).
type InvoiceRequest struct {
	UserID    int64  `json:"userId"`
	CardID    int64  `json:"cardId"`
	CompanyID int64  `json:"companyId"`
	CountryID int64  `json:"countryId"`
	Path      string `json:"path"`
	FileName  string `json:"fileName"`
}

func (r InvoiceRequest) Validate() error {
	if r.UserID <= 0 || r.CardID <= 0 || r.CompanyID <= 0 || r.CountryID <= 0 {
		return errors.New("user, card, company and country ids must be positive")
	}
	if r.Path == "" || r.FileName == "" {
		return errors.New("document path and file name are required")
	}
	return nil
}

type InvoiceResponse struct {
	ID               int64  `json:"id"`
	UserName         string `json:"userName"`
	CardMaskedNumber string `json:"cardMaskedNumber"`
	CompanyName      string `json:"companyName"`
	CountryName      string `json:"countryName"`
	Path             string `json:"path"`
	FileName         string `json:"fileName"`
	Status           string `json:"status"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// InvoiceFieldRequest attaches the user-confirmed field set to an existing
// invoice (second half of the legacy flow).
type InvoiceFieldRequest struct {
	InvoiceID     int64   `json:"invoiceId"`
	VendorName    string  `json:"vendorName"`
	InvoiceDate   string  `json:"invoiceDate"`
	TotalAmount   float64 `json:"totalAmount"`
	Currency      string  `json:"currency"`
	Concept       string  `json:"concept"`
	CategoryID    int64   `json:"categoryId"`
	CostCenterID  *int64  `json:"costCenterId"`
	CountryID     *int64  `json:"countryId,omitempty"`
	ClientVisited string  `json:"clientVisited"`
	Notes         string  `json:"notes"`
}

func (r InvoiceFieldRequest) Validate() error {
	if r.InvoiceID <= 0 {
		return errors.New("invoice id must be positive")
	}
	if r.CategoryID <= 0 {
		return errors.New("category id must be positive")
	}
	return nil
}

// CompleteInvoiceRequest creates invoice and field detail in a single call.
// Dates use the backend's "2006-01-02" wire format.
type CompleteInvoiceRequest struct {
	UserID        int64   `json:"userId"`
	CompanyID     int64   `json:"companyId"`
	CountryID     int64   `json:"countryId"`
	CardID        int64   `json:"cardId"`
	Path          string  `json:"path"`
	FileName      string  `json:"fileName"`
	VendorName    string  `json:"vendorName"`
	InvoiceDate   string  `json:"invoiceDate"`
	TotalAmount   float64 `json:"totalAmount"`
	Currency      string  `json:"currency"`
	Concept       string  `json:"concept"`
	CategoryID    int64   `json:"categoryId"`
	CostCenterID  *int64  `json:"costCenterId"`
	ClientVisited string  `json:"clientVisited"`
	Notes         string  `json:"notes"`
}

func (r CompleteInvoiceRequest) Validate() error {
	if r.UserID <= 0 || r.CardID <= 0 || r.CompanyID <= 0 || r.CountryID <= 0 || r.CategoryID <= 0 {
		return errors.New("user, card, company, country and category ids must be positive")
	}
	return nil
}

// UpdateInvoiceRequest edits an existing invoice in a single call. ID is the
// expense line id, InvoiceID the parent invoice.
type UpdateInvoiceRequest struct {
	InvoiceID     int64   `json:"idInvoice"`
	ID            int64   `json:"id"`
	CountryID     int64   `json:"countryId"`
	VendorName    string  `json:"vendorName"`
	InvoiceDate   string  `json:"invoiceDate"`
	TotalAmount   float64 `json:"totalAmount"`
	Currency      string  `json:"currency"`
	Concept       string  `json:"concept"`
	CategoryID    int64   `json:"categoryId"`
	CostCenterID  *int64  `json:"costCenterId"`
	ClientVisited string  `json:"clientVisited"`
	Notes         string  `json:"notes"`
}

func (r UpdateInvoiceRequest) Validate() error {
	if r.InvoiceID <= 0 || r.ID <= 0 {
		return errors.New("invoice and expense ids must be positive")
	}
	if r.CategoryID <= 0 {
		return errors.New("category id must be positive")
	}
	return nil
}
