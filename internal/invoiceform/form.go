package invoiceform

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Field names used for error attachment. They match the form control names so
// a surface can place each message next to its input.
const (
	FieldCountry       = "country"
	FieldCard          = "cardId"
	FieldVendorName    = "vendorName"
	FieldInvoiceDate   = "invoiceDate"
	FieldTotalAmount   = "totalAmount"
	FieldCurrency      = "currency"
	FieldConcept       = "concept"
	FieldCategory      = "category"
	FieldCostCenter    = "costCenter"
	FieldClientVisited = "clientVisited"
	FieldNotes         = "notes"
)

// Validation messages shown verbatim next to the field.
const (
	msgCountryRequired  = "El país es obligatorio"
	msgCardRequired     = "La tarjeta es obligatoria"
	msgVendorRequired   = "El nombre del proveedor es obligatorio"
	msgDateRequired     = "La fecha de factura es obligatoria"
	msgDateCurrentMonth = "La fecha debe pertenecer al mes y año actual."
	msgAmountRequired   = "El monto total es obligatorio"
	msgAmountPositive   = "El monto debe ser un número mayor a 0"
	msgCurrencyRequired = "La moneda es obligatoria"
	msgConceptRequired  = "El concepto es obligatorio"
	msgCategoryRequired = "La categoría es obligatoria"
)

// DateLayout is the wire format invoice dates use.
const DateLayout = "2006-01-02"

// Mode distinguishes the create flow, which additionally requires a card
// selection, from the edit flow. All other rules are identical.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Fields is the user-editable invoice field set, as typed: amounts stay
// strings until validation decides they parse.
type Fields struct {
	CountryID     int64
	CardID        int64
	VendorName    string
	InvoiceDate   string
	TotalAmount   string
	Currency      string
	Concept       string
	CategoryID    int64
	CostCenterID  int64
	ClientVisited string
	Notes         string
}

// FieldError attaches one message to one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate applies the shared create/edit rules and returns the errors in
// field order. Optional fields (cost center, client visited, notes) are never
// validated. An empty result means the form may be submitted.
func Validate(f Fields, mode Mode, now time.Time) []FieldError {
	var errs []FieldError

	if f.CountryID <= 0 {
		errs = append(errs, FieldError{FieldCountry, msgCountryRequired})
	}
	if mode == ModeCreate && f.CardID <= 0 {
		errs = append(errs, FieldError{FieldCard, msgCardRequired})
	}
	if strings.TrimSpace(f.VendorName) == "" {
		errs = append(errs, FieldError{FieldVendorName, msgVendorRequired})
	}

	if f.InvoiceDate == "" {
		errs = append(errs, FieldError{FieldInvoiceDate, msgDateRequired})
	} else if date, err := time.Parse(DateLayout, f.InvoiceDate); err != nil {
		errs = append(errs, FieldError{FieldInvoiceDate, msgDateCurrentMonth})
	} else if date.Year() != now.Year() || date.Month() != now.Month() {
		// time-of-day is ignored, only year and month must match
		errs = append(errs, FieldError{FieldInvoiceDate, msgDateCurrentMonth})
	}

	if strings.TrimSpace(f.TotalAmount) == "" {
		errs = append(errs, FieldError{FieldTotalAmount, msgAmountRequired})
	} else if amount, err := strconv.ParseFloat(strings.TrimSpace(f.TotalAmount), 64); err != nil ||
		math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		errs = append(errs, FieldError{FieldTotalAmount, msgAmountPositive})
	}

	if f.Currency == "" {
		errs = append(errs, FieldError{FieldCurrency, msgCurrencyRequired})
	}
	if strings.TrimSpace(f.Concept) == "" {
		errs = append(errs, FieldError{FieldConcept, msgConceptRequired})
	}
	if f.CategoryID <= 0 {
		errs = append(errs, FieldError{FieldCategory, msgCategoryRequired})
	}

	return errs
}

// Amount returns the parsed total. Only meaningful after Validate passed.
func (f Fields) Amount() float64 {
	amount, _ := strconv.ParseFloat(strings.TrimSpace(f.TotalAmount), 64)
	return amount
}
