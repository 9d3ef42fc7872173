package invoiceform

import "time"

// Form owns an editable field set plus the errors of its last validation.
// Changing a field clears that field's error only; other errors stay until
// the next full Validate.
type Form struct {
	Fields Fields

	mode   Mode
	errors []FieldError
	now    func() time.Time
}

func NewForm(mode Mode) *Form {
	return &Form{mode: mode, now: time.Now}
}

// Prefill overwrites the field set wholesale, e.g. from OCR-extracted data or
// an expense being edited, and discards any previous errors.
func (f *Form) Prefill(fields Fields) {
	f.Fields = fields
	f.errors = nil
}

// Validate runs the rules and records the result. Returns true when the form
// may be submitted.
func (f *Form) Validate() bool {
	f.errors = Validate(f.Fields, f.mode, f.now())
	return len(f.errors) == 0
}

// Errors returns the recorded errors in field order.
func (f *Form) Errors() []FieldError {
	return f.errors
}

// FieldError returns the message attached to the named field, or "".
func (f *Form) FieldError(field string) string {
	for _, e := range f.errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// SetString updates a string-valued field and clears its pending error.
func (f *Form) SetString(field, value string) {
	switch field {
	case FieldVendorName:
		f.Fields.VendorName = value
	case FieldInvoiceDate:
		f.Fields.InvoiceDate = value
	case FieldTotalAmount:
		f.Fields.TotalAmount = value
	case FieldCurrency:
		f.Fields.Currency = value
	case FieldConcept:
		f.Fields.Concept = value
	case FieldClientVisited:
		f.Fields.ClientVisited = value
	case FieldNotes:
		f.Fields.Notes = value
	default:
		return
	}
	f.clearError(field)
}

// SetID updates an id-valued field and clears its pending error.
func (f *Form) SetID(field string, value int64) {
	switch field {
	case FieldCountry:
		f.Fields.CountryID = value
	case FieldCard:
		f.Fields.CardID = value
	case FieldCategory:
		f.Fields.CategoryID = value
	case FieldCostCenter:
		f.Fields.CostCenterID = value
	default:
		return
	}
	f.clearError(field)
}

func (f *Form) clearError(field string) {
	kept := f.errors[:0]
	for _, e := range f.errors {
		if e.Field != field {
			kept = append(kept, e)
		}
	}
	f.errors = kept
}
