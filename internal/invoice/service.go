package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/api"
	"github.com/datum-redsoft/expense-reports/internal/imagestore"
	"github.com/datum-redsoft/expense-reports/internal/invoiceform"
	"github.com/datum-redsoft/expense-reports/internal/notify"
	"github.com/datum-redsoft/expense-reports/internal/ocr"
)

// BackendAPI is the slice of the remote gateway the capture flow consumes.
type BackendAPI interface {
	CreateCompleteInvoice(ctx context.Context, req api.CompleteInvoiceRequest) (*api.InvoiceResponse, error)
	UpdateCompleteInvoice(ctx context.Context, req api.UpdateInvoiceRequest) (*api.InvoiceResponse, error)
}

// ImageGateway moves invoice images to and from the document store.
type ImageGateway interface {
	Upload(ctx context.Context, data []byte, originalName, mimeType, description string) (*imagestore.UploadResult, error)
	Download(ctx context.Context, path string) (*imagestore.Document, error)
}

// Analyzer extracts invoice fields from an image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*ocr.Result, error)
}

// Service drives the capture and edit flows: gate the file, extract fields,
// validate the confirmed form, upload the image, persist the invoice.
type Service struct {
	api    BackendAPI
	images ImageGateway
	ocr    Analyzer
	bus    *notify.Bus
	logger *slog.Logger
}

func NewService(backend BackendAPI, images ImageGateway, analyzer Analyzer, bus *notify.Bus, logger *slog.Logger) *Service {
	return &Service{
		api:    backend,
		images: images,
		ocr:    analyzer,
		bus:    bus,
		logger: logger,
	}
}

// Analyze gates the file client-side, then submits it for extraction. The
// returned fields prefill the confirmation form; the user edits before
// submission.
func (s *Service) Analyze(ctx context.Context, image []byte, mimeType string) (*ocr.Result, error) {
	if err := imagestore.ValidateFile(mimeType, int64(len(image))); err != nil {
		s.logger.Warn("file rejected before OCR", "mime_type", mimeType, "size", len(image), "error", err)
		return nil, err
	}
	return s.ocr.Analyze(ctx, image, mimeType)
}

// SubmitInput is everything the create flow needs: the confirmed form, the
// identity context, and the invoice image.
type SubmitInput struct {
	Form      invoiceform.Fields
	UserID    int64
	CompanyID int64

	Image       []byte
	ImageName   string
	ImageMime   string
	Description string
}

// Submit validates the confirmed form, uploads the image, and creates the
// complete invoice in one backend call.
//
// If the invoice call fails after a successful upload, the stored image is
// orphaned; no compensating delete exists on the document store. The orphan
// is logged so accounting can clean up.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*api.InvoiceResponse, error) {
	if errs := invoiceform.Validate(in.Form, invoiceform.ModeCreate, timeNow()); len(errs) > 0 {
		return nil, fieldErrors(errs)
	}
	if in.UserID <= 0 || in.CompanyID <= 0 {
		return nil, internal.NewValidationError("user and company ids must be positive", internal.ErrCodeInvalidID)
	}

	upload, err := s.images.Upload(ctx, in.Image, in.ImageName, in.ImageMime, in.Description)
	if err != nil {
		s.publish(notify.TypeError, "No se pudo subir la imagen de la factura")
		return nil, err
	}

	req := api.CompleteInvoiceRequest{
		UserID:        in.UserID,
		CompanyID:     in.CompanyID,
		CountryID:     in.Form.CountryID,
		CardID:        in.Form.CardID,
		Path:          upload.Path,
		FileName:      upload.FileName,
		VendorName:    in.Form.VendorName,
		InvoiceDate:   in.Form.InvoiceDate,
		TotalAmount:   in.Form.Amount(),
		Currency:      in.Form.Currency,
		Concept:       in.Form.Concept,
		CategoryID:    in.Form.CategoryID,
		CostCenterID:  optionalID(in.Form.CostCenterID),
		ClientVisited: in.Form.ClientVisited,
		Notes:         in.Form.Notes,
	}

	resp, err := s.api.CreateCompleteInvoice(ctx, req)
	if err != nil {
		s.logger.Error("invoice creation failed after image upload, document orphaned",
			"path", upload.Path,
			"file_name", upload.FileName,
			"error", err)
		s.publish(notify.TypeError, "No se pudo guardar la factura")
		return nil, err
	}

	s.logger.Info("invoice created", "invoice_id", resp.ID, "file_name", resp.FileName)
	s.publish(notify.TypeSuccess, "Factura guardada exitosamente")
	return resp, nil
}

// UpdateInput carries the edit flow's form plus the identifiers of the line
// being edited.
type UpdateInput struct {
	Form      invoiceform.Fields
	InvoiceID int64
	ExpenseID int64
}

// Update validates the edited form and updates the invoice in one call. The
// stored image is untouched.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*api.InvoiceResponse, error) {
	if errs := invoiceform.Validate(in.Form, invoiceform.ModeEdit, timeNow()); len(errs) > 0 {
		return nil, fieldErrors(errs)
	}
	if in.InvoiceID <= 0 || in.ExpenseID <= 0 {
		return nil, internal.NewValidationError("invoice and expense ids must be positive", internal.ErrCodeInvalidID)
	}

	req := api.UpdateInvoiceRequest{
		InvoiceID:     in.InvoiceID,
		ID:            in.ExpenseID,
		CountryID:     in.Form.CountryID,
		VendorName:    in.Form.VendorName,
		InvoiceDate:   in.Form.InvoiceDate,
		TotalAmount:   in.Form.Amount(),
		Currency:      in.Form.Currency,
		Concept:       in.Form.Concept,
		CategoryID:    in.Form.CategoryID,
		CostCenterID:  optionalID(in.Form.CostCenterID),
		ClientVisited: in.Form.ClientVisited,
		Notes:         in.Form.Notes,
	}

	resp, err := s.api.UpdateCompleteInvoice(ctx, req)
	if err != nil {
		s.publish(notify.TypeError, "No se pudo actualizar la factura")
		return nil, err
	}

	s.logger.Info("invoice updated", "invoice_id", in.InvoiceID, "expense_id", in.ExpenseID)
	s.publish(notify.TypeSuccess, "Factura actualizada exitosamente")
	return resp, nil
}

// DownloadImage fetches a stored invoice image for display.
func (s *Service) DownloadImage(ctx context.Context, path string) (*imagestore.Document, error) {
	return s.images.Download(ctx, path)
}

func (s *Service) publish(kind notify.Type, message string) {
	if s.bus != nil {
		s.bus.Publish(kind, message)
	}
}

func fieldErrors(errs []invoiceform.FieldError) error {
	details := internal.ValidationErrors{}
	for _, e := range errs {
		details.Errors = append(details.Errors, internal.ValidationError{
			Field:   e.Field,
			Message: e.Message,
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}
	return internal.NewValidationError(fmt.Sprintf("%d campos inválidos", len(errs)), internal.ErrCodeValidationFailed).
		WithDetails(details)
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// timeNow is swapped in tests.
var timeNow = time.Now
