package rest

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/imagestore"
	"github.com/datum-redsoft/expense-reports/internal/invoice"
	"github.com/datum-redsoft/expense-reports/internal/invoiceform"
	"github.com/datum-redsoft/expense-reports/internal/transport"
)

// InvoicesHandler serves invoice capture: OCR extraction, create/update
// submission, and stored document retrieval.
type InvoicesHandler struct {
	*transport.BaseHandler
	invoices *invoice.Service
}

func NewInvoicesHandler(base *transport.BaseHandler, invoices *invoice.Service) *InvoicesHandler {
	return &InvoicesHandler{BaseHandler: base, invoices: invoices}
}

// Analyze runs OCR over the raw image body. The Content-Type header carries
// the image MIME type, the same way the capture screen sends it.
func (h *InvoicesHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	mimeType := r.Header.Get("Content-Type")

	image, err := io.ReadAll(io.LimitReader(r.Body, imagestore.MaxFileSize+1))
	if err != nil {
		h.WriteStatusError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := h.invoices.Analyze(r.Context(), image, mimeType)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// invoiceForm mirrors the capture form fields as submitted by the client.
type invoiceForm struct {
	CountryID     int64  `json:"countryId"`
	CardID        int64  `json:"cardId"`
	VendorName    string `json:"vendorName"`
	InvoiceDate   string `json:"invoiceDate"`
	TotalAmount   string `json:"totalAmount"`
	Currency      string `json:"currency"`
	Concept       string `json:"concept"`
	CategoryID    int64  `json:"categoryId"`
	CostCenterID  int64  `json:"costCenterId"`
	ClientVisited string `json:"clientVisited"`
	Notes         string `json:"notes"`
}

func (f invoiceForm) fields() invoiceform.Fields {
	return invoiceform.Fields{
		CountryID:     f.CountryID,
		CardID:        f.CardID,
		VendorName:    f.VendorName,
		InvoiceDate:   f.InvoiceDate,
		TotalAmount:   f.TotalAmount,
		Currency:      f.Currency,
		Concept:       f.Concept,
		CategoryID:    f.CategoryID,
		CostCenterID:  f.CostCenterID,
		ClientVisited: f.ClientVisited,
		Notes:         f.Notes,
	}
}

type createInvoiceRequest struct {
	invoiceForm
	UserID      int64  `json:"userId"`
	CompanyID   int64  `json:"companyId"`
	ImageData   string `json:"imageData"`
	ImageName   string `json:"imageName"`
	ImageMime   string `json:"imageMime"`
	Description string `json:"description"`
}

// Create validates the form, uploads the invoice image and submits the
// complete invoice to the backend in one shot.
func (h *InvoicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteStatusError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		h.WriteError(w, internal.NewValidationError("imageData must be base64-encoded", internal.ErrCodeValidationFailed))
		return
	}

	if req.UserID == 0 {
		req.UserID = internal.UserIDFromContext(r.Context())
	}

	resp, err := h.invoices.Submit(r.Context(), invoice.SubmitInput{
		Form:        req.fields(),
		UserID:      req.UserID,
		CompanyID:   req.CompanyID,
		Image:       image,
		ImageName:   req.ImageName,
		ImageMime:   req.ImageMime,
		Description: req.Description,
	})
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

type updateInvoiceRequest struct {
	invoiceForm
	InvoiceID int64 `json:"idInvoice"`
	ExpenseID int64 `json:"id"`
}

// Update validates the edit form and pushes the changed fields upstream. The
// stored image is untouched.
func (h *InvoicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteStatusError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.invoices.Update(r.Context(), invoice.UpdateInput{
		Form:      req.fields(),
		InvoiceID: req.InvoiceID,
		ExpenseID: req.ExpenseID,
	})
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// DownloadImage fetches a stored invoice image by its document path and
// returns it as a data URL, ready for inline display.
func (h *InvoicesHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.WriteStatusError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	doc, err := h.invoices.DownloadImage(r.Context(), path)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"mimeType": doc.MimeType,
		"dataUrl":  doc.DataURL(),
	})
}
