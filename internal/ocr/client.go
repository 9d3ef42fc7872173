package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/datum-redsoft/expense-reports/internal"
)

// InvoiceFields is the structured field set the OCR service extracts from an
// invoice image. Amounts and dates arrive as strings exactly as recognized;
// the form validator decides whether they are usable.
type InvoiceFields struct {
	VendorName  string `json:"vendorName"`
	InvoiceDate string `json:"invoiceDate"`
	TotalAmount string `json:"totalAmount"`
	Currency    string `json:"currency"`
}

type response struct {
	Status       string         `json:"status"`
	OCRText      string         `json:"ocr_text"`
	InvoiceData  *InvoiceFields `json:"invoice_data"`
	ProcessingMS int64          `json:"processing_time_ms"`
	ErrorMessage string         `json:"error_message"`
}

// Result is a successful extraction: the fields plus the raw recognized text
// and how long the service took.
type Result struct {
	Fields       InvoiceFields
	OCRText      string
	ProcessingMS int64
}

// User-facing failure copy, shown verbatim in the capture flow.
const (
	msgIncomplete = "No se pudieron extraer los datos de la factura. Los datos están incompletos."
	msgRetry      = "Por favor, intente de nuevo con una imagen más clara."
	msgFallback   = "No es posible capturar los datos de la factura"
	msgConnection = "Error de conexión. No es posible procesar la imagen en este momento. Por favor, intente de nuevo."
)

// Client submits raw image bytes to the OCR service. No retry is performed
// here; the caller resubmits manually.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Analyze posts the image with its native content type and parses the
// status-tagged response. Every failure path returns a message suitable for
// direct display.
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(image))
	if err != nil {
		return nil, internal.NewInternalError("failed to build OCR request", err)
	}
	req.Header.Set("Content-Type", mimeType)

	c.logger.Info("submitting image for OCR analysis", "mime_type", mimeType, "size", len(image))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("OCR request failed", "error", err)
		return nil, internal.NewExtractionError(msgConnection, internal.ErrCodeExtractionFailed).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("OCR service returned error status", "status", resp.StatusCode)
		return nil, internal.NewExtractionError(
			fmt.Sprintf("Error del servidor (%d): %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			internal.ErrCodeExtractionFailed)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, internal.NewExtractionError(msgConnection, internal.ErrCodeExtractionFailed).WithCause(err)
	}

	c.logger.Info("OCR analysis completed",
		"status", parsed.Status,
		"processing_time_ms", parsed.ProcessingMS,
		"elapsed_ms", time.Since(start).Milliseconds())

	if parsed.Status != "ok" && parsed.Status != "success" {
		message := parsed.ErrorMessage
		if message == "" {
			message = msgFallback
		}
		return nil, internal.NewExtractionError(
			fmt.Sprintf("%s. %s", message, msgRetry),
			internal.ErrCodeExtractionFailed)
	}

	if parsed.InvoiceData == nil {
		return nil, internal.NewExtractionError(msgIncomplete, internal.ErrCodeExtractionIncomplete)
	}

	return &Result{
		Fields:       *parsed.InvoiceData,
		OCRText:      parsed.OCRText,
		ProcessingMS: parsed.ProcessingMS,
	}, nil
}
