package imagestore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/datum-redsoft/expense-reports/internal"
)

// MaxFileSize is the client-side upload cap, enforced before any network call.
const MaxFileSize = 10 << 20 // 10 MiB

// DefaultDestinationPath is the document store folder invoices land in.
const DefaultDestinationPath = "/okm:root/Facturas"

// allowedMimeTypes gates capture/upload input. Exact match, JPEG and PNG only.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

// Gateway moves invoice images to and from the document store through the
// backend's JSON upload and binary download endpoints.
type Gateway struct {
	baseURL         string
	destinationPath string
	httpClient      *http.Client
	logger          *slog.Logger
	now             func() time.Time
}

type Config struct {
	BaseURL         string
	DestinationPath string
	Timeout         time.Duration
}

type UploadResult struct {
	DocumentID string `json:"documentId"`
	FileName   string `json:"fileName"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
	UploadDate string `json:"uploadDate"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// Document is a downloaded image in a directly displayable form.
type Document struct {
	Data     []byte
	MimeType string
}

// DataURL renders the document as a data URI for inline display.
func (d Document) DataURL() string {
	mime := d.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(d.Data))
}

type uploadRequest struct {
	FileName        string `json:"fileName"`
	DestinationPath string `json:"destinationPath"`
	ImageData       string `json:"imageData"`
	Description     string `json:"description"`
	MimeType        string `json:"mimeType"`
}

func NewGateway(cfg Config, logger *slog.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	destination := cfg.DestinationPath
	if destination == "" {
		destination = DefaultDestinationPath
	}
	return &Gateway{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		destinationPath: destination,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          logger,
		now:             time.Now,
	}
}

// ValidateFile is the pre-network gate for user-selected files. It rejects
// anything that is not a JPEG/PNG under the size cap so bad input never
// reaches a gateway call.
func ValidateFile(mimeType string, size int64) error {
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return internal.NewInputError(
			fmt.Sprintf("unsupported file type %q, only JPEG and PNG images are accepted", mimeType),
			internal.ErrCodeFileTypeRejected)
	}
	if size > MaxFileSize {
		return internal.NewInputError(
			fmt.Sprintf("file of %d bytes exceeds the %d MiB limit", size, MaxFileSize>>20),
			internal.ErrCodeFileTooLarge)
	}
	return nil
}

// GenerateFileName derives a collision-resistant name from the upload instant
// and the original extension. Content is not deduplicated; every upload gets
// a fresh name.
func (g *Gateway) GenerateFileName(originalName string) string {
	ext := strings.TrimPrefix(filepath.Ext(originalName), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("factura_%d.%s", g.now().UnixMilli(), ext)
}

// Upload encodes the image, assigns it a generated filename and posts it to
// the document store. A response with success=false fails even under a 2xx
// status.
func (g *Gateway) Upload(ctx context.Context, data []byte, originalName, mimeType, description string) (*UploadResult, error) {
	if err := ValidateFile(mimeType, int64(len(data))); err != nil {
		return nil, err
	}

	fileName := g.GenerateFileName(originalName)
	if description == "" {
		description = "Factura - " + fileName
	}

	payload, err := json.Marshal(uploadRequest{
		FileName:        fileName,
		DestinationPath: g.destinationPath,
		ImageData:       base64.StdEncoding.EncodeToString(data),
		Description:     description,
		MimeType:        mimeType,
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to marshal upload request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/images/upload/json", bytes.NewReader(payload))
	if err != nil {
		return nil, internal.NewInternalError("failed to build upload request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	g.logger.Info("uploading invoice image",
		"file_name", fileName,
		"destination", g.destinationPath,
		"mime_type", mimeType,
		"size", len(data))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, internal.NewNetworkError("image upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, internal.NewTransportError(
			fmt.Sprintf("document store returned %d %s on upload", resp.StatusCode, http.StatusText(resp.StatusCode)),
			resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, internal.NewInternalError("failed to decode upload response", err)
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = "document store rejected the upload"
		}
		return nil, internal.NewTransportError(message, resp.StatusCode)
	}

	g.logger.Info("invoice image uploaded", "path", result.Path, "file_name", result.FileName)
	return &result, nil
}

// Download fetches a stored document's raw bytes for inline display.
func (g *Gateway) Download(ctx context.Context, path string) (*Document, error) {
	if path == "" {
		return nil, internal.NewValidationError("document path is required", internal.ErrCodeValidationFailed)
	}

	endpoint := g.baseURL + "/documents/download?path=" + url.QueryEscape(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, internal.NewInternalError("failed to build download request", err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, internal.NewNetworkError("document download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, internal.NewTransportError(
			fmt.Sprintf("document store returned %d %s for %s", resp.StatusCode, http.StatusText(resp.StatusCode), path),
			resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.NewInternalError("failed to read document body", err)
	}

	return &Document{Data: data, MimeType: resp.Header.Get("Content-Type")}, nil
}
