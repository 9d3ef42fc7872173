package ocr_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/ocr"
)

func newTestClient(handler http.HandlerFunc) (*ocr.Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := ocr.NewClient(ocr.Config{BaseURL: server.URL, Timeout: 5 * time.Second}, logger)
	return client, server
}

var image = []byte{0xFF, 0xD8, 0xFF, 0xE0}

var _ = Describe("Client", func() {
	Describe("Analyze", func() {
		It("posts the raw image with its native content type", func() {
			var gotMime string
			var gotBody []byte
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/ocr"))
				gotMime = r.Header.Get("Content-Type")
				gotBody, _ = io.ReadAll(r.Body)
				fmt.Fprint(w, `{"status":"ok","ocr_text":"FACTURA","invoice_data":{"vendorName":"Hotel Central","invoiceDate":"2025-03-10","totalAmount":"150.50","currency":"USD"},"processing_time_ms":820}`)
			})
			defer server.Close()

			result, err := client.Analyze(context.Background(), image, "image/jpeg")

			Expect(err).ToNot(HaveOccurred())
			Expect(gotMime).To(Equal("image/jpeg"))
			Expect(gotBody).To(Equal(image))
			Expect(result.Fields.VendorName).To(Equal("Hotel Central"))
			Expect(result.Fields.TotalAmount).To(Equal("150.50"))
			Expect(result.OCRText).To(Equal("FACTURA"))
			Expect(result.ProcessingMS).To(Equal(int64(820)))
		})

		It("accepts the alternate success status tag", func() {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"status":"success","invoice_data":{"vendorName":"Taxi"}}`)
			})
			defer server.Close()

			result, err := client.Analyze(context.Background(), image, "image/png")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Fields.VendorName).To(Equal("Taxi"))
		})

		It("flags a success without extracted fields as incomplete", func() {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"status":"ok","ocr_text":"garbled"}`)
			})
			defer server.Close()

			_, err := client.Analyze(context.Background(), image, "image/jpeg")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeExtractionIncomplete))
			Expect(appErr.Message).To(Equal("No se pudieron extraer los datos de la factura. Los datos están incompletos."))
		})

		It("relays the service's error message with retry guidance", func() {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"status":"error","error_message":"Imagen demasiado borrosa"}`)
			})
			defer server.Close()

			_, err := client.Analyze(context.Background(), image, "image/jpeg")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Imagen demasiado borrosa. Por favor, intente de nuevo con una imagen más clara."))
		})

		It("falls back to generic copy when the service sends no message", func() {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"status":"error"}`)
			})
			defer server.Close()

			_, err := client.Analyze(context.Background(), image, "image/jpeg")

			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Message).To(Equal("No es posible capturar los datos de la factura. Por favor, intente de nuevo con una imagen más clara."))
		})

		It("reports a non-2xx status as a server error", func() {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			})
			defer server.Close()

			_, err := client.Analyze(context.Background(), image, "image/jpeg")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(HavePrefix("Error del servidor (503)"))
		})

		It("reports a connection failure with the offline copy", func() {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
			server.Close()

			_, err := client.Analyze(context.Background(), image, "image/jpeg")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Error de conexión. No es posible procesar la imagen en este momento. Por favor, intente de nuevo."))
		})
	})
})
