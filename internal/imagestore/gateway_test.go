package imagestore_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/imagestore"
)

func newTestGateway(handler http.HandlerFunc) (*imagestore.Gateway, *httptest.Server) {
	server := httptest.NewServer(handler)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	gateway := imagestore.NewGateway(imagestore.Config{
		BaseURL:         server.URL,
		DestinationPath: "/okm:root/Facturas",
		Timeout:         5 * time.Second,
	}, logger)
	return gateway, server
}

var jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE0}

var _ = Describe("ValidateFile", func() {
	It("accepts JPEG and PNG under the size cap", func() {
		Expect(imagestore.ValidateFile("image/jpeg", 1024)).To(Succeed())
		Expect(imagestore.ValidateFile("image/jpg", 1024)).To(Succeed())
		Expect(imagestore.ValidateFile("image/png", 1024)).To(Succeed())
	})

	It("rejects other mime types, including close relatives", func() {
		for _, mime := range []string{"image/gif", "image/webp", "application/pdf", "image/jpeg; charset=utf-8", ""} {
			err := imagestore.ValidateFile(mime, 1024)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue(), "expected rejection for %q", mime)
			Expect(appErr.Code).To(Equal(internal.ErrCodeFileTypeRejected))
		}
	})

	It("rejects files over the cap and accepts the boundary", func() {
		Expect(imagestore.ValidateFile("image/jpeg", imagestore.MaxFileSize)).To(Succeed())

		err := imagestore.ValidateFile("image/jpeg", imagestore.MaxFileSize+1)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeFileTooLarge))
	})
})

var _ = Describe("Gateway", func() {
	Describe("GenerateFileName", func() {
		It("keeps the original extension", func() {
			gateway, server := newTestGateway(nil)
			defer server.Close()

			Expect(gateway.GenerateFileName("scan.png")).To(MatchRegexp(`^factura_\d+\.png$`))
		})

		It("defaults to jpg when the name has no extension", func() {
			gateway, server := newTestGateway(nil)
			defer server.Close()

			Expect(gateway.GenerateFileName("scan")).To(MatchRegexp(`^factura_\d+\.jpg$`))
		})
	})

	Describe("Upload", func() {
		It("posts the base64 payload with a generated name and destination", func() {
			var got map[string]interface{}
			gateway, server := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/images/upload/json"))
				Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())
				fmt.Fprint(w, `{"success":true,"documentId":"doc-1","fileName":"factura_1.jpg","path":"/okm:root/Facturas/factura_1.jpg"}`)
			})
			defer server.Close()

			result, err := gateway.Upload(context.Background(), jpeg, "scan.jpg", "image/jpeg", "")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Path).To(Equal("/okm:root/Facturas/factura_1.jpg"))

			Expect(got["fileName"]).To(MatchRegexp(`^factura_\d+\.jpg$`))
			Expect(got["destinationPath"]).To(Equal("/okm:root/Facturas"))
			Expect(got["mimeType"]).To(Equal("image/jpeg"))
			Expect(got["description"]).To(HavePrefix("Factura - factura_"))

			decoded, decodeErr := base64.StdEncoding.DecodeString(got["imageData"].(string))
			Expect(decodeErr).ToNot(HaveOccurred())
			Expect(decoded).To(Equal(jpeg))
		})

		It("passes an explicit description through unchanged", func() {
			var got map[string]interface{}
			gateway, server := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())
				fmt.Fprint(w, `{"success":true}`)
			})
			defer server.Close()

			_, err := gateway.Upload(context.Background(), jpeg, "scan.jpg", "image/jpeg", "Cena con cliente")

			Expect(err).ToNot(HaveOccurred())
			Expect(got["description"]).To(Equal("Cena con cliente"))
		})

		It("rejects an unsupported file before any network call", func() {
			calls := 0
			gateway, server := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
				calls++
			})
			defer server.Close()

			_, err := gateway.Upload(context.Background(), jpeg, "scan.gif", "image/gif", "")

			Expect(err).To(HaveOccurred())
			Expect(calls).To(BeZero())
		})

		It("fails when the store reports success=false under a 2xx", func() {
			gateway, server := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"success":false,"message":"quota exceeded"}`)
			})
			defer server.Close()

			_, err := gateway.Upload(context.Background(), jpeg, "scan.jpg", "image/jpeg", "")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("quota exceeded"))
		})

		It("relays a non-2xx upload status", func() {
			gateway, server := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			})
			defer server.Close()

			_, err := gateway.Upload(context.Background(), jpeg, "scan.jpg", "image/jpeg", "")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Download", func() {
		It("fetches the document by escaped path and keeps its content type", func() {
			gateway, server := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/documents/download"))
				Expect(r.URL.Query().Get("path")).To(Equal("/okm:root/Facturas/factura 1.jpg"))
				w.Header().Set("Content-Type", "image/png")
				w.Write(jpeg)
			})
			defer server.Close()

			doc, err := gateway.Download(context.Background(), "/okm:root/Facturas/factura 1.jpg")

			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Data).To(Equal(jpeg))
			Expect(doc.MimeType).To(Equal("image/png"))
		})

		It("requires a path", func() {
			gateway, server := newTestGateway(nil)
			defer server.Close()

			_, err := gateway.Download(context.Background(), "")

			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Document", func() {
	It("renders a data URL with the stored mime type", func() {
		doc := imagestore.Document{Data: jpeg, MimeType: "image/png"}

		Expect(doc.DataURL()).To(Equal("data:image/png;base64," + base64.StdEncoding.EncodeToString(jpeg)))
	})

	It("defaults the mime type to JPEG", func() {
		doc := imagestore.Document{Data: jpeg}

		Expect(doc.DataURL()).To(HavePrefix("data:image/jpeg;base64,"))
	})
})
