package rest

import (
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/datum-redsoft/expense-reports/internal/transport/middleware"
)

// RegisterAllRoutes mounts the BFF surface: catalog lookups, the report
// views, the capture/edit flows, and the shared notification feed.
func RegisterAllRoutes(router *chi.Mux, catalogHandler *CatalogHandler, reportsHandler *ReportsHandler, invoicesHandler *InvoicesHandler, notificationsHandler *NotificationsHandler, healthHandler *HealthHandler, logger *slog.Logger) {
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.UserContext)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/ping", healthHandler.Ping)

		r.Get("/users", catalogHandler.ListUsers)
		r.Get("/users/{userID}", catalogHandler.GetUser)
		r.Get("/cards/user/{userID}", catalogHandler.ListUserCards)
		r.Get("/countries", catalogHandler.ListCountries)
		r.Get("/categories", catalogHandler.ListCategories)
		r.Get("/cost-centers", catalogHandler.ListCostCenters)

		r.Route("/cards/{cardID}/reports", func(rr chi.Router) {
			rr.Get("/", reportsHandler.ListReports)
			rr.Get("/detail", reportsHandler.GroupDetail)
			rr.Post("/approve", reportsHandler.Approve)
			rr.Get("/export", reportsHandler.Export)
		})

		r.Post("/ocr", invoicesHandler.Analyze)
		r.Post("/invoices", invoicesHandler.Create)
		r.Put("/invoices", invoicesHandler.Update)
		r.Get("/documents/download", invoicesHandler.DownloadImage)

		r.Get("/notifications", notificationsHandler.Active)
		r.Delete("/notifications/{id}", notificationsHandler.Dismiss)
	})
}
