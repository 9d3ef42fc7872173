package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/api"
	"github.com/datum-redsoft/expense-reports/internal/export"
	"github.com/datum-redsoft/expense-reports/internal/imagestore"
	"github.com/datum-redsoft/expense-reports/internal/invoice"
	"github.com/datum-redsoft/expense-reports/internal/notify"
	"github.com/datum-redsoft/expense-reports/internal/ocr"
	"github.com/datum-redsoft/expense-reports/internal/report"
	"github.com/datum-redsoft/expense-reports/internal/snapshot"
	"github.com/datum-redsoft/expense-reports/internal/transport"
	"github.com/datum-redsoft/expense-reports/internal/transport/rest"
	"github.com/datum-redsoft/expense-reports/pkg/logger"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the backend-for-frontend server the report screens talk to`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies wires every gateway and service behind the REST surface.
type Dependencies struct {
	Config   *internal.Config
	Router   *chi.Mux
	Logger   *slog.Logger
	Backend  *api.Client
	Images   *imagestore.Gateway
	OCR      *ocr.Client
	Bus      *notify.Bus
	Snapshot *snapshot.Store
	Reports  *report.Service
	Invoices *invoice.Service
	Exporter *export.Exporter
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)

	rest.RegisterAllRoutes(deps.Router,
		rest.NewCatalogHandler(base, deps.Backend),
		rest.NewReportsHandler(base, deps.Reports, deps.Exporter),
		rest.NewInvoicesHandler(base, deps.Invoices),
		rest.NewNotificationsHandler(base, deps.Bus),
		rest.NewHealthHandler(base),
		deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	log := logger.LoggerWrapper()

	backend := api.NewClient(api.Config{
		BaseURL: config.Backend.BaseURL,
		Token:   config.Backend.Token,
		Timeout: config.Backend.Timeout,
	}, log)

	images := imagestore.NewGateway(imagestore.Config{
		BaseURL:         config.ImageStore.BaseURL,
		DestinationPath: config.ImageStore.DestinationPath,
		Timeout:         config.ImageStore.Timeout,
	}, log)

	ocrClient := ocr.NewClient(ocr.Config{
		BaseURL: config.OCR.BaseURL,
		Timeout: config.OCR.Timeout,
	}, log)

	bus := notify.NewBus(config.Notify.TTL, log)

	var snap *snapshot.Store
	if config.Snapshot.Enabled {
		snap, err = snapshot.Open(config.Snapshot.Path, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
	}

	reports := newReportService(backend, snap, bus, log)

	return &Dependencies{
		Config:   config,
		Router:   chi.NewRouter(),
		Logger:   log,
		Backend:  backend,
		Images:   images,
		OCR:      ocrClient,
		Bus:      bus,
		Snapshot: snap,
		Reports:  reports,
		Invoices: invoice.NewService(backend, images, ocrClient, bus, log),
		Exporter: export.NewExporter(log),
	}, nil
}

// newReportService keeps the typed-nil snapshot pointer from leaking into the
// service's interface field.
func newReportService(backend *api.Client, snap *snapshot.Store, bus *notify.Bus, log *slog.Logger) *report.Service {
	if snap == nil {
		return report.NewService(backend, nil, bus, log)
	}
	return report.NewService(backend, snap, bus, log)
}
