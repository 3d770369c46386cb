package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/defent/order-intake/internal/captcha"
	"github.com/defent/order-intake/internal/dal/postgres"
	orderrepo "github.com/defent/order-intake/internal/dal/repositories/order/postgres"
	reportrepo "github.com/defent/order-intake/internal/dal/repositories/report/postgres"
	"github.com/defent/order-intake/internal/fulfillment"
	"github.com/defent/order-intake/internal/geocode"
	"github.com/defent/order-intake/internal/metrics"
	"github.com/defent/order-intake/internal/otel"
	"github.com/defent/order-intake/internal/service/services/ordersvc"
	"github.com/defent/order-intake/internal/service/services/reportsvc"
	"github.com/defent/order-intake/internal/servicearea"
	"github.com/defent/order-intake/internal/sheets"
	httptransport "github.com/defent/order-intake/internal/transport/http"
	"github.com/defent/order-intake/internal/worker/renewal"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	reportSvc      *reportsvc.ReportService
	renewalWorker  *renewal.Worker
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()

	orderRepo := orderrepo.NewPostgresOrderRepository(postgresClient)
	reportRepo := reportrepo.NewPostgresReportRepository(postgresClient)

	geocoder := geocode.NewClient()
	gate := servicearea.NewGate()
	registry := metrics.NewRegistry()

	orderSvcOpts := []ordersvc.Option{
		ordersvc.WithRepository(orderRepo),
		ordersvc.WithVerifier(geocoder),
		ordersvc.WithAreaGate(gate),
		ordersvc.WithMetrics(registry),
	}

	// The spreadsheet export is best effort. Without credentials the
	// service runs with the export disabled.
	sheetsClient, err := sheets.NewClient(context.Background())
	if err != nil {
		slog.Warn("Spreadsheet export disabled", "error", err)
	} else {
		orderSvcOpts = append(orderSvcOpts, ordersvc.WithExporter(sheetsClient))
	}

	orderSvc := ordersvc.MustNewOrderService(orderSvcOpts...)

	reportSvc := reportsvc.MustNewReportService(
		reportsvc.WithRepository(reportRepo),
		reportsvc.WithCaptcha(captcha.NewVerifier()),
	)

	renewalWorker := renewal.NewWorker(orderRepo, fulfillment.NewClient(), registry)

	transport := httptransport.NewHTTPTransport(orderSvc, reportSvc, registry)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		reportSvc:      reportSvc,
		renewalWorker:  renewalWorker,
		transport:      transport,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.renewalWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()
	a.renewalWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
