package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/defent/order-intake/internal/metrics"
	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/defent/order-intake/internal/service/models/report"
	"github.com/defent/order-intake/internal/service/services/ordersvc"
	"github.com/defent/order-intake/internal/service/services/reportsvc"
	createorder "github.com/defent/order-intake/internal/transport/http/create_order"
	createreport "github.com/defent/order-intake/internal/transport/http/create_report"
	listorders "github.com/defent/order-intake/internal/transport/http/list_orders"
	listreports "github.com/defent/order-intake/internal/transport/http/list_reports"
	reportsummary "github.com/defent/order-intake/internal/transport/http/report_summary"
	updateapproval "github.com/defent/order-intake/internal/transport/http/update_approval"
	updatesubscription "github.com/defent/order-intake/internal/transport/http/update_subscription"
	"github.com/defent/order-intake/pkg/http/middleware/trace"
	"github.com/defent/order-intake/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type orderService interface {
	Admit(ctx context.Context, req ordersvc.AdmitOrderRequest) (*order.Order, *ordersvc.Rejection, error)
	ListRecent(ctx context.Context, page, limit int) (*ordersvc.RecentOrders, error)
	SetSubscription(ctx context.Context, orderID uuid.UUID, isActive bool) (*order.Order, error)
}

type reportService interface {
	Create(ctx context.Context, req reportsvc.CreateReportRequest) (*report.Report, error)
	List(ctx context.Context, filter report.QueryReportsModel) (*reportsvc.ReportPage, error)
	SetApproval(ctx context.Context, reportID uuid.UUID, status string) (*report.Report, error)
	Summarize(ctx context.Context) (*reportsvc.Summary, error)
}

type HTTPTransport struct {
	server    *http.Server
	router    *chi.Mux
	orderSvc  orderService
	reportSvc reportService
	metrics   *metrics.Registry
}

func NewHTTPTransport(
	orderSvc orderService,
	reportSvc reportService,
	m *metrics.Registry,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:    server,
		router:    router,
		orderSvc:  orderSvc,
		reportSvc: reportSvc,
		metrics:   m,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/order", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.Get("/", h.listOrders)
			r.Patch("/{orderID}/subscription", h.updateSubscription)
		})

		r.Route("/report", func(r chi.Router) {
			r.Post("/create-report", h.createReport)
			r.Get("/", h.listReports)
			r.Get("/summary", h.reportSummary)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Put("/request-approval/{reportID}", h.updateApproval)
			r.Get("/reports", h.listReports)
		})
	})

	if h.metrics != nil {
		h.router.Handle("/metrics", h.metrics.Handler())
	}
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) updateSubscription(w http.ResponseWriter, r *http.Request) {
	updatesubscription.UpdateSubscription(w, r, h.orderSvc)
}

func (h *HTTPTransport) createReport(w http.ResponseWriter, r *http.Request) {
	createreport.CreateReport(w, r, h.reportSvc)
}

func (h *HTTPTransport) listReports(w http.ResponseWriter, r *http.Request) {
	listreports.ListReports(w, r, h.reportSvc)
}

func (h *HTTPTransport) updateApproval(w http.ResponseWriter, r *http.Request) {
	updateapproval.UpdateApproval(w, r, h.reportSvc)
}

func (h *HTTPTransport) reportSummary(w http.ResponseWriter, r *http.Request) {
	reportsummary.ReportSummary(w, r, h.reportSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
