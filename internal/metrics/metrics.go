package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service's Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	AdmissionsAccepted prometheus.Counter
	AdmissionsRejected *prometheus.CounterVec
	RenewalsSucceeded  prometheus.Counter
	RenewalsFailed     prometheus.Counter
	OrdersExpired      prometheus.Counter
}

// NewRegistry creates and registers the service collectors.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	accepted := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_admissions_accepted_total"})
	rejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "intake_admissions_rejected_total"},
		[]string{"reason"},
	)
	renewed := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_renewals_succeeded_total"})
	renewFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_renewals_failed_total"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_orders_expired_total"})

	r.MustRegister(accepted, rejected, renewed, renewFailed, expired)

	return &Registry{
		reg:                r,
		AdmissionsAccepted: accepted,
		AdmissionsRejected: rejected,
		RenewalsSucceeded:  renewed,
		RenewalsFailed:     renewFailed,
		OrdersExpired:      expired,
	}
}

// Handler exposes the registry for scraping.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
