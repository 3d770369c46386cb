package renewal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/defent/order-intake/internal/dal/interfaces/iorderrepo"
	"github.com/defent/order-intake/internal/metrics"
	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/spf13/viper"
)

// renewWindow is how long a renewal anchor may age before the order is due,
// and how long an inactive one-time order is retained.
const renewWindow = 30 * 24 * time.Hour

// fulfiller creates the external recurring order for a due renewal.
type fulfiller interface {
	CreateRecurringOrder(ctx context.Context, o order.Order) error
}

// Worker periodically expires stale one-time orders and renews due monthly
// subscriptions.
type Worker struct {
	orderRepo    iorderrepo.IOrderRepository
	fulfillment  fulfiller
	metrics      *metrics.Registry
	pollInterval time.Duration
	now          func() time.Time
	stopCh       chan struct{}

	// runMu guarantees at most one run at a time; a tick that arrives while
	// a run is still in progress is skipped.
	runMu sync.Mutex
}

// NewWorker creates a new renewal worker.
func NewWorker(
	orderRepo iorderrepo.IOrderRepository,
	fulfillment fulfiller,
	m *metrics.Registry,
) *Worker {
	pollIntervalSeconds := viper.GetInt("renewal.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 24 * 60 * 60
	}

	if m == nil {
		m = metrics.NewRegistry()
	}

	return &Worker{
		orderRepo:    orderRepo,
		fulfillment:  fulfillment,
		metrics:      m,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
}

// WithClock overrides the time source.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now

	return w
}

// Start begins the renewal loop.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Renewal worker started", "poll_interval", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Renewal worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Renewal worker stopped")

			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// RunOnce performs a single expire-and-renew pass. Returns false when a run
// was already in progress and this one was skipped.
func (w *Worker) RunOnce(ctx context.Context) bool {
	if !w.runMu.TryLock() {
		slog.Warn("Renewal run still in progress, skipping tick")

		return false
	}
	defer w.runMu.Unlock()

	w.expire(ctx)
	w.renew(ctx)

	return true
}

// expire reclaims one-time orders past their reuse window.
func (w *Worker) expire(ctx context.Context) {
	cutoff := w.now().Add(-renewWindow)

	deleted, err := w.orderRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to delete expired orders", "error", err)

		return
	}

	if deleted > 0 {
		w.metrics.OrdersExpired.Add(float64(deleted))
		slog.Info("Expired stale orders", "count", deleted)
	}
}

// renew processes due monthly subscriptions. Each order is its own unit: the
// external call happens first and only a confirmed success advances the
// renewal timestamp, so a crash or failure leaves the order due for the next
// run. One order's failure never aborts the rest.
func (w *Worker) renew(ctx context.Context) {
	heads, err := w.orderRepo.ListRenewalHeads(ctx)
	if err != nil {
		slog.Error("Failed to list renewal candidates", "error", err)

		return
	}

	cutoff := w.now().Add(-renewWindow)

	due := 0
	for _, o := range heads {
		if o.RenewAnchor().After(cutoff) {
			continue
		}
		due++

		if err := w.fulfillment.CreateRecurringOrder(ctx, o); err != nil {
			w.metrics.RenewalsFailed.Inc()
			slog.Error("Renewal blocked", "order_id", o.ID, "email", o.Email, "error", err)

			continue
		}

		if err := w.orderRepo.MarkRenewed(ctx, o.ID, w.now()); err != nil {
			// The external order exists but the anchor was not advanced; the
			// retry next run relies on fulfillment deduping by order identity.
			w.metrics.RenewalsFailed.Inc()
			slog.Error("Failed to mark order renewed", "order_id", o.ID, "error", err)

			continue
		}

		w.metrics.RenewalsSucceeded.Inc()
		slog.Info("Subscription renewed", "order_id", o.ID, "email", o.Email)
	}

	if due == 0 {
		slog.Info("No subscriptions due")
	}
}
