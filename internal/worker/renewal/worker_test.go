package renewal_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/defent/order-intake/internal/dal/interfaces/iorderrepo"
	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/defent/order-intake/internal/worker/renewal"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory iorderrepo.IOrderRepository for the worker.
type fakeRepo struct {
	mu     sync.Mutex
	orders []order.Order
}

func (f *fakeRepo) Insert(_ context.Context, o order.Order) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.orders = append(f.orders, o)

	return &o, nil
}

func (f *fakeRepo) FindLatestByKey(context.Context, order.Key) (*order.Order, error) {
	return nil, iorderrepo.ErrNotFound
}

func (f *fakeRepo) QueryRecent(
	context.Context,
	*order.QueryRecentModel,
) ([]order.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) UpdateSubscription(
	context.Context,
	uuid.UUID,
	bool,
	order.Subscription,
) (*order.Order, error) {
	return nil, iorderrepo.ErrNotFound
}

func (f *fakeRepo) ListRenewalHeads(context.Context) ([]order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var heads []order.Order
	for _, o := range f.orders {
		if o.Subscription == order.SubscriptionMonthly && o.IsActive {
			heads = append(heads, o)
		}
	}

	return heads, nil
}

func (f *fakeRepo) MarkRenewed(_ context.Context, id uuid.UUID, renewedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].LastRenewAt = lo.ToPtr(renewedAt)

			return nil
		}
	}

	return iorderrepo.ErrNotFound
}

func (f *fakeRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var kept []order.Order
	var deleted int64
	for _, o := range f.orders {
		if o.Subscription != order.SubscriptionMonthly && !o.IsActive &&
			o.RenewAnchor().Before(cutoff) {
			deleted++

			continue
		}
		kept = append(kept, o)
	}
	f.orders = kept

	return deleted, nil
}

func (f *fakeRepo) get(id uuid.UUID) order.Order {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.orders {
		if o.ID == id {
			return o
		}
	}

	return order.Order{}
}

// fakeFulfiller records calls and optionally fails or blocks.
type fakeFulfiller struct {
	mu        sync.Mutex
	calls     []uuid.UUID
	err       error
	blockCh   chan struct{}
	startedCh chan struct{}
	started   sync.Once
}

func (f *fakeFulfiller) CreateRecurringOrder(_ context.Context, o order.Order) error {
	if f.startedCh != nil {
		f.started.Do(func() { close(f.startedCh) })
	}
	if f.blockCh != nil {
		<-f.blockCh
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, o.ID)

	return f.err
}

func (f *fakeFulfiller) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func monthlyOrder(anchor time.Time) order.Order {
	return order.Order{
		ID:           uuid.New(),
		Email:        "subscriber@example.com",
		ProductID:    "narcan-kit",
		Subscription: order.SubscriptionMonthly,
		IsActive:     true,
		CreatedAt:    anchor,
		UpdatedAt:    anchor,
	}
}

func TestRunOnce_RenewsDueOrders(t *testing.T) {
	now := time.Date(2026, time.March, 15, 3, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	due := monthlyOrder(now.Add(-31 * 24 * time.Hour))
	fresh := monthlyOrder(now.Add(-10 * 24 * time.Hour))
	repo.orders = append(repo.orders, due, fresh)

	fulfiller := &fakeFulfiller{}
	worker := renewal.NewWorker(repo, fulfiller, nil).
		WithClock(func() time.Time { return now })

	require.True(t, worker.RunOnce(t.Context()))

	// Only the due order was pushed to fulfillment, and its anchor advanced.
	require.Equal(t, 1, fulfiller.callCount())
	assert.Equal(t, due.ID, fulfiller.calls[0])

	renewed := repo.get(due.ID)
	require.NotNil(t, renewed.LastRenewAt)
	assert.Equal(t, now, *renewed.LastRenewAt)

	untouched := repo.get(fresh.ID)
	assert.Nil(t, untouched.LastRenewAt)
}

func TestRunOnce_FailedRenewalStaysDue(t *testing.T) {
	now := time.Date(2026, time.March, 15, 3, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	due := monthlyOrder(now.Add(-31 * 24 * time.Hour))
	repo.orders = append(repo.orders, due)

	fulfiller := &fakeFulfiller{err: errors.New("fulfillment unavailable")}
	worker := renewal.NewWorker(repo, fulfiller, nil).
		WithClock(func() time.Time { return now })

	require.True(t, worker.RunOnce(t.Context()))

	// The anchor must not advance on failure so the next run retries.
	stillDue := repo.get(due.ID)
	assert.Nil(t, stillDue.LastRenewAt)

	fulfiller.err = nil
	require.True(t, worker.RunOnce(t.Context()))

	renewed := repo.get(due.ID)
	require.NotNil(t, renewed.LastRenewAt)
	assert.Equal(t, 2, fulfiller.callCount())
}

func TestRunOnce_ExpiresStaleOneTimeOrders(t *testing.T) {
	now := time.Date(2026, time.March, 15, 3, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	stale := order.Order{
		ID:           uuid.New(),
		Subscription: order.SubscriptionOneTime,
		CreatedAt:    now.Add(-45 * 24 * time.Hour),
	}
	recent := order.Order{
		ID:           uuid.New(),
		Subscription: order.SubscriptionOneTime,
		CreatedAt:    now.Add(-5 * 24 * time.Hour),
	}
	repo.orders = append(repo.orders, stale, recent)

	worker := renewal.NewWorker(repo, &fakeFulfiller{}, nil).
		WithClock(func() time.Time { return now })

	require.True(t, worker.RunOnce(t.Context()))

	assert.Equal(t, uuid.UUID{}, repo.get(stale.ID).ID)
	assert.Equal(t, recent.ID, repo.get(recent.ID).ID)
}

func TestRunOnce_SkipsWhileRunning(t *testing.T) {
	now := time.Now()

	repo := &fakeRepo{}
	repo.orders = append(repo.orders, monthlyOrder(now.Add(-31*24*time.Hour)))

	fulfiller := &fakeFulfiller{
		blockCh:   make(chan struct{}),
		startedCh: make(chan struct{}),
	}
	worker := renewal.NewWorker(repo, fulfiller, nil).
		WithClock(func() time.Time { return now })

	firstDone := make(chan bool)
	go func() {
		firstDone <- worker.RunOnce(context.Background())
	}()

	// Wait until the first run is blocked inside fulfillment, then a second
	// tick must be skipped.
	<-fulfiller.startedCh
	assert.False(t, worker.RunOnce(context.Background()))

	close(fulfiller.blockCh)
	assert.True(t, <-firstDone)
}
