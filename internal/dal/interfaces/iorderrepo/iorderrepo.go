package iorderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/google/uuid"
)

// ErrNotFound is returned when an order id does not resolve.
var ErrNotFound = errors.New("order not found")

// IOrderRepository is an interface for the order repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (*order.Order, error)

	// FindLatestByKey returns the most recently created order matching the
	// dedup key, or ErrNotFound. When the key carries no line 2, any order
	// with the same line-1 fingerprint matches regardless of its line 2.
	FindLatestByKey(ctx context.Context, key order.Key) (*order.Order, error)

	QueryRecent(ctx context.Context, filter *order.QueryRecentModel) ([]order.Order, int64, error)

	UpdateSubscription(
		ctx context.Context,
		id uuid.UUID,
		isActive bool,
		subscription order.Subscription,
	) (*order.Order, error)

	// ListRenewalHeads returns, for each (email, product_id,
	// normalized_address) group among monthly active orders, the order with
	// the most recent renewal anchor.
	ListRenewalHeads(ctx context.Context) ([]order.Order, error)

	MarkRenewed(ctx context.Context, id uuid.UUID, renewedAt time.Time) error

	// DeleteExpired removes non-monthly inactive orders whose renewal anchor
	// is older than cutoff, returning the number of rows removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
