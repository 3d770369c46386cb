package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/defent/order-intake/internal/dal/interfaces/iorderrepo"
	"github.com/defent/order-intake/internal/dal/postgres"
	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var orderColumns = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"street_address",
	"street_address2",
	"post_code",
	"product_id",
	"subscription",
	"is_active",
	"normalized_address",
	"normalized_address2",
	"last_renew_at",
	"created_at",
	"updated_at",
}

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                 uuid.UUID  `db:"id"`
	FirstName          string     `db:"first_name"`
	LastName           string     `db:"last_name"`
	Email              string     `db:"email"`
	StreetAddress      string     `db:"street_address"`
	StreetAddress2     *string    `db:"street_address2"`
	PostCode           string     `db:"post_code"`
	ProductId          string     `db:"product_id"`
	Subscription       string     `db:"subscription"`
	IsActive           bool       `db:"is_active"`
	NormalizedAddress  string     `db:"normalized_address"`
	NormalizedAddress2 *string    `db:"normalized_address2"`
	LastRenewAt        *time.Time `db:"last_renew_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	sub, err := order.ParseSubscription(o.Subscription)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:                 o.Id,
		FirstName:          o.FirstName,
		LastName:           o.LastName,
		Email:              o.Email,
		StreetAddress:      o.StreetAddress,
		StreetAddress2:     o.StreetAddress2,
		PostCode:           o.PostCode,
		ProductID:          o.ProductId,
		Subscription:       sub,
		IsActive:           o.IsActive,
		NormalizedAddress:  o.NormalizedAddress,
		NormalizedAddress2: o.NormalizedAddress2,
		LastRenewAt:        o.LastRenewAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.FirstName,
		&dal.LastName,
		&dal.Email,
		&dal.StreetAddress,
		&dal.StreetAddress2,
		&dal.PostCode,
		&dal.ProductId,
		&dal.Subscription,
		&dal.IsActive,
		&dal.NormalizedAddress,
		&dal.NormalizedAddress2,
		&dal.LastRenewAt,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

// PostgresOrderRepository implements the order repository for PostgreSQL.
type PostgresOrderRepository struct {
	client *postgres.Client
}

// NewPostgresOrderRepository creates a new order repository.
func NewPostgresOrderRepository(client *postgres.Client) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		client: client,
	}
}

// Insert persists a new order and returns it with the generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (*order.Order, error) {
	query, args, err := sq.Insert("orders").
		Columns(
			"first_name",
			"last_name",
			"email",
			"street_address",
			"street_address2",
			"post_code",
			"product_id",
			"subscription",
			"is_active",
			"normalized_address",
			"normalized_address2",
			"last_renew_at",
			"created_at",
			"updated_at",
		).
		Values(
			o.FirstName,
			o.LastName,
			o.Email,
			o.StreetAddress,
			o.StreetAddress2,
			o.PostCode,
			o.ProductID,
			o.Subscription.String(),
			o.IsActive,
			o.NormalizedAddress,
			o.NormalizedAddress2,
			o.LastRenewAt,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING " + columnList()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := scanOrder(r.client.Pool().QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return inserted, nil
}

// FindLatestByKey returns the most recently created order matching the dedup
// key, or iorderrepo.ErrNotFound.
func (r *PostgresOrderRepository) FindLatestByKey(
	ctx context.Context,
	key order.Key,
) (*order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"normalized_address": key.Line1})

	if key.Line2 != nil {
		builder = builder.Where(sq.Eq{"normalized_address2": *key.Line2})
	}

	query, args, err := builder.
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	found, err := scanOrder(r.client.Pool().QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, iorderrepo.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query order by key: %w", err)
	}

	return found, nil
}

// QueryRecent lists orders created since the filter cutoff, monthly
// subscriptions first, newest first within each group, with the total count.
func (r *PostgresOrderRepository) QueryRecent(
	ctx context.Context,
	filter *order.QueryRecentModel,
) ([]order.Order, int64, error) {
	countQuery, countArgs, err := sq.Select("COUNT(*)").
		From("orders").
		Where(sq.GtOrEq{"created_at": filter.Since}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.client.Pool().QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * filter.Limit
	}

	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.GtOrEq{"created_at": filter.Since}).
		OrderBy(
			"CASE subscription WHEN 'monthly' THEN 0 WHEN 'one_time' THEN 2 ELSE 1 END",
			"created_at DESC",
			"id",
		).
		Limit(uint64(filter.Limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build select query: %w", err)
	}

	orders, err := r.queryOrders(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateSubscription sets the active flag and derived subscription type.
func (r *PostgresOrderRepository) UpdateSubscription(
	ctx context.Context,
	id uuid.UUID,
	isActive bool,
	subscription order.Subscription,
) (*order.Order, error) {
	query, args, err := sq.Update("orders").
		Set("is_active", isActive).
		Set("subscription", subscription.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + columnList()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanOrder(r.client.Pool().QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, iorderrepo.ErrNotFound
		}

		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	return updated, nil
}

// ListRenewalHeads returns the newest order per (email, product_id,
// normalized_address) group among monthly active orders, ranked by renewal
// anchor.
func (r *PostgresOrderRepository) ListRenewalHeads(ctx context.Context) ([]order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		Options("DISTINCT ON (email, product_id, normalized_address)").
		From("orders").
		Where(sq.Eq{"subscription": order.SubscriptionMonthly.String()}).
		Where(sq.Eq{"is_active": true}).
		OrderBy(
			"email",
			"product_id",
			"normalized_address",
			"COALESCE(last_renew_at, created_at) DESC",
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	return r.queryOrders(ctx, query, args)
}

// MarkRenewed advances the renewal timestamp after a confirmed external
// renewal.
func (r *PostgresOrderRepository) MarkRenewed(
	ctx context.Context,
	id uuid.UUID,
	renewedAt time.Time,
) error {
	query, args, err := sq.Update("orders").
		Set("last_renew_at", renewedAt).
		Set("updated_at", renewedAt).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.client.Pool().Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark order renewed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return iorderrepo.ErrNotFound
	}

	return nil
}

// DeleteExpired reclaims one-time orders whose reuse window has passed.
func (r *PostgresOrderRepository) DeleteExpired(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	query, args, err := sq.Delete("orders").
		Where(sq.NotEq{"subscription": order.SubscriptionMonthly.String()}).
		Where(sq.Eq{"is_active": false}).
		Where(sq.Lt{"COALESCE(last_renew_at, created_at)": cutoff}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.client.Pool().Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired orders: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *PostgresOrderRepository) queryOrders(
	ctx context.Context,
	query string,
	args []interface{},
) ([]order.Order, error) {
	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func columnList() string {
	return strings.Join(orderColumns, ", ")
}
