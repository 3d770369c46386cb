package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/defent/order-intake/internal/address"
	"github.com/defent/order-intake/internal/dal/interfaces/iorderrepo"
	"github.com/defent/order-intake/internal/geocode"
	"github.com/defent/order-intake/internal/keylock"
	"github.com/defent/order-intake/internal/metrics"
	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/defent/order-intake/internal/sheets"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ReuseWindow is the period during which a dedup key blocks new admissions.
const ReuseWindow = 30 * 24 * time.Hour

// verifier confirms an address is a real US postal address.
type verifier interface {
	Verify(ctx context.Context, oneLine string) (geocode.Result, error)
}

// areaGate restricts admissions to the allowed service area.
type areaGate interface {
	Allows(c geocode.Components) bool
	City() string
	State() string
	Describe() string
}

// exporter appends admitted orders to the spreadsheet export.
type exporter interface {
	AppendOrderRow(ctx context.Context, row sheets.OrderRow) error
}

// OrderService runs the order admission pipeline and the subscription
// lifecycle.
type OrderService struct {
	repo     iorderrepo.IOrderRepository
	verifier verifier
	gate     areaGate
	exporter exporter
	locks    *keylock.KeyLock
	metrics  *metrics.Registry
	now      func() time.Time
}

// Option is a function that configures the OrderService.
type Option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...Option) *OrderService {
	s := &OrderService{
		locks: keylock.New(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil || s.verifier == nil || s.gate == nil {
		panic("ordersvc: repository, verifier and area gate are required")
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}

	return s
}

// WithRepository sets the order repository.
func WithRepository(repo iorderrepo.IOrderRepository) Option {
	return func(s *OrderService) {
		s.repo = repo
	}
}

// WithVerifier sets the external address verifier.
func WithVerifier(v verifier) Option {
	return func(s *OrderService) {
		s.verifier = v
	}
}

// WithAreaGate sets the service-area gate.
func WithAreaGate(g areaGate) Option {
	return func(s *OrderService) {
		s.gate = g
	}
}

// WithExporter sets the best-effort spreadsheet exporter. A nil exporter
// disables the export.
func WithExporter(e exporter) Option {
	return func(s *OrderService) {
		s.exporter = e
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *OrderService) {
		s.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *OrderService) {
		s.now = now
	}
}

// Rejection is a structured, user-facing refusal of an admission request.
// Reason is a stable machine code; Message is shown to the client.
type Rejection struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

const (
	ReasonMissingField   = "missing_field"
	ReasonInvalidLine1   = "invalid_line1"
	ReasonInvalidLine2   = "invalid_line2"
	ReasonLinesEqual     = "lines_equal"
	ReasonInvalidAddress = "invalid_address"
	ReasonOutsideArea    = "outside_service_area"
	ReasonAddressUsed    = "address_used"
)

// AdmitOrderRequest carries one inbound submission. The demographic fields
// only flow into the spreadsheet export.
type AdmitOrderRequest struct {
	FirstName         string
	LastName          string
	Email             string
	StreetAddress     string
	StreetAddress2    string
	PostCode          string
	ProductID         string
	Subscription      string
	Age               string
	Gender            string
	Identity          string
	HouseholdSize     string
	Ethnicity         []string
	HouseholdLanguage []string
}

// Admit runs the admission pipeline: field checks, line validation, external
// verification, service-area gate, reuse check, persist, best-effort export.
// A nil error with a non-nil Rejection means the submission was refused; a
// non-nil error means the request itself failed.
func (s *OrderService) Admit(
	ctx context.Context,
	req AdmitOrderRequest,
) (*order.Order, *Rejection, error) {
	if req.FirstName == "" || req.LastName == "" || req.StreetAddress == "" ||
		req.PostCode == "" || req.Email == "" || req.ProductID == "" {
		return nil, s.reject(ReasonMissingField, "Missing required field"), nil
	}

	sub := order.SubscriptionOneTime
	if req.Subscription != "" {
		parsed, err := order.ParseSubscription(req.Subscription)
		if err != nil {
			return nil, s.reject(ReasonMissingField, "Invalid subscription type"), nil
		}
		sub = parsed
	}

	line1, err := address.ValidateLine1(req.StreetAddress)
	if err != nil {
		return nil, s.reject(ReasonInvalidLine1, err.Error()), nil
	}

	line2, err := address.ValidateLine2(req.StreetAddress2)
	if err != nil {
		return nil, s.reject(ReasonInvalidLine2, err.Error()), nil
	}

	if line2 != "" && address.LinesEqual(line1, line2) {
		return nil, s.reject(ReasonLinesEqual, "Address line 1 and line 2 cannot be the same"), nil
	}

	zip5 := req.PostCode
	if len(zip5) > 5 {
		zip5 = zip5[:5]
	}

	oneLine := fmt.Sprintf("%s, %s, %s %s", line1, s.gate.City(), s.gate.State(), zip5)
	verified, err := s.verifier.Verify(ctx, oneLine)
	if err != nil {
		slog.Error("Address verification failed", "error", err)

		return nil, s.reject(ReasonInvalidAddress, "Invalid address"), nil
	}
	if !verified.OK {
		slog.Info("Address not verified", "reason", verified.Reason, "address", oneLine)

		return nil, s.reject(ReasonInvalidAddress, "Invalid address"), nil
	}

	if !s.gate.Allows(verified.Components) {
		return nil, s.reject(ReasonOutsideArea, s.gate.Describe()), nil
	}

	// The provider's canonical matched address, not the raw input, feeds the
	// dedup key so formatting differences cannot fragment the dedup space.
	key := order.Key{Line1: address.Normalize(verified.Normalized)}
	if line2 != "" {
		key.Line2 = lo.ToPtr(address.Normalize(line2))
	}

	// Hold the per-key lock across the check-then-insert span so two
	// concurrent submissions for the same address cannot both pass the reuse
	// check.
	s.locks.Lock(key.String())
	defer s.locks.Unlock(key.String())

	prior, err := s.repo.FindLatestByKey(ctx, key)
	if err != nil && !errors.Is(err, iorderrepo.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check address reuse: %w", err)
	}

	now := s.now()
	if prior != nil && now.Sub(prior.CreatedAt) <= ReuseWindow {
		return nil, s.reject(ReasonAddressUsed, "Address already used"), nil
	}

	newOrder := order.Order{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		StreetAddress:      line1,
		PostCode:           req.PostCode,
		ProductID:          req.ProductID,
		Subscription:       sub,
		IsActive:           sub == order.SubscriptionMonthly,
		NormalizedAddress:  key.Line1,
		NormalizedAddress2: key.Line2,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if line2 != "" {
		newOrder.StreetAddress2 = lo.ToPtr(line2)
	}

	inserted, err := s.repo.Insert(ctx, newOrder)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.metrics.AdmissionsAccepted.Inc()
	s.export(ctx, inserted, req, zip5)

	return inserted, nil, nil
}

func (s *OrderService) reject(reason, message string) *Rejection {
	s.metrics.AdmissionsRejected.WithLabelValues(reason).Inc()

	return &Rejection{Reason: reason, Message: message}
}

// export appends the admitted order to the spreadsheet. Failures are logged
// and never surfaced: the order record is the source of truth, the sheet is a
// convenience export.
func (s *OrderService) export(
	ctx context.Context,
	o *order.Order,
	req AdmitOrderRequest,
	zip5 string,
) {
	if s.exporter == nil {
		return
	}

	line2 := ""
	if o.StreetAddress2 != nil {
		line2 = *o.StreetAddress2
	}

	row := sheets.OrderRow{
		CreatedAt:         o.CreatedAt,
		FirstName:         o.FirstName,
		LastName:          o.LastName,
		StreetAddress:     o.StreetAddress,
		StreetAddress2:    line2,
		PostCode:          zip5,
		Email:             o.Email,
		Subscription:      o.Subscription.String(),
		ProductID:         o.ProductID,
		Age:               req.Age,
		Gender:            req.Gender,
		Identity:          req.Identity,
		HouseholdSize:     req.HouseholdSize,
		Ethnicity:         req.Ethnicity,
		HouseholdLanguage: req.HouseholdLanguage,
	}

	if err := s.exporter.AppendOrderRow(ctx, row); err != nil {
		slog.Error("Sheets append failed", "order_id", o.ID, "error", err)
	}
}

// SetSubscription switches an order between monthly and one-time. The
// subscription type is derived from the active flag and both fields are
// persisted together.
func (s *OrderService) SetSubscription(
	ctx context.Context,
	orderID uuid.UUID,
	isActive bool,
) (*order.Order, error) {
	sub := order.SubscriptionOneTime
	if isActive {
		sub = order.SubscriptionMonthly
	}

	updated, err := s.repo.UpdateSubscription(ctx, orderID, isActive, sub)
	if err != nil {
		if errors.Is(err, iorderrepo.ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	return updated, nil
}

// RecentOrders is a page of orders created within the reuse window.
type RecentOrders struct {
	Orders     []order.Order `json:"data"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"totalPages"`
}

// ListRecent lists orders created in the last 30 days, monthly subscriptions
// first, newest first within each group.
func (s *OrderService) ListRecent(ctx context.Context, page, limit int) (*RecentOrders, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}
	if limit > 200 {
		limit = 200
	}

	filter := &order.QueryRecentModel{
		Since: s.now().Add(-ReuseWindow),
		Page:  page,
		Limit: limit,
	}

	orders, total, err := s.repo.QueryRecent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	if totalPages == 0 {
		totalPages = 1
	}

	return &RecentOrders{
		Orders:     orders,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
