package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/chatbilling/pkg/logger"
	"github.com/dmitrymomot/chatbilling/pkg/pricing"
)

// Service implements the purchase and cancellation flows on top of a Store.
type Service struct {
	store  Store
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides bundle ID generation. Defaults to random UUIDs.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the logger used for purchase and cancellation events.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a bundle service. Panics if store is nil.
func NewService(store Store, opts ...ServiceOption) *Service {
	if store == nil {
		panic("bundle: Store is required")
	}
	s := &Service{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Purchase creates a new bundle priced from the pricing table.
// The validity window starts now and lasts one billing cycle.
// RenewalDate is set to the end of the window only when autoRenew is true.
func (s *Service) Purchase(ctx context.Context, userID string, tier pricing.Tier, cycle pricing.BillingCycle, autoRenew bool) (*Bundle, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if !tier.Valid() {
		return nil, pricing.ErrInvalidTier
	}
	if !cycle.Valid() {
		return nil, pricing.ErrInvalidBillingCycle
	}

	entry := pricing.Lookup(tier, cycle)
	start := s.now()
	end := cycle.Advance(start)

	b := &Bundle{
		ID:           s.newID(),
		UserID:       userID,
		Tier:         tier,
		BillingCycle: cycle,
		MaxUnits:     entry.MaxUnits,
		UnitsUsed:    0,
		Price:        entry.Price,
		StartDate:    start,
		EndDate:      end,
		AutoRenew:    autoRenew,
		IsActive:     true,
		CreatedAt:    start,
		UpdatedAt:    start,
	}
	if autoRenew {
		renewal := end
		b.RenewalDate = &renewal
	}

	created, err := s.store.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription purchased",
		logger.UserID(userID),
		logger.BundleID(created.ID),
		logger.Tier(string(tier)),
		logger.Cycle(string(cycle)),
		slog.String("price", created.Price.StringFixed(2)),
	)
	return created, nil
}

// Get returns a bundle by ID.
func (s *Service) Get(ctx context.Context, bundleID string) (*Bundle, error) {
	if bundleID == "" {
		return nil, ErrMissingBundleID
	}
	return s.store.Get(ctx, bundleID)
}

// List returns every bundle the user ever held, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*Bundle, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.store.ListByUser(ctx, userID)
}

// ListActive returns the user's active, unexpired bundles, newest first.
func (s *Service) ListActive(ctx context.Context, userID string) ([]*Bundle, error) {
	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FilterCurrent(all, s.now()), nil
}

// Cancel turns off auto-renewal for a bundle owned by userID.
// The bundle stays active and usable until its EndDate.
func (s *Service) Cancel(ctx context.Context, userID, bundleID string) (*Bundle, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if bundleID == "" {
		return nil, ErrMissingBundleID
	}

	b, err := s.store.Get(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotOwner
	}

	cancelled, err := s.store.DisableAutoRenew(ctx, bundleID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription auto-renew cancelled",
		logger.UserID(userID),
		logger.BundleID(bundleID),
	)
	return cancelled, nil
}

// FilterCurrent keeps bundles that are active and unexpired at now,
// preserving order.
func FilterCurrent(bundles []*Bundle, now time.Time) []*Bundle {
	out := make([]*Bundle, 0, len(bundles))
	for _, b := range bundles {
		if b.IsCurrent(now) {
			out = append(out, b)
		}
	}
	return out
}
