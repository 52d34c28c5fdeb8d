package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/logger"
	"github.com/dmitrymomot/chatbilling/pkg/usage"
)

// Resolver selects the counter a unit of usage is charged to.
type Resolver struct {
	ledgers  *usage.Service
	bundles  bundle.Store
	now      func() time.Time
	freeCap  int64
	logger   *slog.Logger
	observer Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithFreeCap overrides the monthly free allowance. Defaults to usage.FreeCap.
func WithFreeCap(n int64) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.freeCap = n
		}
	}
}

// WithLogger sets the resolver logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver registers an observer for decisions and recorded usage.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewResolver creates a resolver over the given stores.
// Panics if either store is nil.
func NewResolver(ledgers usage.Store, bundles bundle.Store, opts ...Option) *Resolver {
	if ledgers == nil {
		panic("entitlement: usage.Store is required")
	}
	if bundles == nil {
		panic("entitlement: bundle.Store is required")
	}
	r := &Resolver{
		bundles:  bundles,
		now:      func() time.Time { return time.Now().UTC() },
		freeCap:  usage.FreeCap,
		logger:   slog.Default(),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ledgers = usage.NewService(ledgers,
		usage.WithClock(r.now),
		usage.WithLogger(r.logger),
	)
	return r
}

// Check decides whether userID may consume one unit now.
// It applies the monthly free reset as a side effect, and nothing else.
func (r *Resolver) Check(ctx context.Context, userID string) (Decision, error) {
	if userID == "" {
		return Decision{}, ErrMissingUserID
	}

	ledger, err := r.ledgers.Ensure(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load usage ledger: %w", err)
	}

	if ledger.HasRoom(r.freeCap) {
		d := allow(Target{Kind: TargetFree})
		r.observe(ctx, userID, d)
		return d, nil
	}

	all, err := r.bundles.ListByUser(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	var d Decision
	if b := firstWithRoom(all, r.now()); b != nil {
		d = allow(Target{Kind: TargetBundle, BundleID: b.ID})
	} else if len(all) == 0 {
		d = deny(ReasonSubscriptionRequired)
	} else {
		d = deny(ReasonQuotaExceeded)
	}
	r.observe(ctx, userID, d)
	return d, nil
}

// Authorize is Check reduced to an error: nil when allowed,
// ErrQuotaExceeded or ErrSubscriptionRequired when denied.
func (r *Resolver) Authorize(ctx context.Context, userID string) error {
	d, err := r.Check(ctx, userID)
	if err != nil {
		return err
	}
	return d.Err()
}

// Record charges one unit to userID. The target is resolved from current
// state, and each increment only succeeds while its counter has room.
// Returns ErrSubscriptionRequired when no counter accepted the unit.
func (r *Resolver) Record(ctx context.Context, userID string) (Target, error) {
	if userID == "" {
		return Target{}, ErrMissingUserID
	}

	if _, err := r.ledgers.Ensure(ctx, userID); err != nil {
		return Target{}, fmt.Errorf("failed to load usage ledger: %w", err)
	}

	_, err := r.ledgers.Consume(ctx, userID, r.freeCap)
	switch {
	case err == nil:
		t := Target{Kind: TargetFree}
		r.recorded(ctx, userID, t)
		return t, nil
	case !errors.Is(err, usage.ErrFreeQuotaExhausted):
		return Target{}, fmt.Errorf("failed to record free usage: %w", err)
	}

	all, err := r.bundles.ListByUser(ctx, userID)
	if err != nil {
		return Target{}, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	now := r.now()
	for _, b := range all {
		if !b.IsCurrent(now) || !b.HasRoom() {
			continue
		}
		_, err := r.bundles.IncrementUsage(ctx, b.ID, now)
		if errors.Is(err, bundle.ErrBundleExhausted) {
			// Filled up or expired since the listing; try the next one.
			continue
		}
		if err != nil {
			return Target{}, fmt.Errorf("failed to record subscription usage: %w", err)
		}
		t := Target{Kind: TargetBundle, BundleID: b.ID}
		r.recorded(ctx, userID, t)
		return t, nil
	}

	r.logger.WarnContext(ctx, "usage not recorded: no counter with room", logger.UserID(userID))
	return Target{Kind: TargetNone}, ErrSubscriptionRequired
}

// Remaining projects how many units userID can still consume.
// It never mutates state. A pending monthly reset is taken into account.
func (r *Resolver) Remaining(ctx context.Context, userID string) (Remaining, error) {
	if userID == "" {
		return Remaining{}, ErrMissingUserID
	}
	now := r.now()

	ledger, err := r.ledgers.Peek(ctx, userID)
	switch {
	case errors.Is(err, usage.ErrLedgerNotFound):
		if r.freeCap > 0 {
			return Remaining{Units: r.freeCap}, nil
		}
	case err != nil:
		return Remaining{}, fmt.Errorf("failed to load usage ledger: %w", err)
	case ledger.NeedsReset(now):
		if r.freeCap > 0 {
			return Remaining{Units: r.freeCap}, nil
		}
	default:
		if left := ledger.Remaining(r.freeCap); left > 0 {
			return Remaining{Units: left}, nil
		}
	}

	all, err := r.bundles.ListByUser(ctx, userID)
	if err != nil {
		return Remaining{}, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	b := firstWithRoom(all, now)
	switch {
	case b == nil:
		return Remaining{}, nil
	case b.Tier.HasUnlimitedQuota():
		return Remaining{Unlimited: true}, nil
	default:
		return Remaining{Units: b.Remaining()}, nil
	}
}

// firstWithRoom returns the first current bundle with spare capacity.
// bundles must already be ordered newest first.
func firstWithRoom(bundles []*bundle.Bundle, now time.Time) *bundle.Bundle {
	for _, b := range bundles {
		if b.IsCurrent(now) && b.HasRoom() {
			return b
		}
	}
	return nil
}

func (r *Resolver) observe(ctx context.Context, userID string, d Decision) {
	if !d.Allowed {
		r.logger.DebugContext(ctx, "usage denied",
			logger.UserID(userID),
			slog.String("reason", string(d.Reason)),
		)
	}
	r.observer.DecisionMade(ctx, userID, d)
}

func (r *Resolver) recorded(ctx context.Context, userID string, t Target) {
	attrs := []any{logger.UserID(userID), slog.String("target", string(t.Kind))}
	if t.BundleID != "" {
		attrs = append(attrs, logger.BundleID(t.BundleID))
	}
	r.logger.DebugContext(ctx, "usage recorded", attrs...)
	r.observer.UsageRecorded(ctx, userID, t)
}
