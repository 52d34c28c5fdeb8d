package renewal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/logger"
	"github.com/dmitrymomot/chatbilling/pkg/pricing"
)

// Purchaser creates the replacement bundle on a successful renewal.
// *bundle.Service satisfies it.
type Purchaser interface {
	Purchase(ctx context.Context, userID string, tier pricing.Tier, cycle pricing.BillingCycle, autoRenew bool) (*bundle.Bundle, error)
}

// Locker prevents concurrent sweeps. The default is a LocalLocker;
// replicas sharing a database need a distributed one such as redis.Lock.
type Locker interface {
	// TryLock acquires the lock without waiting. It reports false when
	// another holder owns it.
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Result summarizes one sweep. Processed holds each due bundle's state after
// the sweep wrote it: the replacement bundle when renewed, the deactivated
// bundle when the charge was declined, and the bundle as listed otherwise.
type Result struct {
	Renewed   int              `json:"renewed"`
	Failed    int              `json:"failed"`
	Processed []*bundle.Bundle `json:"processed"`
}

// Sweeper renews due bundles.
type Sweeper struct {
	bundles             bundle.Store
	purchaser           Purchaser
	payments            PaymentProvider
	now                 func() time.Time
	logger              *slog.Logger
	locker              Locker
	observer            Observer
	deactivateOnRenewal bool
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithPaymentProvider sets the charge simulator.
// Defaults to a BernoulliProvider with DefaultSuccessRate.
func WithPaymentProvider(p PaymentProvider) Option {
	return func(s *Sweeper) {
		if p != nil {
			s.payments = p
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the sweeper logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocker replaces the in-process lock that guards sweeps.
func WithLocker(l Locker) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithObserver registers a sweep observer.
func WithObserver(o Observer) Option {
	return func(s *Sweeper) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithDeactivateOnRenewal deactivates the old bundle after its replacement
// was purchased. Off by default.
func WithDeactivateOnRenewal(enabled bool) Option {
	return func(s *Sweeper) {
		s.deactivateOnRenewal = enabled
	}
}

// NewSweeper creates a sweeper. Panics if bundles or purchaser is nil.
func NewSweeper(bundles bundle.Store, purchaser Purchaser, opts ...Option) *Sweeper {
	if bundles == nil {
		panic("renewal: bundle.Store is required")
	}
	if purchaser == nil {
		panic("renewal: Purchaser is required")
	}
	s := &Sweeper{
		bundles:   bundles,
		purchaser: purchaser,
		payments:  NewBernoulliProvider(DefaultSuccessRate, nil),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    slog.Default(),
		locker:    NewLocalLocker(),
		observer:  noopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep processes every bundle with auto-renew on, still active, whose end
// date is today or earlier. Returns ErrSweepInProgress when the lock is held.
// Per-bundle failures are counted in Result and never abort the sweep;
// only listing errors and context cancellation do.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	ok, err := s.locker.TryLock(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to acquire renewal lock: %w", err)
	}
	if !ok {
		return Result{}, ErrSweepInProgress
	}
	defer func() {
		// The sweep context may already be cancelled.
		if err := s.locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.ErrorContext(ctx, "failed to release renewal lock", logger.Error(err))
		}
	}()

	started := time.Now()
	now := s.now()

	all, err := s.bundles.ListAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	res := Result{Processed: make([]*bundle.Bundle, 0)}
	for _, b := range all {
		if !b.DueForRenewal(now) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		processed, outcome := s.process(ctx, b)
		res.Processed = append(res.Processed, processed)
		if outcome == OutcomeRenewed {
			res.Renewed++
		} else {
			res.Failed++
		}
		s.observer.RenewalProcessed(ctx, b, outcome)
	}

	elapsed := time.Since(started)
	s.observer.SweepFinished(ctx, res, elapsed)
	s.logger.InfoContext(ctx, "renewal sweep finished",
		slog.Int("processed", len(res.Processed)),
		slog.Int("renewed", res.Renewed),
		slog.Int("failed", res.Failed),
		logger.Duration(elapsed),
	)
	return res, nil
}

// process returns the bundle as left by the sweep along with the outcome.
func (s *Sweeper) process(ctx context.Context, b *bundle.Bundle) (*bundle.Bundle, Outcome) {
	log := s.logger.With(
		logger.UserID(b.UserID),
		logger.BundleID(b.ID),
		logger.Tier(string(b.Tier)),
		logger.Cycle(string(b.BillingCycle)),
	)

	out, err := s.renew(ctx, b, log)
	switch {
	case errors.Is(err, ErrPaymentDeclined):
		log.InfoContext(ctx, "subscription renewal declined, subscription deactivated")
		return out, OutcomeFailed
	case err != nil:
		log.ErrorContext(ctx, "subscription renewal failed", logger.Error(err))
		return b, OutcomeFailed
	}
	return out, OutcomeRenewed
}

// renew charges b and returns the replacement bundle, or the deactivated
// b together with ErrPaymentDeclined.
func (s *Sweeper) renew(ctx context.Context, b *bundle.Bundle, log *slog.Logger) (*bundle.Bundle, error) {
	ok, err := s.payments.Charge(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to charge renewal: %w", err)
	}

	if !ok {
		deactivated, err := s.bundles.Deactivate(ctx, b.ID, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to deactivate subscription: %w", err)
		}
		return deactivated, ErrPaymentDeclined
	}

	renewed, err := s.purchaser.Purchase(ctx, b.UserID, b.Tier, b.BillingCycle, b.AutoRenew)
	if err != nil {
		return nil, fmt.Errorf("failed to purchase renewal: %w", err)
	}
	log.InfoContext(ctx, "subscription renewed", slog.String("renewed_bundle_id", renewed.ID))

	if s.deactivateOnRenewal {
		if _, err := s.bundles.Deactivate(ctx, b.ID, s.now()); err != nil {
			// The replacement exists; the next sweep would renew this one again.
			log.ErrorContext(ctx, "failed to deactivate renewed subscription", logger.Error(err))
		}
	}
	return renewed, nil
}
