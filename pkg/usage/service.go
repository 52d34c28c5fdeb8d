package usage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/chatbilling/pkg/logger"
)

// Service applies the ledger lifecycle rules on top of a Store.
type Service struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source. Used by tests to pin dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a ledger service. Panics if store is nil.
func NewService(store Store, opts ...ServiceOption) *Service {
	if store == nil {
		panic("usage: Store is required")
	}
	s := &Service{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure returns the user's ledger after applying the monthly rollover.
// A missing ledger is created with zero usage and reset date set to now.
// Calling Ensure repeatedly on the same day is a no-op after the first reset.
func (s *Service) Ensure(ctx context.Context, userID string) (*Ledger, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	now := s.now()

	ledger, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrLedgerNotFound) {
		ledger, err = s.store.Create(ctx, &Ledger{
			UserID:        userID,
			FreeUnitsUsed: 0,
			LastResetDate: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if errors.Is(err, ErrLedgerExists) {
			// Lost a creation race; the other writer's ledger is authoritative.
			return s.store.Get(ctx, userID)
		}
		if err != nil {
			return nil, err
		}
		s.logger.DebugContext(ctx, "usage ledger created", logger.UserID(userID))
		return ledger, nil
	}
	if err != nil {
		return nil, err
	}

	if !ledger.NeedsReset(now) {
		return ledger, nil
	}

	ledger, err = s.store.Reset(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "free quota reset", logger.UserID(userID))
	return ledger, nil
}

// Peek returns the user's ledger without creating or resetting it.
// Returns ErrLedgerNotFound when the user has never used the service.
func (s *Service) Peek(ctx context.Context, userID string) (*Ledger, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.store.Get(ctx, userID)
}

// Consume takes one free unit if any is left under limit.
func (s *Service) Consume(ctx context.Context, userID string, limit int64) (*Ledger, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.store.IncrementFree(ctx, userID, limit, s.now())
}
