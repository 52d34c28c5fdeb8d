// Package dashboard aggregates per-user account statistics.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/entitlement"
)

var ErrMissingUserID = errors.New("user ID is required")

// Stats is the dashboard summary of one user.
type Stats struct {
	TotalMessages      int                   `json:"total_messages"`
	TotalSubscriptions int                   `json:"total_subscriptions"`
	RemainingQuota     entitlement.Remaining `json:"remaining_quota"` // null when unlimited
}

// MessageCounter counts a user's messages. *chat.Service satisfies it.
type MessageCounter interface {
	Count(ctx context.Context, userID string) (int, error)
}

// QuotaProjector projects remaining usage. *entitlement.Resolver satisfies it.
type QuotaProjector interface {
	Remaining(ctx context.Context, userID string) (entitlement.Remaining, error)
}

// Service builds dashboard statistics. It never mutates state.
type Service struct {
	messages MessageCounter
	bundles  bundle.Store
	quota    QuotaProjector
}

// NewService creates a dashboard service. Panics if any dependency is nil.
func NewService(messages MessageCounter, bundles bundle.Store, quota QuotaProjector) *Service {
	if messages == nil || bundles == nil || quota == nil {
		panic("dashboard: all dependencies are required")
	}
	return &Service{messages: messages, bundles: bundles, quota: quota}
}

// Stats returns the message count, the number of bundles ever purchased
// and the projected remaining quota for userID.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	if userID == "" {
		return Stats{}, ErrMissingUserID
	}

	total, err := s.messages.Count(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count messages: %w", err)
	}

	subs, err := s.bundles.ListByUser(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	remaining, err := s.quota.Remaining(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to project remaining quota: %w", err)
	}

	return Stats{
		TotalMessages:      total,
		TotalSubscriptions: len(subs),
		RemainingQuota:     remaining,
	}, nil
}
