package bundle

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/chatbilling/pkg/pricing"
)

// Bundle is one purchased subscription grant.
type Bundle struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	Tier         pricing.Tier         `json:"tier"`
	BillingCycle pricing.BillingCycle `json:"billing_cycle"`
	MaxUnits     int64                `json:"max_units"`
	UnitsUsed    int64                `json:"units_used"`
	Price        decimal.Decimal      `json:"price"`
	StartDate    time.Time            `json:"start_date"`
	EndDate      time.Time            `json:"end_date"`
	RenewalDate  *time.Time           `json:"renewal_date"` // set only while AutoRenew is on
	AutoRenew    bool                 `json:"auto_renew"`
	IsActive     bool                 `json:"is_active"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`

	// seq is the insertion order assigned by the store. It breaks CreatedAt ties.
	seq int64
}

// Seq returns the insertion order assigned by the store.
func (b *Bundle) Seq() int64 { return b.seq }

// SetSeq is used by Store implementations to record insertion order.
func (b *Bundle) SetSeq(seq int64) { b.seq = seq }

// IsCurrent reports whether the bundle is active and not yet expired at now.
func (b *Bundle) IsCurrent(now time.Time) bool {
	return b.IsActive && b.EndDate.After(now)
}

// HasRoom reports whether the bundle can absorb one more unit.
// Unlimited tiers always have room regardless of their counter.
func (b *Bundle) HasRoom() bool {
	return b.Tier.HasUnlimitedQuota() || b.UnitsUsed < b.MaxUnits
}

// Remaining returns the units left. Meaningless for unlimited tiers.
func (b *Bundle) Remaining() int64 {
	return max(b.MaxUnits-b.UnitsUsed, 0)
}

// DueForRenewal reports whether the sweeper must process the bundle at now.
// Dates are compared at day granularity in now's location.
func (b *Bundle) DueForRenewal(now time.Time) bool {
	if !b.AutoRenew || !b.IsActive {
		return false
	}
	return !truncateDay(b.EndDate.In(now.Location())).After(truncateDay(now))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SortNewestFirst orders bundles by CreatedAt descending.
// Bundles created at the same instant are ordered by insertion, latest first.
func SortNewestFirst(bundles []*Bundle) {
	slices.SortStableFunc(bundles, func(a, b *Bundle) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
}

// Store persists bundles.
type Store interface {
	// Create inserts a bundle and returns the stored copy.
	Create(ctx context.Context, b *Bundle) (*Bundle, error)

	// Get returns a bundle by ID or ErrBundleNotFound.
	Get(ctx context.Context, id string) (*Bundle, error)

	// ListByUser returns every bundle of a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Bundle, error)

	// ListAll returns every bundle in the system, newest first.
	ListAll(ctx context.Context) ([]*Bundle, error)

	// IncrementUsage adds one unit to the bundle if, at now, it is active,
	// unexpired and has room. Returns ErrBundleExhausted otherwise.
	IncrementUsage(ctx context.Context, id string, now time.Time) (*Bundle, error)

	// Deactivate sets IsActive to false.
	Deactivate(ctx context.Context, id string, now time.Time) (*Bundle, error)

	// DisableAutoRenew clears AutoRenew and RenewalDate. IsActive is untouched.
	DisableAutoRenew(ctx context.Context, id string, now time.Time) (*Bundle, error)
}
