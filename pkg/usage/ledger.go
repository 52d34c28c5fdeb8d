package usage

import (
	"context"
	"time"
)

// FreeCap is the number of free units every user gets per calendar month.
const FreeCap int64 = 3

// Ledger is the free-tier usage record of one user.
type Ledger struct {
	UserID        string    `json:"user_id"`
	FreeUnitsUsed int64     `json:"free_units_used"`
	LastResetDate time.Time `json:"last_reset_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Remaining returns how many free units are left under the given cap.
func (l *Ledger) Remaining(limit int64) int64 {
	return max(limit-l.FreeUnitsUsed, 0)
}

// HasRoom reports whether at least one free unit is left under the given cap.
func (l *Ledger) HasRoom(limit int64) bool {
	return l.FreeUnitsUsed < limit
}

// NeedsReset reports whether the free counter must roll over at now.
// It fires only on the first day of a month and only if the last reset
// happened in a strictly earlier (year, month).
func (l *Ledger) NeedsReset(now time.Time) bool {
	return now.Day() == 1 && resetPending(l.LastResetDate, now)
}

// resetPending reports whether last falls in a strictly earlier
// (year, month) than now, in now's location.
func resetPending(last, now time.Time) bool {
	last = last.In(now.Location())
	if last.Year() != now.Year() {
		return last.Year() < now.Year()
	}
	return last.Month() < now.Month()
}

// Store persists ledgers.
type Store interface {
	// Get returns the ledger of a user or ErrLedgerNotFound.
	Get(ctx context.Context, userID string) (*Ledger, error)

	// Create inserts a new ledger. Returns ErrLedgerExists if the user already has one.
	Create(ctx context.Context, ledger *Ledger) (*Ledger, error)

	// IncrementFree adds one free unit if the counter is below limit.
	// Returns ErrFreeQuotaExhausted when the condition fails and
	// ErrLedgerNotFound when the user has no ledger.
	IncrementFree(ctx context.Context, userID string, limit int64, now time.Time) (*Ledger, error)

	// Reset sets the counter to zero and the reset date to now, provided the
	// stored reset date lies in an earlier calendar month than now. Otherwise
	// the ledger is returned unchanged, so concurrent resets apply once.
	Reset(ctx context.Context, userID string, now time.Time) (*Ledger, error)
}
