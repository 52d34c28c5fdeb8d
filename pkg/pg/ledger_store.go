package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/chatbilling/pkg/usage"
)

const ledgerColumns = `user_id, free_units_used, last_reset_date, created_at, updated_at`

// LedgerStore implements usage.Store on the usage_ledgers table.
type LedgerStore struct {
	db DB
}

// NewLedgerStore creates a ledger store. Panics if db is nil.
func NewLedgerStore(db DB) *LedgerStore {
	if db == nil {
		panic("pg: DB is required")
	}
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Get(ctx context.Context, userID string) (*usage.Ledger, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM usage_ledgers WHERE user_id = $1`,
		userID,
	)
	l, err := scanLedger(row)
	if IsNotFoundError(err) {
		return nil, usage.ErrLedgerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usage ledger: %w", err)
	}
	return l, nil
}

func (s *LedgerStore) Create(ctx context.Context, l *usage.Ledger) (*usage.Ledger, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO usage_ledgers (`+ledgerColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING `+ledgerColumns,
		l.UserID, l.FreeUnitsUsed, l.LastResetDate, l.CreatedAt, l.UpdatedAt,
	)
	created, err := scanLedger(row)
	if IsNotFoundError(err) {
		return nil, usage.ErrLedgerExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create usage ledger: %w", err)
	}
	return created, nil
}

func (s *LedgerStore) IncrementFree(ctx context.Context, userID string, limit int64, now time.Time) (*usage.Ledger, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE usage_ledgers
		SET free_units_used = free_units_used + 1, updated_at = $3
		WHERE user_id = $1 AND free_units_used < $2
		RETURNING `+ledgerColumns,
		userID, limit, now,
	)
	l, err := scanLedger(row)
	if err == nil {
		return l, nil
	}
	if !IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to increment free usage: %w", err)
	}

	found, err := exists(ctx, s.db, `SELECT 1 FROM usage_ledgers WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment free usage: %w", err)
	}
	if !found {
		return nil, usage.ErrLedgerNotFound
	}
	return nil, usage.ErrFreeQuotaExhausted
}

func (s *LedgerStore) Reset(ctx context.Context, userID string, now time.Time) (*usage.Ledger, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE usage_ledgers
		SET free_units_used = 0, last_reset_date = $2, updated_at = $2
		WHERE user_id = $1
			AND date_trunc('month', last_reset_date AT TIME ZONE 'UTC') < date_trunc('month', $2::timestamptz AT TIME ZONE 'UTC')
		RETURNING `+ledgerColumns,
		userID, now,
	)
	l, err := scanLedger(row)
	if IsNotFoundError(err) {
		// Already reset this month, or no ledger at all.
		return s.Get(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reset usage ledger: %w", err)
	}
	return l, nil
}

func scanLedger(row pgx.Row) (*usage.Ledger, error) {
	var l usage.Ledger
	if err := row.Scan(&l.UserID, &l.FreeUnitsUsed, &l.LastResetDate, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.LastResetDate = l.LastResetDate.UTC()
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return &l, nil
}

var _ usage.Store = (*LedgerStore)(nil)
