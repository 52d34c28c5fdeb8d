package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/pricing"
)

const bundleColumns = `id, seq, user_id, tier, billing_cycle, max_units, units_used, price::text,
	start_date, end_date, renewal_date, auto_renew, is_active, created_at, updated_at`

// BundleStore implements bundle.Store on the subscription_bundles table.
type BundleStore struct {
	db        DB
	unlimited []string
}

// NewBundleStore creates a bundle store. Panics if db is nil.
func NewBundleStore(db DB) *BundleStore {
	if db == nil {
		panic("pg: DB is required")
	}
	unlimited := make([]string, 0, len(pricing.Tiers))
	for _, t := range pricing.Tiers {
		if t.HasUnlimitedQuota() {
			unlimited = append(unlimited, string(t))
		}
	}
	return &BundleStore{db: db, unlimited: unlimited}
}

func (s *BundleStore) Create(ctx context.Context, b *bundle.Bundle) (*bundle.Bundle, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO subscription_bundles (
			id, user_id, tier, billing_cycle, max_units, units_used, price,
			start_date, end_date, renewal_date, auto_renew, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+bundleColumns,
		b.ID, b.UserID, string(b.Tier), string(b.BillingCycle), b.MaxUnits, b.UnitsUsed, b.Price.StringFixed(2),
		b.StartDate, b.EndDate, b.RenewalDate, b.AutoRenew, b.IsActive, b.CreatedAt, b.UpdatedAt,
	)
	created, err := scanBundle(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return created, nil
}

func (s *BundleStore) Get(ctx context.Context, id string) (*bundle.Bundle, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+bundleColumns+` FROM subscription_bundles WHERE id = $1`,
		id,
	)
	b, err := scanBundle(row)
	if IsNotFoundError(err) {
		return nil, bundle.ErrBundleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return b, nil
}

func (s *BundleStore) ListByUser(ctx context.Context, userID string) ([]*bundle.Bundle, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+bundleColumns+` FROM subscription_bundles
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return collectBundles(rows)
}

func (s *BundleStore) ListAll(ctx context.Context) ([]*bundle.Bundle, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+bundleColumns+` FROM subscription_bundles
		ORDER BY created_at DESC, seq DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return collectBundles(rows)
}

func (s *BundleStore) IncrementUsage(ctx context.Context, id string, now time.Time) (*bundle.Bundle, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE subscription_bundles
		SET units_used = units_used + 1, updated_at = $2
		WHERE id = $1
			AND is_active
			AND end_date > $2
			AND (units_used < max_units OR tier = ANY($3))
		RETURNING `+bundleColumns,
		id, now, s.unlimited,
	)
	b, err := scanBundle(row)
	if err == nil {
		return b, nil
	}
	if !IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to increment subscription usage: %w", err)
	}

	found, err := exists(ctx, s.db, `SELECT 1 FROM subscription_bundles WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to increment subscription usage: %w", err)
	}
	if !found {
		return nil, bundle.ErrBundleNotFound
	}
	return nil, bundle.ErrBundleExhausted
}

func (s *BundleStore) Deactivate(ctx context.Context, id string, now time.Time) (*bundle.Bundle, error) {
	return s.update(ctx, id,
		`UPDATE subscription_bundles SET is_active = FALSE, updated_at = $2
		WHERE id = $1 RETURNING `+bundleColumns,
		now,
	)
}

func (s *BundleStore) DisableAutoRenew(ctx context.Context, id string, now time.Time) (*bundle.Bundle, error) {
	return s.update(ctx, id,
		`UPDATE subscription_bundles SET auto_renew = FALSE, renewal_date = NULL, updated_at = $2
		WHERE id = $1 RETURNING `+bundleColumns,
		now,
	)
}

func (s *BundleStore) update(ctx context.Context, id, query string, now time.Time) (*bundle.Bundle, error) {
	b, err := scanBundle(s.db.QueryRow(ctx, query, id, now))
	if IsNotFoundError(err) {
		return nil, bundle.ErrBundleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	return b, nil
}

func collectBundles(rows pgx.Rows) ([]*bundle.Bundle, error) {
	defer rows.Close()

	out := make([]*bundle.Bundle, 0)
	for rows.Next() {
		b, err := scanBundle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return out, nil
}

func scanBundle(row pgx.Row) (*bundle.Bundle, error) {
	var (
		b           bundle.Bundle
		seq         int64
		tier, cycle string
		price       string
		renewalDate *time.Time
	)
	if err := row.Scan(
		&b.ID, &seq, &b.UserID, &tier, &cycle, &b.MaxUnits, &b.UnitsUsed, &price,
		&b.StartDate, &b.EndDate, &renewalDate, &b.AutoRenew, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription price %q: %w", price, err)
	}
	b.Price = p
	b.Tier = pricing.Tier(tier)
	b.BillingCycle = pricing.BillingCycle(cycle)
	b.StartDate = b.StartDate.UTC()
	b.EndDate = b.EndDate.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	if renewalDate != nil {
		rd := renewalDate.UTC()
		b.RenewalDate = &rd
	}
	b.SetSeq(seq)
	return &b, nil
}

var _ bundle.Store = (*BundleStore)(nil)
