package pg_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chatbilling/pkg/account"
	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/chat"
	"github.com/dmitrymomot/chatbilling/pkg/pg"
	"github.com/dmitrymomot/chatbilling/pkg/pricing"
	"github.com/dmitrymomot/chatbilling/pkg/usage"
)

var (
	poolOnce sync.Once
	pool     *pgxpool.Pool
	poolErr  error
)

// testPool connects to PG_TEST_CONN_URL and applies migrations once.
// Tests are skipped when the variable is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("PG_TEST_CONN_URL")
	if url == "" {
		t.Skip("PG_TEST_CONN_URL is not set")
	}
	poolOnce.Do(func() {
		ctx := context.Background()
		cfg := pg.Config{
			ConnectionString: url,
			MaxOpenConns:     10,
			MaxIdleConns:     1,
			RetryAttempts:    1,
			RetryInterval:    time.Second,
			MigrationsTable:  "schema_migrations",
		}
		pool, poolErr = pg.Connect(ctx, cfg)
		if poolErr != nil {
			return
		}
		poolErr = pg.Migrate(ctx, pool, cfg, slog.Default())
	})
	require.NoError(t, poolErr)
	return pool
}

func userID() string { return "user-" + uuid.NewString() }

var now = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://localhost:notaport/db"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestHealthcheck(t *testing.T) {
	p := testPool(t)
	assert.NoError(t, pg.Healthcheck(p)(context.Background()))
}

func TestSchemaVersion(t *testing.T) {
	p := testPool(t)
	v, err := pg.SchemaVersion(context.Background(), p, pg.Config{MigrationsTable: "schema_migrations"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, v)
}

func TestLedgerStore(t *testing.T) {
	p := testPool(t)
	ctx := context.Background()
	s := pg.NewLedgerStore(p)

	t.Run("create and get", func(t *testing.T) {
		uid := userID()
		_, err := s.Get(ctx, uid)
		require.ErrorIs(t, err, usage.ErrLedgerNotFound)

		l, err := s.Create(ctx, &usage.Ledger{UserID: uid, LastResetDate: now, CreatedAt: now, UpdatedAt: now})
		require.NoError(t, err)
		assert.Equal(t, int64(0), l.FreeUnitsUsed)
		assert.True(t, now.Equal(l.LastResetDate))

		_, err = s.Create(ctx, &usage.Ledger{UserID: uid, LastResetDate: now, CreatedAt: now, UpdatedAt: now})
		assert.ErrorIs(t, err, usage.ErrLedgerExists)
	})

	t.Run("increment stops at limit", func(t *testing.T) {
		uid := userID()
		_, err := s.IncrementFree(ctx, uid, usage.FreeCap, now)
		require.ErrorIs(t, err, usage.ErrLedgerNotFound)

		_, err = s.Create(ctx, &usage.Ledger{UserID: uid, LastResetDate: now, CreatedAt: now, UpdatedAt: now})
		require.NoError(t, err)

		for i := range usage.FreeCap {
			l, err := s.IncrementFree(ctx, uid, usage.FreeCap, now)
			require.NoError(t, err)
			assert.Equal(t, i+1, l.FreeUnitsUsed)
		}
		_, err = s.IncrementFree(ctx, uid, usage.FreeCap, now)
		assert.ErrorIs(t, err, usage.ErrFreeQuotaExhausted)
	})

	t.Run("concurrent increments", func(t *testing.T) {
		uid := userID()
		_, err := s.Create(ctx, &usage.Ledger{UserID: uid, LastResetDate: now, CreatedAt: now, UpdatedAt: now})
		require.NoError(t, err)

		var ok atomic.Int64
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.IncrementFree(ctx, uid, usage.FreeCap, now); err == nil {
					ok.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, usage.FreeCap, ok.Load())
	})

	t.Run("reset applies once per month", func(t *testing.T) {
		uid := userID()
		feb := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
		_, err := s.Create(ctx, &usage.Ledger{UserID: uid, FreeUnitsUsed: 3, LastResetDate: feb, CreatedAt: feb, UpdatedAt: feb})
		require.NoError(t, err)

		march1 := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
		l, err := s.Reset(ctx, uid, march1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), l.FreeUnitsUsed)
		assert.True(t, march1.Equal(l.LastResetDate))

		_, err = s.IncrementFree(ctx, uid, usage.FreeCap, march1)
		require.NoError(t, err)

		l, err = s.Reset(ctx, uid, march1.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), l.FreeUnitsUsed, "second reset in the same month is a no-op")
		assert.True(t, march1.Equal(l.LastResetDate))
	})
}

func newBundle(uid string, tier pricing.Tier, created time.Time) *bundle.Bundle {
	entry := pricing.Lookup(tier, pricing.BillingCycleMonthly)
	end := pricing.BillingCycleMonthly.Advance(created)
	return &bundle.Bundle{
		ID:           uuid.NewString(),
		UserID:       uid,
		Tier:         tier,
		BillingCycle: pricing.BillingCycleMonthly,
		MaxUnits:     entry.MaxUnits,
		Price:        entry.Price,
		StartDate:    created,
		EndDate:      end,
		RenewalDate:  &end,
		AutoRenew:    true,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestBundleStore(t *testing.T) {
	p := testPool(t)
	ctx := context.Background()
	s := pg.NewBundleStore(p)

	t.Run("create and get", func(t *testing.T) {
		b := newBundle(userID(), pricing.TierPro, now)
		created, err := s.Create(ctx, b)
		require.NoError(t, err)
		assert.Positive(t, created.Seq())
		assert.True(t, decimal.RequireFromString("50.00").Equal(created.Price))
		require.NotNil(t, created.RenewalDate)
		assert.True(t, b.EndDate.Equal(*created.RenewalDate))

		got, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Seq(), got.Seq())
		assert.Equal(t, pricing.TierPro, got.Tier)

		_, err = s.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, bundle.ErrBundleNotFound)
	})

	t.Run("list newest first with insertion tie-break", func(t *testing.T) {
		uid := userID()
		older := newBundle(uid, pricing.TierBasic, now.Add(-time.Hour))
		first := newBundle(uid, pricing.TierBasic, now)
		second := newBundle(uid, pricing.TierPro, now)
		for _, b := range []*bundle.Bundle{older, first, second} {
			_, err := s.Create(ctx, b)
			require.NoError(t, err)
		}

		list, err := s.ListByUser(ctx, uid)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
		assert.Equal(t, older.ID, list[2].ID)
	})

	t.Run("increment respects cap and expiry", func(t *testing.T) {
		b := newBundle(userID(), pricing.TierBasic, now)
		b.UnitsUsed = b.MaxUnits - 1
		_, err := s.Create(ctx, b)
		require.NoError(t, err)

		got, err := s.IncrementUsage(ctx, b.ID, now)
		require.NoError(t, err)
		assert.Equal(t, b.MaxUnits, got.UnitsUsed)

		_, err = s.IncrementUsage(ctx, b.ID, now)
		assert.ErrorIs(t, err, bundle.ErrBundleExhausted)

		fresh := newBundle(userID(), pricing.TierBasic, now)
		_, err = s.Create(ctx, fresh)
		require.NoError(t, err)
		_, err = s.IncrementUsage(ctx, fresh.ID, fresh.EndDate)
		assert.ErrorIs(t, err, bundle.ErrBundleExhausted, "bundle is expired at its end date")

		_, err = s.IncrementUsage(ctx, uuid.NewString(), now)
		assert.ErrorIs(t, err, bundle.ErrBundleNotFound)
	})

	t.Run("unlimited tier ignores counter", func(t *testing.T) {
		b := newBundle(userID(), pricing.TierEnterprise, now)
		b.UnitsUsed = b.MaxUnits
		_, err := s.Create(ctx, b)
		require.NoError(t, err)

		got, err := s.IncrementUsage(ctx, b.ID, now)
		require.NoError(t, err)
		assert.Equal(t, b.MaxUnits+1, got.UnitsUsed)
	})

	t.Run("deactivate and disable auto renew", func(t *testing.T) {
		b := newBundle(userID(), pricing.TierBasic, now)
		_, err := s.Create(ctx, b)
		require.NoError(t, err)

		got, err := s.DisableAutoRenew(ctx, b.ID, now)
		require.NoError(t, err)
		assert.False(t, got.AutoRenew)
		assert.Nil(t, got.RenewalDate)
		assert.True(t, got.IsActive)

		got, err = s.Deactivate(ctx, b.ID, now)
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		_, err = s.IncrementUsage(ctx, b.ID, now)
		assert.ErrorIs(t, err, bundle.ErrBundleExhausted)

		_, err = s.Deactivate(ctx, uuid.NewString(), now)
		assert.ErrorIs(t, err, bundle.ErrBundleNotFound)
	})
}

func TestMessageStore(t *testing.T) {
	p := testPool(t)
	ctx := context.Background()
	s := pg.NewMessageStore(p)
	uid := userID()

	n, err := s.CountByUser(ctx, uid)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i, q := range []string{"hello", "what is go?"} {
		_, err := s.Create(ctx, &chat.Message{
			ID:        uuid.NewString(),
			UserID:    uid,
			Question:  q,
			Answer:    "answer",
			Tokens:    2,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	list, err := s.ListByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "what is go?", list[0].Question)

	n, err = s.CountByUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUserStore(t *testing.T) {
	p := testPool(t)
	ctx := context.Background()
	s := pg.NewUserStore(p)

	email := uuid.NewString() + "@example.com"
	u := &account.User{
		ID:           userID(),
		Email:        email,
		PasswordHash: []byte("hash"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.Create(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u.ID, created.ID)
	assert.True(t, now.Equal(created.CreatedAt))

	dup := *u
	dup.ID = userID()
	_, err = s.Create(ctx, &dup)
	assert.ErrorIs(t, err, account.ErrEmailTaken)

	got, err := s.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []byte("hash"), got.PasswordHash)

	got, err = s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, email, got.Email)

	_, err = s.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, account.ErrUserNotFound)
	_, err = s.GetByID(ctx, userID())
	assert.ErrorIs(t, err, account.ErrUserNotFound)
}

func TestNewStores_PanicOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { pg.NewLedgerStore(nil) })
	assert.Panics(t, func() { pg.NewBundleStore(nil) })
	assert.Panics(t, func() { pg.NewMessageStore(nil) })
	assert.Panics(t, func() { pg.NewUserStore(nil) })
}
