package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chatbilling/pkg/pricing"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	t.Run("enterprise yearly", func(t *testing.T) {
		t.Parallel()
		entry := pricing.Lookup(pricing.TierEnterprise, pricing.BillingCycleYearly)
		assert.Equal(t, int64(999999), entry.MaxUnits)
		assert.True(t, entry.Price.Equal(decimal.RequireFromString("2000.00")))
	})

	t.Run("basic monthly", func(t *testing.T) {
		t.Parallel()
		entry := pricing.Lookup(pricing.TierBasic, pricing.BillingCycleMonthly)
		assert.Equal(t, int64(10), entry.MaxUnits)
		assert.Equal(t, "10", entry.Price.String())
	})

	t.Run("yearly is ten times monthly", func(t *testing.T) {
		t.Parallel()
		for _, tier := range pricing.Tiers {
			monthly := pricing.Lookup(tier, pricing.BillingCycleMonthly)
			yearly := pricing.Lookup(tier, pricing.BillingCycleYearly)
			assert.True(t, yearly.Price.Equal(monthly.Price.Mul(decimal.NewFromInt(10))), tier)
			assert.Equal(t, monthly.MaxUnits, yearly.MaxUnits, tier)
		}
	})

	t.Run("panics on unknown tier", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			pricing.Lookup(pricing.Tier("gold"), pricing.BillingCycleMonthly)
		})
	})

	t.Run("table covers every pair", func(t *testing.T) {
		t.Parallel()
		tbl := pricing.Table()
		assert.Len(t, tbl, 6)
		entry, ok := tbl[pricing.Key{Tier: pricing.TierPro, BillingCycle: pricing.BillingCycleYearly}]
		require.True(t, ok)
		assert.Equal(t, int64(100), entry.MaxUnits)
	})
}

func TestTier(t *testing.T) {
	t.Parallel()

	assert.True(t, pricing.TierEnterprise.HasUnlimitedQuota())
	assert.False(t, pricing.TierPro.HasUnlimitedQuota())
	assert.False(t, pricing.TierBasic.HasUnlimitedQuota())

	tier, err := pricing.ParseTier(" Pro ")
	require.NoError(t, err)
	assert.Equal(t, pricing.TierPro, tier)

	_, err = pricing.ParseTier("gold")
	assert.ErrorIs(t, err, pricing.ErrInvalidTier)
}

func TestBillingCycle(t *testing.T) {
	t.Parallel()

	c, err := pricing.ParseBillingCycle("YEARLY")
	require.NoError(t, err)
	assert.Equal(t, pricing.BillingCycleYearly, c)

	_, err = pricing.ParseBillingCycle("weekly")
	assert.ErrorIs(t, err, pricing.ErrInvalidBillingCycle)

	start := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC), pricing.BillingCycleMonthly.Advance(start))
	assert.Equal(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC), pricing.BillingCycleYearly.Advance(start))
}
