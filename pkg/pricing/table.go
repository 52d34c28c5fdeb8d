package pricing

import "github.com/shopspring/decimal"

// UnlimitedUnits is the quota stored on bundles whose tier has unlimited
// quota. It is a large finite number so counters stay comparable.
const UnlimitedUnits int64 = 999999

// Entry is the quota and price of one (tier, billing cycle) combination.
type Entry struct {
	MaxUnits int64           `json:"max_units"`
	Price    decimal.Decimal `json:"price"`
}

// Key identifies a table entry.
type Key struct {
	Tier         Tier         `json:"tier"`
	BillingCycle BillingCycle `json:"billing_cycle"`
}

var table = map[Tier]map[BillingCycle]Entry{
	TierBasic: {
		BillingCycleMonthly: {MaxUnits: 10, Price: decimal.RequireFromString("10.00")},
		BillingCycleYearly:  {MaxUnits: 10, Price: decimal.RequireFromString("100.00")},
	},
	TierPro: {
		BillingCycleMonthly: {MaxUnits: 100, Price: decimal.RequireFromString("50.00")},
		BillingCycleYearly:  {MaxUnits: 100, Price: decimal.RequireFromString("500.00")},
	},
	TierEnterprise: {
		BillingCycleMonthly: {MaxUnits: UnlimitedUnits, Price: decimal.RequireFromString("200.00")},
		BillingCycleYearly:  {MaxUnits: UnlimitedUnits, Price: decimal.RequireFromString("2000.00")},
	},
}

// Lookup returns the entry for a tier and billing cycle.
// Both values must be valid; use ParseTier and ParseBillingCycle on input
// coming from outside the process. Lookup panics on unknown values because
// that is a programming error, not a runtime condition.
func Lookup(tier Tier, cycle BillingCycle) Entry {
	cycles, ok := table[tier]
	if !ok {
		panic("pricing: unknown tier " + string(tier))
	}
	entry, ok := cycles[cycle]
	if !ok {
		panic("pricing: unknown billing cycle " + string(cycle))
	}
	return entry
}

// Table returns a copy of the full price list.
func Table() map[Key]Entry {
	out := make(map[Key]Entry, len(Tiers)*len(BillingCycles))
	for _, t := range Tiers {
		for _, c := range BillingCycles {
			out[Key{Tier: t, BillingCycle: c}] = Lookup(t, c)
		}
	}
	return out
}
