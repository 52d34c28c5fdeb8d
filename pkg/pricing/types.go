package pricing

import (
	"strings"
	"time"
)

// Tier is the service level of a subscription bundle.
type Tier string

const (
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Tiers lists every supported tier from cheapest to most expensive.
var Tiers = []Tier{TierBasic, TierPro, TierEnterprise}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierBasic, TierPro, TierEnterprise:
		return true
	}
	return false
}

// HasUnlimitedQuota reports whether bundles of this tier are never denied
// because of their unit counter. The counter is still incremented for
// reporting.
func (t Tier) HasUnlimitedQuota() bool {
	return t == TierEnterprise
}

func (t Tier) String() string {
	return string(t)
}

// ParseTier converts user input into a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidTier
	}
	return t, nil
}

// BillingCycle is the purchase and renewal period of a bundle.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// BillingCycles lists every supported billing cycle.
var BillingCycles = []BillingCycle{BillingCycleMonthly, BillingCycleYearly}

// Valid reports whether c is a known billing cycle.
func (c BillingCycle) Valid() bool {
	return c == BillingCycleMonthly || c == BillingCycleYearly
}

func (c BillingCycle) String() string {
	return string(c)
}

// Advance returns the end of a billing window that starts at t.
// Calendar arithmetic is used, so Jan 31 + 1 month normalizes like time.AddDate.
func (c BillingCycle) Advance(t time.Time) time.Time {
	if c == BillingCycleYearly {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// ParseBillingCycle converts user input into a BillingCycle.
func ParseBillingCycle(s string) (BillingCycle, error) {
	c := BillingCycle(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidBillingCycle
	}
	return c, nil
}
