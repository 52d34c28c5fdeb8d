// Package pricing holds the static price list for paid chat bundles.
//
// The table maps a (Tier, BillingCycle) pair to the number of chat units a
// bundle grants and the price charged for it. It is a pure lookup with no
// state and no error path: every valid pair has an entry.
//
//	entry := pricing.Lookup(pricing.TierPro, pricing.BillingCycleMonthly)
//	fmt.Println(entry.MaxUnits, entry.Price) // 100 50
//
// Tier carries the only tier-specific behaviour the rest of the system needs:
// HasUnlimitedQuota reports whether the tier ignores its unit counter.
// Callers must check that flag instead of comparing tier names.
//
// Yearly prices are ten times the monthly price, so a yearly purchase is two
// months cheaper than twelve monthly ones. Quota size does not depend on the
// billing cycle.
package pricing
