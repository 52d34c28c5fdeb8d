// Package bundle manages purchased subscription bundles.
//
// A Bundle is a prepaid grant of chat units with its own counter and validity
// window. Users may hold any number of bundles at once, current and historical.
// Bundles are created by a purchase or by a successful auto-renewal and are
// never deleted.
//
// Two independent flags describe a bundle's lifecycle:
//
//   - IsActive: false once the bundle has been deactivated (failed renewal).
//     Deactivation is terminal; a bundle is never reactivated.
//   - AutoRenew: cleared when the user cancels. A cancelled bundle keeps
//     granting access until its EndDate; only future renewals stop.
//
// Store implementations must apply IncrementUsage as one conditional update so
// that a bundle's counter cannot pass MaxUnits under concurrent writers
// (unlimited tiers excepted).
//
// Basic usage:
//
//	svc := bundle.NewService(bundle.NewMemoryStore())
//	b, err := svc.Purchase(ctx, userID, pricing.TierPro, pricing.BillingCycleMonthly, true)
//	...
//	_, err = svc.Cancel(ctx, userID, b.ID)
package bundle
