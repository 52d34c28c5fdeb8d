// Package entitlement decides whether a user may consume one unit of usage
// and records that unit against exactly one counter.
//
// The free monthly allowance is always spent first. Once it is gone, the
// user's active paid bundles are tried newest first. Tiers with unlimited
// quota never deny on their counter.
//
// Basic usage:
//
//	resolver := entitlement.NewResolver(usage.NewMemoryStore(), bundle.NewMemoryStore())
//
//	if err := resolver.Authorize(ctx, userID); err != nil {
//		// errors.Is(err, entitlement.ErrQuotaExceeded)
//		// errors.Is(err, entitlement.ErrSubscriptionRequired)
//		return err
//	}
//
//	// ... do the work ...
//
//	if _, err := resolver.Record(ctx, userID); err != nil {
//		return err
//	}
//
// Check and Record are separate calls. Record resolves its target again
// and applies a conditional increment, so a concurrent request that used
// the last unit makes Record fail with ErrSubscriptionRequired instead of
// pushing a counter past its cap.
package entitlement
