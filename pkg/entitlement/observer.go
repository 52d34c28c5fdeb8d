package entitlement

import "context"

// Observer receives resolver events. Implementations must be safe for
// concurrent use.
type Observer interface {
	DecisionMade(ctx context.Context, userID string, d Decision)
	UsageRecorded(ctx context.Context, userID string, t Target)
}

type noopObserver struct{}

func (noopObserver) DecisionMade(context.Context, string, Decision) {}
func (noopObserver) UsageRecorded(context.Context, string, Target)  {}
