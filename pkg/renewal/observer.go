package renewal

import (
	"context"
	"time"

	"github.com/dmitrymomot/chatbilling/pkg/bundle"
)

// Outcome of processing one due bundle.
type Outcome string

const (
	OutcomeRenewed Outcome = "renewed"
	OutcomeFailed  Outcome = "failed"
)

// Observer receives sweep events.
type Observer interface {
	RenewalProcessed(ctx context.Context, b *bundle.Bundle, outcome Outcome)
	SweepFinished(ctx context.Context, res Result, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) RenewalProcessed(context.Context, *bundle.Bundle, Outcome) {}
func (noopObserver) SweepFinished(context.Context, Result, time.Duration)     {}
