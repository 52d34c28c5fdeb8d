package renewal

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/dmitrymomot/chatbilling/pkg/bundle"
)

// DefaultSuccessRate is the probability that a simulated renewal charge succeeds.
const DefaultSuccessRate = 0.8

// PaymentProvider charges the renewal of a bundle.
// It returns false when the payment was declined.
type PaymentProvider interface {
	Charge(ctx context.Context, b *bundle.Bundle) (bool, error)
}

// PaymentFunc adapts a function to PaymentProvider.
type PaymentFunc func(ctx context.Context, b *bundle.Bundle) (bool, error)

// Charge calls f.
func (f PaymentFunc) Charge(ctx context.Context, b *bundle.Bundle) (bool, error) {
	return f(ctx, b)
}

var (
	// AlwaysSucceed approves every charge.
	AlwaysSucceed PaymentProvider = PaymentFunc(func(context.Context, *bundle.Bundle) (bool, error) { return true, nil })

	// AlwaysFail declines every charge.
	AlwaysFail PaymentProvider = PaymentFunc(func(context.Context, *bundle.Bundle) (bool, error) { return false, nil })
)

// BernoulliProvider approves each charge independently with a fixed probability.
// It simulates a payment gateway and is not suitable for security purposes.
type BernoulliProvider struct {
	mu   sync.Mutex
	p    float64
	rand *rand.Rand
}

// NewBernoulliProvider returns a provider that succeeds with probability p,
// clamped to [0, 1]. A nil src uses the runtime's global random source.
func NewBernoulliProvider(p float64, src rand.Source) *BernoulliProvider {
	p = min(max(p, 0), 1)
	bp := &BernoulliProvider{p: p}
	if src != nil {
		bp.rand = rand.New(src)
	}
	return bp
}

// Probability returns the configured success probability.
func (bp *BernoulliProvider) Probability() float64 { return bp.p }

// Charge draws one outcome.
func (bp *BernoulliProvider) Charge(ctx context.Context, _ *bundle.Bundle) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if bp.rand == nil {
		return rand.Float64() < bp.p, nil
	}
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.rand.Float64() < bp.p, nil
}
