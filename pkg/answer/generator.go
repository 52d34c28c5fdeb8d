package answer

import (
	"context"
	"math/rand/v2"
	"time"
)

// Generator wraps Generate with simulated latency.
type Generator struct {
	minDelay time.Duration
	maxDelay time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithLatency makes every call wait a uniformly random duration in [min, max).
// Invalid ranges are ignored.
func WithLatency(minDelay, maxDelay time.Duration) Option {
	return func(g *Generator) {
		if minDelay < 0 || maxDelay < minDelay {
			return
		}
		g.minDelay = minDelay
		g.maxDelay = maxDelay
	}
}

// NewGenerator returns a Generator. Without options it answers immediately.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate waits for the simulated latency and returns the answer with its
// token estimate. It returns ctx.Err() if ctx ends first.
func (g *Generator) Generate(ctx context.Context, question string) (string, int, error) {
	if d := g.delay(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", 0, ctx.Err()
		case <-t.C:
		}
	}
	text, tokens := Generate(question)
	return text, tokens, nil
}

func (g *Generator) delay() time.Duration {
	if g.maxDelay <= g.minDelay {
		return g.minDelay
	}
	return g.minDelay + rand.N(g.maxDelay-g.minDelay)
}
