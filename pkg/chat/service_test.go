package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chatbilling/pkg/answer"
	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/chat"
	"github.com/dmitrymomot/chatbilling/pkg/entitlement"
	"github.com/dmitrymomot/chatbilling/pkg/pricing"
	"github.com/dmitrymomot/chatbilling/pkg/usage"
)

type mockEntitlements struct {
	mock.Mock
}

func (m *mockEntitlements) Authorize(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockEntitlements) Record(ctx context.Context, userID string) (entitlement.Target, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(entitlement.Target), args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, question string) (string, int, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Int(1), args.Error(2)
}

func TestService_Send(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("trims, answers, stores and records", func(t *testing.T) {
		t.Parallel()
		ent := &mockEntitlements{}
		gen := &mockGenerator{}
		store := chat.NewMemoryStore()
		svc := chat.NewService(ent, gen, store, chat.WithIDGenerator(func() string { return "m-1" }))

		ent.On("Authorize", ctx, "u").Return(nil).Once()
		gen.On("Generate", ctx, "what is go?").Return("Go is a language.", 7, nil).Once()
		ent.On("Record", ctx, "u").Return(entitlement.Target{Kind: entitlement.TargetFree}, nil).Once()

		msg, err := svc.Send(ctx, "u", "  what is go?  ")
		require.NoError(t, err)
		assert.Equal(t, "m-1", msg.ID)
		assert.Equal(t, "what is go?", msg.Question)
		assert.Equal(t, 7, msg.Tokens)

		n, err := svc.Count(ctx, "u")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		ent.AssertExpectations(t)
		gen.AssertExpectations(t)
	})

	t.Run("empty question", func(t *testing.T) {
		t.Parallel()
		ent := &mockEntitlements{}
		svc := chat.NewService(ent, &mockGenerator{}, chat.NewMemoryStore())

		_, err := svc.Send(ctx, "u", "   ")
		assert.ErrorIs(t, err, chat.ErrEmptyQuestion)
		ent.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
	})

	t.Run("denied before generating", func(t *testing.T) {
		t.Parallel()
		ent := &mockEntitlements{}
		gen := &mockGenerator{}
		svc := chat.NewService(ent, gen, chat.NewMemoryStore())

		ent.On("Authorize", ctx, "u").Return(entitlement.ErrQuotaExceeded).Once()

		_, err := svc.Send(ctx, "u", "hi")
		assert.ErrorIs(t, err, entitlement.ErrQuotaExceeded)
		gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("generator error", func(t *testing.T) {
		t.Parallel()
		ent := &mockEntitlements{}
		gen := &mockGenerator{}
		store := chat.NewMemoryStore()
		svc := chat.NewService(ent, gen, store)

		ent.On("Authorize", ctx, "u").Return(nil)
		gen.On("Generate", ctx, "hi").Return("", 0, errors.New("model unavailable"))

		_, err := svc.Send(ctx, "u", "hi")
		require.Error(t, err)

		n, err := store.CountByUser(ctx, "u")
		require.NoError(t, err)
		assert.Zero(t, n)
		ent.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("lost race on record", func(t *testing.T) {
		t.Parallel()
		ent := &mockEntitlements{}
		gen := &mockGenerator{}
		svc := chat.NewService(ent, gen, chat.NewMemoryStore())

		ent.On("Authorize", ctx, "u").Return(nil)
		gen.On("Generate", ctx, "hi").Return("Hello!", 3, nil)
		ent.On("Record", ctx, "u").Return(entitlement.Target{Kind: entitlement.TargetNone}, entitlement.ErrSubscriptionRequired)

		_, err := svc.Send(ctx, "u", "hi")
		assert.ErrorIs(t, err, entitlement.ErrSubscriptionRequired)
	})
}

func TestService_FreeThenSubscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := func() time.Time { return time.Date(2024, 9, 12, 10, 0, 0, 0, time.UTC) }

	bundles := bundle.NewMemoryStore()
	resolver := entitlement.NewResolver(usage.NewMemoryStore(), bundles, entitlement.WithClock(now))
	svc := chat.NewService(resolver, answer.NewGenerator(), chat.NewMemoryStore(), chat.WithClock(now))

	for range usage.FreeCap {
		_, err := svc.Send(ctx, "u", "hello")
		require.NoError(t, err)
	}

	_, err := svc.Send(ctx, "u", "hello")
	require.ErrorIs(t, err, entitlement.ErrSubscriptionRequired)

	subs := bundle.NewService(bundles, bundle.WithClock(now))
	b, err := subs.Purchase(ctx, "u", pricing.TierBasic, pricing.BillingCycleMonthly, true)
	require.NoError(t, err)

	_, err = svc.Send(ctx, "u", "what is an api?")
	require.NoError(t, err)

	stored, err := bundles.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.UnitsUsed)

	history, err := svc.History(ctx, "u")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "what is an api?", history[0].Question, "newest first")
}
