package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chatbilling/pkg/redis"
	"github.com/dmitrymomot/chatbilling/pkg/renewal"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("connects to a running server", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + mr.Addr() + "/0",
			RetryAttempts:  3,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		require.NoError(t, err)
		defer client.Close()

		require.NoError(t, redis.Healthcheck(client)(context.Background()))
	})

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://nope"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("server down", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + addr + "/0",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

func TestHealthcheck_Failure(t *testing.T) {
	t.Parallel()

	mr, client := newClient(t)
	mr.Close()

	err := redis.Healthcheck(client)(context.Background())
	assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
}

func TestLock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("single holder", func(t *testing.T) {
		t.Parallel()
		_, client := newClient(t)
		a := redis.NewLock(client, "sweep", time.Minute)
		b := redis.NewLock(client, "sweep", time.Minute)

		ok, err := a.TryLock(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = b.TryLock(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, b.Unlock(ctx), redis.ErrLockNotHeld, "foreign unlock must not release")

		require.NoError(t, a.Unlock(ctx))
		ok, err = b.TryLock(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		a := redis.NewLock(client, "sweep", time.Minute)
		b := redis.NewLock(client, "sweep", time.Minute)

		ok, err := a.TryLock(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		mr.FastForward(2 * time.Minute)

		ok, err = b.TryLock(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.ErrorIs(t, a.Unlock(ctx), redis.ErrLockNotHeld)
	})

	t.Run("default ttl", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		l := redis.NewLock(client, "sweep", 0)

		ok, err := l.TryLock(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, redis.DefaultLockTTL, mr.TTL("sweep"))
	})

	t.Run("server errors", func(t *testing.T) {
		t.Parallel()
		mr, client := newClient(t)
		l := redis.NewLock(client, "sweep", time.Minute)
		mr.Close()

		_, err := l.TryLock(ctx)
		assert.ErrorIs(t, err, redis.ErrLockFailed)
	})
}

var _ renewal.Locker = (*redis.Lock)(nil)
