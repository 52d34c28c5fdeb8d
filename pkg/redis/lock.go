package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLockTTL bounds how long a crashed holder can block others.
const DefaultLockTTL = 10 * time.Minute

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a single-key mutual exclusion lock built on SET NX.
// A Lock value is owned by one process; create one per holder.
type Lock struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	token  string
}

// NewLock returns a lock on key. A non-positive ttl uses DefaultLockTTL.
func NewLock(client redis.UniversalClient, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Lock{
		client: client,
		key:    key,
		ttl:    ttl,
		token:  uuid.NewString(),
	}
}

// TryLock acquires the lock without waiting. It reports false when the key
// is held by someone else.
func (l *Lock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, errors.Join(ErrLockFailed, err)
	}
	return ok, nil
}

// Unlock releases the lock if this Lock still owns it.
// Returns ErrLockNotHeld when the key expired or belongs to another holder.
func (l *Lock) Unlock(ctx context.Context) error {
	n, err := unlockScript.Run(ctx, l.client, []string{l.key}, l.token).Int64()
	if err != nil {
		return errors.Join(ErrLockFailed, err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
