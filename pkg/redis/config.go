package redis

import "time"

// Config holds the Redis connection and sweep lock settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // ConnectionURL is the URL of the server, e.g. "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`             // RetryAttempts is the number of connection attempts.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`            // RetryInterval is the pause between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`          // ConnectTimeout bounds the whole connection phase.

	SweepLockKey string        `env:"REDIS_SWEEP_LOCK_KEY" envDefault:"chatbilling:renewal:sweep"` // SweepLockKey is the key guarding renewal sweeps.
	SweepLockTTL time.Duration `env:"REDIS_SWEEP_LOCK_TTL" envDefault:"10m"`                       // SweepLockTTL expires a lock left by a crashed sweeper.
}
