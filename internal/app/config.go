package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/chatbilling/pkg/config"
	"github.com/dmitrymomot/chatbilling/pkg/httpserver"
	"github.com/dmitrymomot/chatbilling/pkg/pg"
	"github.com/dmitrymomot/chatbilling/pkg/redis"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Renewal lock backends.
const (
	LockNone  = "none"
	LockRedis = "redis"
)

var (
	ErrInvalidStorage     = errors.New("invalid STORAGE, must be one of: memory, postgres")
	ErrInvalidRenewalLock = errors.New("invalid RENEWAL_LOCK, must be one of: none, redis")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

// Config holds process-level settings.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Name     string `env:"APP_NAME" envDefault:"chatbilling"`
	LogLevel string `env:"LOG_LEVEL"`
	Storage  string `env:"STORAGE" envDefault:"memory"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	RenewalSchedule     string        `env:"RENEWAL_SCHEDULE" envDefault:"@daily"`
	RenewalSuccessRate  float64       `env:"RENEWAL_SUCCESS_RATE" envDefault:"0.8"`
	RenewalTimeout      time.Duration `env:"RENEWAL_SWEEP_TIMEOUT" envDefault:"10m"`
	RenewalLock         string        `env:"RENEWAL_LOCK" envDefault:"none"`
	DeactivateOnRenewal bool          `env:"RENEWAL_DEACTIVATE_OLD" envDefault:"false"`

	AnswerMinDelay time.Duration `env:"ANSWER_MIN_DELAY" envDefault:"500ms"`
	AnswerMaxDelay time.Duration `env:"ANSWER_MAX_DELAY" envDefault:"2s"`

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorage, c.Storage)
	}
	switch c.RenewalLock {
	case LockNone, LockRedis:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRenewalLock, c.RenewalLock)
	}
	return nil
}

// Settings groups every configuration struct the binaries need.
type Settings struct {
	App      Config
	Postgres pg.Config
	Redis    redis.Config
	HTTP     httpserver.Config
}

// LoadSettings reads every configuration struct from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := config.Load(&s.App); err != nil {
		return s, err
	}
	if err := s.App.Validate(); err != nil {
		return s, err
	}
	if err := config.Load(&s.Postgres); err != nil {
		return s, err
	}
	if err := config.Load(&s.Redis); err != nil {
		return s, err
	}
	if err := config.Load(&s.HTTP); err != nil {
		return s, err
	}
	return s, nil
}
