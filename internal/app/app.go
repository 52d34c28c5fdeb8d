// Package app wires the billing core to its storage, lock and metrics
// backends for the server and CLI binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/chatbilling/pkg/account"
	"github.com/dmitrymomot/chatbilling/pkg/answer"
	"github.com/dmitrymomot/chatbilling/pkg/api"
	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/chat"
	"github.com/dmitrymomot/chatbilling/pkg/dashboard"
	"github.com/dmitrymomot/chatbilling/pkg/entitlement"
	"github.com/dmitrymomot/chatbilling/pkg/environment"
	"github.com/dmitrymomot/chatbilling/pkg/httpserver"
	"github.com/dmitrymomot/chatbilling/pkg/jwt"
	"github.com/dmitrymomot/chatbilling/pkg/logger"
	"github.com/dmitrymomot/chatbilling/pkg/metrics"
	"github.com/dmitrymomot/chatbilling/pkg/pg"
	"github.com/dmitrymomot/chatbilling/pkg/redis"
	"github.com/dmitrymomot/chatbilling/pkg/renewal"
	"github.com/dmitrymomot/chatbilling/pkg/requestid"
	"github.com/dmitrymomot/chatbilling/pkg/usage"
)

// App holds the wired components.
type App struct {
	Settings      Settings
	Logger        *slog.Logger
	Registry      *prometheus.Registry
	Metrics       *metrics.Metrics
	Resolver      *entitlement.Resolver
	Subscriptions *bundle.Service
	Chat          *chat.Service
	Dashboard     *dashboard.Service
	Sweeper       *renewal.Sweeper
	Tokens        *jwt.Service
	Accounts      *account.Service

	checks  []httpserver.Check
	closers []func()
}

// NewLogger builds the process logger for cfg.
func NewLogger(cfg Config) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
}

// New connects the configured backends and wires every component.
// Close must be called to release connections.
func New(ctx context.Context, s Settings, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{Settings: s, Logger: log}

	var (
		ledgers  usage.Store
		bundles  bundle.Store
		messages chat.MessageStore
		users    account.Store
	)
	switch s.App.Storage {
	case StoragePostgres:
		pool, err := pg.Connect(ctx, s.Postgres)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if err := pg.Migrate(ctx, pool, s.Postgres, log); err != nil {
			a.Close()
			return nil, err
		}
		a.checks = append(a.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
		ledgers = pg.NewLedgerStore(pool)
		bundles = pg.NewBundleStore(pool)
		messages = pg.NewMessageStore(pool)
		users = pg.NewUserStore(pool)
	case StorageMemory:
		ledgers = usage.NewMemoryStore()
		bundles = bundle.NewMemoryStore()
		messages = chat.NewMemoryStore()
		users = account.NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStorage, s.App.Storage)
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.Registry)

	a.Resolver = entitlement.NewResolver(ledgers, bundles,
		entitlement.WithLogger(log.With(logger.Component("entitlement"))),
		entitlement.WithObserver(a.Metrics),
	)
	a.Subscriptions = bundle.NewService(bundles, bundle.WithLogger(log.With(logger.Component("subscriptions"))))
	answers := answer.NewGenerator(answer.WithLatency(s.App.AnswerMinDelay, s.App.AnswerMaxDelay))
	a.Chat = chat.NewService(a.Resolver, answers, messages, chat.WithLogger(log.With(logger.Component("chat"))))
	a.Dashboard = dashboard.NewService(a.Chat, bundles, a.Resolver)

	sweepOpts := []renewal.Option{
		renewal.WithPaymentProvider(renewal.NewBernoulliProvider(s.App.RenewalSuccessRate, nil)),
		renewal.WithLogger(log.With(logger.Component("renewal"))),
		renewal.WithObserver(a.Metrics),
		renewal.WithDeactivateOnRenewal(s.App.DeactivateOnRenewal),
	}
	if s.App.RenewalLock == LockRedis {
		client, err := redis.Connect(ctx, s.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", logger.Error(err))
			}
		})
		a.checks = append(a.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		sweepOpts = append(sweepOpts, renewal.WithLocker(redis.NewLock(client, s.Redis.SweepLockKey, s.Redis.SweepLockTTL)))
	}
	a.Sweeper = renewal.NewSweeper(bundles, a.Subscriptions, sweepOpts...)

	if s.App.JWTSecret != "" {
		tokens, err := jwt.New(s.App.JWTSecret, jwt.WithIssuer(s.App.JWTIssuer), jwt.WithTTL(s.App.JWTTTL))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Tokens = tokens
		a.Accounts = account.NewService(users, tokens, account.WithLogger(log.With(logger.Component("account"))))
	}
	return a, nil
}

// Handler builds the HTTP API. It requires a JWT secret.
func (a *App) Handler() (http.Handler, error) {
	if a.Tokens == nil {
		return nil, ErrMissingJWTSecret
	}
	return api.NewRouter(api.NewJWTAuthenticator(a.Tokens), api.Services{
		Chat:          a.Chat,
		Subscriptions: a.Subscriptions,
		Renewals:      a.Sweeper,
		Dashboard:     a.Dashboard,
		Accounts:      a.Accounts,
	},
		api.WithLogger(a.Logger.With(logger.Component("api"))),
		api.WithEnvironment(environment.Parse(a.Settings.App.Env)),
		api.WithAllowedOrigins(a.Settings.App.CORSOrigins...),
		api.WithMiddleware(a.Metrics.Middleware),
		api.WithMetricsHandler(metrics.Handler(a.Registry)),
		api.WithHealthChecks(a.checks...),
	), nil
}

// Scheduler builds the renewal cron scheduler.
func (a *App) Scheduler() (*renewal.Scheduler, error) {
	return renewal.NewScheduler(a.Sweeper, a.Settings.App.RenewalSchedule,
		renewal.WithSweepTimeout(a.Settings.App.RenewalTimeout),
		renewal.WithSchedulerLogger(a.Logger.With(logger.Component("scheduler"))),
	)
}

// Close releases backend connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
