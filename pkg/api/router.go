package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/dmitrymomot/chatbilling/pkg/account"
	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/chat"
	"github.com/dmitrymomot/chatbilling/pkg/dashboard"
	"github.com/dmitrymomot/chatbilling/pkg/environment"
	"github.com/dmitrymomot/chatbilling/pkg/httpserver"
	"github.com/dmitrymomot/chatbilling/pkg/pricing"
	"github.com/dmitrymomot/chatbilling/pkg/renewal"
	"github.com/dmitrymomot/chatbilling/pkg/requestid"
)

// ChatService answers questions and lists history. *chat.Service satisfies it.
type ChatService interface {
	Send(ctx context.Context, userID, question string) (*chat.Message, error)
	History(ctx context.Context, userID string) ([]*chat.Message, error)
}

// SubscriptionService manages bundles. *bundle.Service satisfies it.
type SubscriptionService interface {
	Purchase(ctx context.Context, userID string, tier pricing.Tier, cycle pricing.BillingCycle, autoRenew bool) (*bundle.Bundle, error)
	List(ctx context.Context, userID string) ([]*bundle.Bundle, error)
	ListActive(ctx context.Context, userID string) ([]*bundle.Bundle, error)
	Cancel(ctx context.Context, userID, bundleID string) (*bundle.Bundle, error)
}

// RenewalSweeper runs a renewal pass. *renewal.Sweeper satisfies it.
type RenewalSweeper interface {
	Sweep(ctx context.Context) (renewal.Result, error)
}

// StatsService builds dashboard stats. *dashboard.Service satisfies it.
type StatsService interface {
	Stats(ctx context.Context, userID string) (dashboard.Stats, error)
}

// AccountService registers and authenticates users. *account.Service satisfies it.
type AccountService interface {
	Signup(ctx context.Context, email, password string) (*account.Session, error)
	Signin(ctx context.Context, email, password string) (*account.Session, error)
	Get(ctx context.Context, id string) (*account.User, error)
}

// Services are the handlers' collaborators. Accounts is optional and
// the /api/auth routes are only mounted when it is set. The rest are required.
type Services struct {
	Chat          ChatService
	Subscriptions SubscriptionService
	Renewals      RenewalSweeper
	Dashboard     StatsService
	Accounts      AccountService
}

type routerConfig struct {
	logger         *slog.Logger
	env            environment.Environment
	allowedOrigins []string
	middlewares    []func(http.Handler) http.Handler
	metrics        http.Handler
	checks         []httpserver.Check
	timeout        time.Duration
}

// Option configures the router.
type Option func(*routerConfig)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *routerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEnvironment sets the environment stored in every request context.
func WithEnvironment(env environment.Environment) Option {
	return func(c *routerConfig) { c.env = env }
}

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *routerConfig) { c.allowedOrigins = origins }
}

// WithMiddleware appends middleware applied to every route,
// e.g. (*metrics.Metrics).Middleware.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(c *routerConfig) { c.middlewares = append(c.middlewares, mw...) }
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *routerConfig) { c.metrics = h }
}

// WithHealthChecks adds readiness probes to GET /health.
func WithHealthChecks(checks ...httpserver.Check) Option {
	return func(c *routerConfig) { c.checks = append(c.checks, checks...) }
}

// WithRequestTimeout bounds every /api request. Defaults to 30s.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *routerConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewRouter builds the HTTP handler. Panics if auth or any service is nil.
func NewRouter(auth Authenticator, svc Services, opts ...Option) http.Handler {
	if auth == nil {
		panic("api: Authenticator is required")
	}
	if svc.Chat == nil || svc.Subscriptions == nil || svc.Renewals == nil || svc.Dashboard == nil {
		panic("api: all services are required")
	}

	cfg := &routerConfig{
		logger:  slog.Default(),
		env:     environment.Development,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &handlers{svc: svc, log: cfg.logger}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		environment.Middleware(cfg.env),
		middleware.Recoverer,
	)
	if len(cfg.allowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", requestid.Header},
			ExposedHeaders:   []string{requestid.Header},
			AllowCredentials: true,
		}).Handler)
	}
	r.Use(cfg.middlewares...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Message: "Route not found", Code: CodeNotFound}})
	})

	r.Get("/health", httpserver.HealthCheckHandler(cfg.logger, cfg.checks...))
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.timeout))
		r.Get("/pricing", h.pricing)

		if svc.Accounts != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", h.signup)
				r.Post("/signin", h.signin)
				r.With(requireUser(auth, cfg.logger)).Get("/me", h.me)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(requireUser(auth, cfg.logger))

			r.Route("/chat", func(r chi.Router) {
				r.Post("/message", h.sendMessage)
				r.Get("/history", h.chatHistory)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/create", h.createSubscription)
				r.Get("/", h.listSubscriptions)
				r.Get("/active", h.activeSubscriptions)
				r.Post("/{id}/cancel", h.cancelSubscription)
				r.Post("/renewals/process", h.processRenewals)
			})

			r.Get("/dashboard/stats", h.dashboardStats)
		})
	})

	return r
}
