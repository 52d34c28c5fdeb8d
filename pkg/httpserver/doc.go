// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts and a JSON health check handler.
//
// A Server is built with New or NewFromConfig and functional options such as
// WithAddr, WithReadTimeout and WithLogger. Run binds the listener first, so
// listen errors surface immediately as ErrStart, then serves until the
// context is cancelled or Shutdown is called. Start and stop hooks run around
// the life-cycle.
//
// Usage:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	var cfg httpserver.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	return srv.Run(ctx, router)
//
// Health probes:
//
//	r.Get("/health", httpserver.HealthCheckHandler(log,
//		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//		httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//	))
package httpserver
