// Command server runs the chat billing HTTP API and the renewal scheduler.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/chatbilling/internal/app"
	"github.com/dmitrymomot/chatbilling/pkg/httpserver"
	"github.com/dmitrymomot/chatbilling/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := app.LoadSettings()
	if err != nil {
		return err
	}
	log := app.NewLogger(settings.App)
	logger.SetAsDefault(log)

	a, err := app.New(ctx, settings, log)
	if err != nil {
		return err
	}
	defer a.Close()

	handler, err := a.Handler()
	if err != nil {
		return err
	}
	scheduler, err := a.Scheduler()
	if err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(settings.HTTP, httpserver.WithLogger(log.With(logger.Component("http"))))

	log.InfoContext(ctx, "starting",
		slog.String("storage", settings.App.Storage),
		slog.String("renewal_lock", settings.App.RenewalLock),
		slog.String("renewal_schedule", settings.App.RenewalSchedule),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, handler) })
	g.Go(func() error { return scheduler.Run(ctx) })
	return g.Wait()
}
