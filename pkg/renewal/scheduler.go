package renewal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/chatbilling/pkg/logger"
)

// DefaultSchedule runs the sweep once a day at midnight.
const DefaultSchedule = "@daily"

// Scheduler runs a Sweeper on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	spec    string
	timeout time.Duration
	logger  *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSweepTimeout bounds a single scheduled sweep. Zero means no bound.
func WithSweepTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler registers sweeper on spec, a standard five-field cron
// expression or a descriptor such as "@daily" or "@every 1h".
// Overlapping runs are skipped.
func NewScheduler(sweeper *Sweeper, spec string, opts ...SchedulerOption) (*Scheduler, error) {
	if sweeper == nil {
		panic("renewal: Sweeper is required")
	}
	if spec == "" {
		spec = DefaultSchedule
	}
	s := &Scheduler{
		sweeper: sweeper,
		spec:    spec,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cl := cronLogger{s.logger}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}
	return s, nil
}

// Start begins running sweeps in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("renewal scheduler started", slog.String("schedule", s.spec))
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("renewal scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("renewal scheduler stop: %w", ctx.Err())
	}
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.logger.Info("renewal sweep skipped: another instance holds the lock")
			return
		}
		s.logger.Error("scheduled renewal sweep failed", logger.Error(err))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{logger.Error(err)}, keysAndValues...)...)
}
