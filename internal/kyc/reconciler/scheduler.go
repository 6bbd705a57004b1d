package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Poller is the job the scheduler runs.
type Poller interface {
	PollPending(ctx context.Context) (PollSummary, error)
}

// Scheduler runs PollPending on a cron schedule as a fallback for missed
// webhooks.
type Scheduler struct {
	cron    *cron.Cron
	poller  Poller
	logger  *slog.Logger
	timeout time.Duration
}

// NewScheduler registers the poll job. spec accepts standard cron expressions
// and descriptors such as "@every 15m".
func NewScheduler(spec string, poller Poller, logger *slog.Logger, timeout time.Duration) (*Scheduler, error) {
	if poller == nil {
		return nil, fmt.Errorf("poller is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	s := &Scheduler{cron: c, poller: poller, logger: logger, timeout: timeout}
	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("schedule poll job %q: %w", spec, err)
	}
	logger.Info("scheduled pending verification poll", "schedule", spec)
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and returns a context done once a running poll ends.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	summary, err := s.poller.PollPending(ctx)
	if err != nil {
		s.logger.Error("pending verification poll failed", "error", err)
		return
	}
	s.logger.Info("pending verification poll finished",
		"checked", summary.Checked,
		"reconciled", summary.Reconciled,
		"failed", summary.Failed,
		"duration", time.Since(start),
	)
}
