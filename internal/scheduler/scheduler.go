package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler re-runs the full download pass on a fixed interval. The
// idempotency gate makes repeated passes cheap: only newly published units
// reach the provider.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	job       func(ctx context.Context)
}

// New creates a new Scheduler running job every interval.
func New(interval time.Duration, job func(ctx context.Context)) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		job:       job,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		slog.InfoContext(ctx, "starting scheduled download pass")
		s.job(ctx)
		slog.InfoContext(ctx, "scheduled download pass finished")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
