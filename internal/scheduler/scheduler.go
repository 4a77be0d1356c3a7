// Package scheduler runs the periodic repository sync job.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps a gocron scheduler for the CMS background jobs.
type Scheduler struct {
	inner gocron.Scheduler
}

// New creates a stopped scheduler.
func New() (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{inner: inner}, nil
}

// SchedulePeriodicSync registers task to run every interval. The first run
// happens one interval after Start.
func (s *Scheduler) SchedulePeriodicSync(interval time.Duration, task func()) error {
	if interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", interval)
	}
	job, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("repository-sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule repository sync: %w", err)
	}
	slog.Info("Scheduled periodic repository sync",
		slog.String("job_id", job.ID().String()),
		slog.Duration("interval", interval))
	return nil
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.inner.Start()
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (s *Scheduler) Stop() error {
	if err := s.inner.Shutdown(); err != nil {
		return fmt.Errorf("shut down scheduler: %w", err)
	}
	return nil
}
