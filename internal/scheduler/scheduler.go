// Package scheduler fires the nightly sweep that closes tasks left running.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"timetracker/internal/workerpool"
)

// DefaultSchedule fires every day at 23:59:00. The expression has a seconds field.
const DefaultSchedule = "0 59 23 * * *"

const sweepJobName = "close-open-tasks"

type Sweeper interface {
	CloseOpenTasks(ctx context.Context) (int, error)
}

type Config struct {
	Schedule string
	Location *time.Location
	// Timeout bounds a single sweep; zero means no limit.
	Timeout time.Duration
}

// Scheduler turns cron ticks into sweep jobs on a worker pool. Ticks that
// arrive while a sweep is still queued are dropped.
type Scheduler struct {
	cron    *cron.Cron
	pool    workerpool.JobPool
	sweeper Sweeper
	timeout time.Duration
	logger  *slog.Logger
}

func New(cfg Config, sweeper Sweeper, pool workerpool.JobPool, logger *slog.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, errors.New("scheduler: sweeper is nil")
	}
	if pool == nil {
		return nil, errors.New("scheduler: job pool is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		pool:    pool,
		sweeper: sweeper,
		timeout: cfg.Timeout,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(schedule, s.Trigger); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("scheduler started", "next_run", e.Next.Format(time.RFC3339))
	}
}

// Stop stops firing new ticks. Draining the queued sweep is the pool's job.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger enqueues one sweep.
func (s *Scheduler) Trigger() {
	err := s.pool.Enqueue(workerpool.Job{Name: sweepJobName, Run: s.Sweep})
	switch {
	case err == nil:
	case errors.Is(err, workerpool.ErrPoolFull):
		s.logger.Warn("sweep already pending, tick dropped")
	default:
		s.logger.Error("enqueue sweep failed", "error", err)
	}
}

// Sweep runs CloseOpenTasks once, bounded by the configured timeout.
func (s *Scheduler) Sweep(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	closed, err := s.sweeper.CloseOpenTasks(ctx)
	if err != nil {
		return fmt.Errorf("close open tasks: %w", err)
	}

	s.logger.Info("sweep finished", "closed", closed, "took", time.Since(started))
	return nil
}
