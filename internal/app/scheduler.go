/**
 * @description
 * Cron scheduler for the service's housekeeping jobs.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// SessionSweeper ends idle wizard sessions.
type SessionSweeper interface {
	Sweep() int
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron          *cron.Cron
	sweeper       SessionSweeper
	sweepSchedule string
	logger        *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(sweeper SessionSweeper, sweepSchedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:          c,
		sweeper:       sweeper,
		sweepSchedule: sweepSchedule,
		logger:        logger,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.sweepSchedule, s.sweepSessions); err != nil {
		return fmt.Errorf("failed to schedule session sweep %q: %w", s.sweepSchedule, err)
	}
	s.logger.Info("scheduled session sweep job", "schedule", s.sweepSchedule)

	s.cron.Start()
	return nil
}

// Stop stops the cron scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweepSessions() {
	if n := s.sweeper.Sweep(); n > 0 {
		s.logger.Info("session sweep finished", "expired", n)
	}
}
