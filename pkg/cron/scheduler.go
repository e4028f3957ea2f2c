// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/invoice-lens/internal/domain/dashboard"
	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron           *cron.Cron
	tracker        *record.Tracker
	stuckThreshold time.Duration
	logger         *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(tracker *record.Tracker, stuckThreshold time.Duration, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:           c,
		tracker:        tracker,
		stuckThreshold: stuckThreshold,
		logger:         logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Stuck-record sweep: records left in processing past the threshold are
	// marked errored so they stop looking in-flight forever.
	if _, err := s.cron.AddFunc("*/10 * * * *", s.sweepStuckRecords); err != nil {
		return err
	}

	// Hourly dashboard summary snapshot in the logs.
	if _, err := s.cron.AddFunc("0 * * * *", s.logSummary); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) sweepStuckRecords() {
	if n := s.tracker.SweepStuck(s.stuckThreshold); n > 0 {
		s.logger.Warn("marked stuck records as errored", slog.Int("count", n))
	}
}

func (s *Scheduler) logSummary() {
	summary := dashboard.SummaryCounts(s.tracker.List())
	s.logger.Info("dashboard summary",
		slog.Int("processed", summary.Processed),
		slog.Int("needs_validation", summary.NeedsValidation),
		slog.Int("error", summary.Error),
	)
}
