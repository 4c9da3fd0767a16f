// Package jobs wires the background schedule of the alerting service:
// periodic inventory sweeps plus nightly retention cleanup for the dedup
// ledger and for dismissed notifications.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rxhub/pharmacy-alerts/internal/repo"
	"github.com/rxhub/pharmacy-alerts/internal/services"
)

// Scheduler manages background jobs.
type Scheduler struct {
	cron  *cron.Cron
	db    *gorm.DB
	sweep *services.SweepService

	// SweepEvery is the tick cadence for inventory sweeps. The sweep's own
	// interval claim decides whether a tick actually runs, so ticking more
	// often than the claim interval is cheap.
	SweepEvery time.Duration

	// Recipients receive the notifications raised by sweeps.
	Recipients []string

	// DedupRetention prunes ledger rows whose last send is older than this.
	DedupRetention time.Duration

	// DismissedRetention hard-deletes dismissed notifications older than this.
	DismissedRetention time.Duration

	// JobTimeout bounds each job run.
	JobTimeout time.Duration
}

// NewScheduler creates a job scheduler with default cadences and retention.
func NewScheduler(db *gorm.DB, sweep *services.SweepService, recipients []string) *Scheduler {
	return &Scheduler{
		cron:               cron.New(),
		db:                 db,
		sweep:              sweep,
		SweepEvery:         15 * time.Minute,
		Recipients:         recipients,
		DedupRetention:     90 * 24 * time.Hour,
		DismissedRetention: 30 * 24 * time.Hour,
		JobTimeout:         5 * time.Minute,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() {
	// Inventory sweep on a fixed tick.
	s.cron.AddFunc(fmt.Sprintf("@every %s", s.SweepEvery), s.runSweep)

	// Dedup ledger retention nightly at 3:14 AM.
	s.cron.AddFunc("14 3 * * *", s.pruneDedupLedger)

	// Dismissed notification retention nightly at 3:30 AM.
	s.cron.AddFunc("30 3 * * *", s.pruneDismissed)

	s.cron.Start()
	log.Info().
		Dur("sweep_every", s.SweepEvery).
		Int("recipients", len(s.Recipients)).
		Msg("job scheduler started")
}

// Stop stops the scheduler. Running jobs finish on their own timeouts.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info().Msg("job scheduler stopped")
}

// runSweep executes one guarded inventory sweep.
func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.JobTimeout)
	defer cancel()

	res, err := s.sweep.Run(ctx, s.Recipients)
	if err != nil {
		log.Error().Err(err).Msg("inventory sweep failed")
		return
	}
	if !res.Ran {
		return
	}
	log.Info().
		Int("low_stock", res.LowStock).
		Int("expiring", res.Expiring).
		Int("created", res.Created).
		Int("deduplicated", res.Deduplicated).
		Msg("inventory sweep completed")
}

// pruneDedupLedger removes ledger rows past the retention window. Expired
// rows no longer gate anything; deleting them keeps the table small.
func (s *Scheduler) pruneDedupLedger() {
	ctx, cancel := context.WithTimeout(context.Background(), s.JobTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.DedupRetention)
	n, err := repo.PurgeDedupBefore(ctx, s.db, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune dedup ledger")
		return
	}
	if n > 0 {
		log.Info().Int64("rows", n).Msg("pruned dedup ledger")
	}
}

// pruneDismissed hard-deletes notifications dismissed before the retention
// window.
func (s *Scheduler) pruneDismissed() {
	ctx, cancel := context.WithTimeout(context.Background(), s.JobTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.DismissedRetention)
	n, err := repo.PurgeDismissedBefore(ctx, s.db, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune dismissed notifications")
		return
	}
	if n > 0 {
		log.Info().Int64("rows", n).Msg("pruned dismissed notifications")
	}
}
