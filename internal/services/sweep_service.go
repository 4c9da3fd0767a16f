// Package services – SweepService
//
// This file implements SweepService, the periodic inventory health check.
// A sweep scans products for low-stock and near-expiry conditions and raises
// notifications for the configured recipients through NotificationService,
// which applies per-item cooldowns so repeated sweeps do not re-alert.
//
// Sweeps are guarded by a claim on the health_check_runs slot, taken BEFORE
// any inventory work, so overlapping schedulers (several processes, cron
// plus a manual trigger) collapse to a single run per interval. The outcome
// of a claimed run is written back to the same slot for inspection.

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rxhub/pharmacy-alerts/internal/domain"
	"github.com/rxhub/pharmacy-alerts/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// sweepCheckType is the health_check_runs slot shared by all sweep callers.
const sweepCheckType = "all"

// SweepResult summarizes one sweep attempt. Ran is false when another
// scheduler already holds the interval.
type SweepResult struct {
	Ran          bool `json:"ran"`
	LowStock     int  `json:"low_stock"`
	Expiring     int  `json:"expiring"`
	Created      int  `json:"created"`
	Deduplicated int  `json:"deduplicated"`
}

// SweepService scans the inventory and fans findings out as notifications.
type SweepService struct {
	// DB is the GORM handle used for the run claim and product scans.
	DB *gorm.DB
	// Notifications receives the findings as a single batch.
	Notifications *NotificationService

	// Interval is the minimum gap between sweeps.
	Interval time.Duration
	// ExpiryWindow is how far ahead expiry alerts look.
	ExpiryWindow time.Duration
	// EscalationWindow bumps an expiry alert to high priority when the
	// expiry date is this close.
	EscalationWindow time.Duration
}

// NewSweepService constructs a SweepService with the default cadence and
// look-ahead windows.
func NewSweepService(db *gorm.DB, ns *NotificationService) *SweepService {
	return &SweepService{
		DB:               db,
		Notifications:    ns,
		Interval:         time.Hour,
		ExpiryWindow:     30 * 24 * time.Hour,
		EscalationWindow: 7 * 24 * time.Hour,
	}
}

// Run executes one guarded sweep for the given recipients. When the interval
// is already claimed it returns a zero result with Ran=false and no error.
// When the claim slot itself is unavailable the sweep proceeds unguarded
// rather than letting inventory checks stop.
func (s *SweepService) Run(ctx context.Context, userIDs []string) (SweepResult, error) {
	tr := otel.Tracer("services/SweepService")
	ctx, span := tr.Start(ctx, "Run",
		trace.WithAttributes(attribute.Int("recipients", len(userIDs))),
	)
	defer span.End()

	var res SweepResult
	if len(userIDs) == 0 {
		return res, nil
	}
	now := time.Now().UTC()

	gated := true
	claimed, err := repo.ClaimHealthCheckRun(ctx, s.DB, sweepCheckType, s.Interval, now)
	switch {
	case errors.Is(err, repo.ErrAdmissionUnsupported):
		log.Warn().Msg("health check slot unavailable; sweep proceeds unguarded")
		gated = false
	case err != nil:
		return res, err
	case !claimed:
		return res, nil
	}

	lowStock, err := repo.ListLowStockProducts(ctx, s.DB)
	if err != nil {
		s.record(ctx, gated, 0, err)
		return res, err
	}
	expiring, err := repo.ListExpiringProducts(ctx, s.DB, s.ExpiryWindow, now)
	if err != nil {
		s.record(ctx, gated, 0, err)
		return res, err
	}
	res.LowStock = len(lowStock)
	res.Expiring = len(expiring)

	inputs := s.buildInputs(userIDs, lowStock, expiring, now)
	created, err := s.Notifications.CreateBatch(ctx, inputs)
	if err != nil {
		s.record(ctx, gated, 0, err)
		return res, err
	}
	res.Ran = true
	res.Created = len(created)
	res.Deduplicated = len(inputs) - len(created)

	s.record(ctx, gated, len(created), nil)
	return res, nil
}

// LastRun returns the bookkeeping row of the most recent sweep, or
// repo.ErrNotFound when no sweep has ever claimed the slot.
func (s *SweepService) LastRun(ctx context.Context) (*domain.HealthCheckRun, error) {
	return repo.GetHealthCheckRun(ctx, s.DB, sweepCheckType)
}

// record writes the run outcome back to the claim slot. Unguarded runs have
// no slot to update.
func (s *SweepService) record(ctx context.Context, gated bool, created int, runErr error) {
	if !gated {
		return
	}
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	if err := repo.RecordHealthCheckRun(ctx, s.DB, sweepCheckType, created, msg, time.Now().UTC()); err != nil {
		log.Warn().Err(err).Msg("failed to record sweep outcome")
	}
}

// buildInputs expands the findings into one notification input per
// (recipient, product) pair. Product ids ride along in metadata so the
// dedup key stays stable across sweeps.
func (s *SweepService) buildInputs(userIDs []string, lowStock, expiring []domain.Product, now time.Time) []CreateInput {
	inputs := make([]CreateInput, 0, len(userIDs)*(len(lowStock)+len(expiring)))
	for _, uid := range userIDs {
		for i := range lowStock {
			inputs = append(inputs, lowStockInput(uid, &lowStock[i]))
		}
		for i := range expiring {
			inputs = append(inputs, s.expiryInput(uid, &expiring[i], now))
		}
	}
	return inputs
}

func lowStockInput(userID string, p *domain.Product) CreateInput {
	msg := fmt.Sprintf("%s (SKU %s) is down to %d units; reorder level is %d.",
		p.Name, p.SKU, p.StockQuantity, p.ReorderLevel)
	return CreateInput{
		UserID:   userID,
		Title:    fmt.Sprintf("Low stock: %s", p.Name),
		Message:  msg,
		Category: domain.CategoryLowStock,
		Priority: domain.PriorityHigh,
		Metadata: map[string]any{
			"product_id":     p.ID,
			"stock_quantity": p.StockQuantity,
			"reorder_level":  p.ReorderLevel,
		},
	}
}

func (s *SweepService) expiryInput(userID string, p *domain.Product, now time.Time) CreateInput {
	until := p.ExpiryDate.Sub(now)
	daysLeft := int(until.Hours() / 24)
	prio := domain.PriorityMedium
	if until <= s.EscalationWindow {
		prio = domain.PriorityHigh
	}
	msg := fmt.Sprintf("%s (SKU %s) expires on %s (%d days left).",
		p.Name, p.SKU, p.ExpiryDate.Format("2006-01-02"), daysLeft)
	return CreateInput{
		UserID:   userID,
		Title:    fmt.Sprintf("Expiring soon: %s", p.Name),
		Message:  msg,
		Category: domain.CategoryExpiry,
		Priority: prio,
		Metadata: map[string]any{
			"product_id":  p.ID,
			"expiry_date": p.ExpiryDate.Format(time.RFC3339),
			"days_left":   daysLeft,
		},
	}
}
