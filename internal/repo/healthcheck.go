// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the scheduler gate that keeps periodic
// inventory checks from running more often than their configured interval,
// even with several process instances sharing the database.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxhub/pharmacy-alerts/internal/domain"
)

// claimSQL advances last_run_at only when the previous run is at or past the
// interval cutoff. Claiming and checking are one statement, so of N concurrent
// schedulers exactly one sees an affected row.
const claimSQL = `
INSERT INTO health_check_runs
    (id, check_type, last_run_at, completed_at, notifications_created, error_message, created_at, updated_at)
VALUES (?, ?, ?, NULL, 0, '', ?, ?)
ON CONFLICT(check_type) DO UPDATE SET
    last_run_at  = excluded.last_run_at,
    completed_at = NULL,
    updated_at   = excluded.updated_at
WHERE health_check_runs.last_run_at <= ?`

// ClaimHealthCheckRun atomically claims the next execution slot for checkType.
// It returns true when the caller won the slot (first run ever, or the
// interval since the previous run has fully elapsed) and false otherwise.
// The claim happens before any scanning work, so losers skip the expensive
// part entirely. A missing table surfaces as ErrAdmissionUnsupported so the
// caller can choose to run ungated.
func ClaimHealthCheckRun(ctx context.Context, db *gorm.DB, checkType string, interval time.Duration, now time.Time) (bool, error) {
	now = now.UTC()
	cutoff := now.Add(-interval)

	res := db.WithContext(ctx).Exec(claimSQL,
		uuid.NewString(), checkType, now, now, now,
		cutoff,
	)
	if res.Error != nil {
		if isMissingTable(res.Error) {
			return false, ErrAdmissionUnsupported
		}
		if isLockContention(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RecordHealthCheckRun stores the outcome of the sweep that claimed the
// current slot: how many notifications it created, or the error that stopped
// it. Returns ErrNotFound when no slot row exists for checkType.
func RecordHealthCheckRun(ctx context.Context, db *gorm.DB, checkType string, created int, errMsg string, now time.Time) error {
	now = now.UTC()
	res := db.WithContext(ctx).
		Model(&domain.HealthCheckRun{}).
		Where("check_type = ?", checkType).
		Updates(map[string]any{
			"completed_at":          now,
			"notifications_created": created,
			"error_message":         errMsg,
			"updated_at":            now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetHealthCheckRun returns the bookkeeping row for checkType or ErrNotFound.
func GetHealthCheckRun(ctx context.Context, db *gorm.DB, checkType string) (*domain.HealthCheckRun, error) {
	var rec domain.HealthCheckRun
	err := db.WithContext(ctx).
		Where("check_type = ?", checkType).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
