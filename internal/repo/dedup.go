// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the deduplication ledger and its atomic
// admission check, the primitive that guarantees at-most-one notification per
// (user, key) inside a cooldown window.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rxhub/pharmacy-alerts/internal/domain"
)

// ErrAdmissionUnsupported indicates that the dedup ledger table does not
// exist (schema migration not applied). Callers should degrade to sending
// without deduplication rather than fail.
var ErrAdmissionUnsupported = errors.New("dedup ledger unavailable")

// admitSQL performs the whole admission decision in one statement so that
// concurrent senders racing on the same (user_id, notification_key) cannot
// both win. The insert handles first-ever sends; the conflict branch re-admits
// only when the previous send is at or beyond the cooldown cutoff. Timestamps
// are compared as text, which is sound because every value in both columns was
// formatted by the same driver and is always UTC.
const admitSQL = `
INSERT INTO notification_dedup
    (id, user_id, notification_key, last_sent_at, cooldown_hours, notification_count, metadata, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)
ON CONFLICT(user_id, notification_key) DO UPDATE SET
    last_sent_at       = excluded.last_sent_at,
    cooldown_hours     = excluded.cooldown_hours,
    notification_count = notification_dedup.notification_count + 1,
    metadata           = excluded.metadata,
    updated_at         = excluded.updated_at
WHERE notification_dedup.last_sent_at <= ?`

// ShouldSendNotification reports whether a notification identified by key may
// be sent to userID now, recording the send in the same atomic step when it
// may. Exactly one of N concurrent callers observes true.
//
// Outcomes:
//   - (true, nil): admitted; the ledger row was inserted or its window advanced.
//   - (false, nil): suppressed; either the cooldown has not elapsed or another
//     writer held the row lock (contention counts as a denial, never a retry).
//   - (false, ErrAdmissionUnsupported): the ledger table is missing.
//   - (false, err): any other store failure; callers decide the policy.
func ShouldSendNotification(ctx context.Context, db *gorm.DB, userID, key string, cooldownHours int, meta datatypes.JSONMap, now time.Time) (bool, error) {
	now = now.UTC()
	cutoff := now.Add(-time.Duration(cooldownHours) * time.Hour)

	raw := []byte("{}")
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return false, err
		}
		raw = b
	}

	res := db.WithContext(ctx).Exec(admitSQL,
		uuid.NewString(), userID, key, now, cooldownHours, string(raw), now, now,
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

// GetDedupEntry returns the ledger row for (userID, key) or ErrNotFound.
func GetDedupEntry(ctx context.Context, db *gorm.DB, userID, key string) (*domain.DedupEntry, error) {
	var rec domain.DedupEntry
	err := db.WithContext(ctx).
		Where("user_id = ? AND notification_key = ?", userID, key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PurgeDedupBefore deletes ledger rows whose last send predates cutoff and
// returns how many were removed. Old rows only cost space; removing them
// never re-opens a window that matters, since anything older than cutoff is
// past every configured cooldown anyway.
func PurgeDedupBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("last_sent_at < ?", cutoff.UTC()).
		Delete(&domain.DedupEntry{})
	return res.RowsAffected, res.Error
}

// isMissingTable matches the driver's "no such table" errors.
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such table")
}

// isLockContention matches the busy/locked errors SQLite raises when another
// writer holds the database or a shared-cache table lock.
func isLockContention(err error) bool {
	if err == nil {
		return false
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "database is locked") ||
		strings.Contains(low, "table is locked") ||
		strings.Contains(low, "sqlite_busy") ||
		strings.Contains(low, "sqlite_locked")
}
