// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Notification model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Dedup admission decisions live in
// dedup.go; callers are expected to pass only already-admitted rows here.
//
// Error semantics:
//   - When a notification is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated. Nothing in this file swallows a store
//     failure: the service layer relies on seeing them to fail closed.
//
// Functions:
//
//   - CreateNotification(ctx, db, userID, title, message, category, priority, metadata)
//     Inserts a single Notification row with UUID primary key and UTC timestamps.
//
//   - CreateNotificationsBatch(ctx, db, ns) -> (int64, error)
//     Bulk-inserts pre-built rows in one statement; returns rows written.
//
//   - GetNotification(ctx, db, id, userID) -> *domain.Notification, error
//     Fetches one non-dismissed notification scoped to its owner.
//
//   - ListNotificationsPage(ctx, db, userID, unreadOnly, offset, limit)
//     Returns a page of notifications, newest first.
//
//   - CountNotifications / CountUnread
//     Totals for pagination metadata and the badge counter.
//
//   - MarkNotificationRead / MarkAllNotificationsRead
//     Idempotent read-state transitions; ReadAt is set on the first call only.
//
//   - DismissNotification / DismissAllNotifications
//     Soft-deletes; dismissed rows leave every default-scoped query.
//
//   - MarkEmailSent(ctx, db, id)
//     Flips the email_sent flag after a successful delivery.
//
//   - PurgeDismissedBefore(ctx, db, cutoff)
//     Hard-deletes rows dismissed before cutoff (retention job).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rxhub/pharmacy-alerts/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateNotification inserts a new Notification row for userID. The ID is a
// randomly generated UUID and CreatedAt is set to UTC. The caller is expected
// to have validated and sanitized every field.
func CreateNotification(ctx context.Context, db *gorm.DB, userID, title, message, category string, priority domain.Priority, metadata datatypes.JSONMap) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Category:  category,
		Priority:  priority,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// CreateNotificationsBatch bulk-inserts pre-built notification rows in a
// single statement. Rows missing an ID or CreatedAt get them assigned here.
// It returns the number of rows written. An empty slice is a no-op.
func CreateNotificationsBatch(ctx context.Context, db *gorm.DB, ns []domain.Notification) (int64, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range ns {
		if ns[i].ID == "" {
			ns[i].ID = uuid.NewString()
		}
		if ns[i].CreatedAt.IsZero() {
			ns[i].CreatedAt = now
		}
	}
	res := db.WithContext(ctx).Create(&ns)
	return res.RowsAffected, res.Error
}

// GetNotification fetches a single non-dismissed notification by ID and owner.
// If the record does not exist, it returns ErrNotFound.
func GetNotification(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Notification, error) {
	var n domain.Notification
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotificationsPage returns a paginated slice of notifications for
// userID, newest first with ID as tiebreaker. Set unreadOnly to restrict the
// page to unread rows. Dismissed rows are excluded by the soft-delete scope.
func ListNotificationsPage(ctx context.Context, db *gorm.DB, userID string, unreadOnly bool, offset, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountNotifications returns the total number of non-dismissed notifications
// for userID, optionally restricted to unread rows.
func CountNotifications(ctx context.Context, db *gorm.DB, userID string, unreadOnly bool) (int64, error) {
	var total int64
	q := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Count(&total).Error
	return total, err
}

// CountUnread uses a raw COUNT so a missing table surfaces as an error
// instead of a silent zero; the badge counter is the first query most
// deployments run after a migration.
func CountUnread(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0 AND dismissed_at IS NULL", userID).
		Scan(&total).Error
	return total, err
}

// MarkNotificationRead transitions a notification to read, setting ReadAt on
// the first transition only. It returns (true, nil) when this call changed
// the row, (false, nil) when the row was already read, and ErrNotFound when
// no such notification exists for userID.
func MarkNotificationRead(ctx context.Context, db *gorm.DB, id, userID string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now.UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	// Nothing changed: either already read (fine) or missing (not found).
	var cnt int64
	if err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	if cnt == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// MarkAllNotificationsRead marks every unread notification of userID as read
// and returns how many rows changed. Calling it with nothing unread is a
// successful no-op.
func MarkAllNotificationsRead(ctx context.Context, db *gorm.DB, userID string, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now.UTC()})
	return res.RowsAffected, res.Error
}

// DismissNotification soft-deletes a notification. It returns (true, nil)
// when this call dismissed the row, (false, nil) when the row was already
// dismissed, and ErrNotFound when it never existed for userID.
func DismissNotification(ctx context.Context, db *gorm.DB, id, userID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Notification{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var cnt int64
	if err := db.WithContext(ctx).
		Unscoped().
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	if cnt == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// DismissAllNotifications soft-deletes every visible notification of userID
// and returns how many rows were dismissed.
func DismissAllNotifications(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}

// MarkEmailSent records a successful email delivery for the notification.
// Dismissed rows still accept the flag; delivery may race a dismissal.
func MarkEmailSent(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Unscoped().
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("email_sent", true).Error
}

// PurgeDismissedBefore hard-deletes notifications dismissed before cutoff and
// returns how many were removed.
func PurgeDismissedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Unscoped().
		Where("dismissed_at IS NOT NULL AND dismissed_at < ?", cutoff.UTC()).
		Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}
