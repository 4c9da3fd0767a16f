// Package domain defines the persistence models for notifications, the
// deduplication ledger, health-check bookkeeping, and the product inventory
// rows the health sweep scans. These types are mapped with GORM and form the
// core data layer of the alerting service.
package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification categories. Every notification belongs to exactly one.
const (
	CategoryLowStock = "low_stock"
	CategoryExpiry   = "expiry"
	CategorySystem   = "system"
	CategorySales    = "sales"
)

// ValidCategory reports whether c is one of the known notification categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryLowStock, CategoryExpiry, CategorySystem, CategorySales:
		return true
	}
	return false
}

// Notification represents a single alert delivered to a pharmacy user. Rows
// are created only after the deduplication check admits the alert, so every
// persisted notification was actually shown (and possibly emailed).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the recipient; indexed for per-user retrieval.
//   - Title: short human-readable headline (max 200 runes, enforced upstream).
//   - Message: full alert body (max 1000 runes, enforced upstream).
//   - Category: one of the Category* constants (enforced by DB constraint).
//   - Priority: urgency level 1-5, lower is more urgent.
//   - Metadata: free-form JSON payload (product id, counts, thresholds).
//   - IsRead / ReadAt: read-state tracking; ReadAt is set on first read only.
//   - EmailSent: flipped by the mailer after a successful delivery.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DismissedAt: soft-deletion marker; dismissed rows stay queryable for
//     retention purposes until the cleanup job purges them.
type Notification struct {
	ID          string            `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string            `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_notifications,priority:1"`
	Title       string            `json:"title"       gorm:"type:varchar(200);not null"`
	Message     string            `json:"message"     gorm:"type:text;not null"`
	Category    string            `json:"category"    gorm:"type:varchar(32);not null;check:category IN ('low_stock','expiry','system','sales')"`
	Priority    Priority          `json:"priority"    gorm:"not null;default:3;check:priority BETWEEN 1 AND 5"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	IsRead      bool              `json:"is_read"     gorm:"not null;default:false;index:idx_user_notifications,priority:2"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	EmailSent   bool              `json:"email_sent"  gorm:"not null;default:false"`
	CreatedAt   time.Time         `json:"created_at"  gorm:"index:idx_user_notifications,priority:3"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DismissedAt gorm.DeletedAt    `json:"-"           gorm:"column:dismissed_at;index"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }
