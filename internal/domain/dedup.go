// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DedupEntry records the last admitted send of a notification key to a user.
// The composite unique index on (user_id, notification_key) is what makes the
// admission upsert atomic: concurrent senders race on one row, and the store
// decides the winner.
type DedupEntry struct {
	ID                string         `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID            string         `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_dedup_user_key,priority:1"`
	NotificationKey   string         `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_dedup_user_key,priority:2"`
	LastSentAt        time.Time      `gorm:"type:DATETIME NOT NULL;index"`
	CooldownHours     int            `gorm:"type:INTEGER NOT NULL"`
	NotificationCount int            `gorm:"type:INTEGER NOT NULL;default:1"`
	Metadata          datatypes.JSON `gorm:"type:TEXT"`
	CreatedAt         time.Time      `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"type:DATETIME NOT NULL;autoUpdateTime"`
}

// TableName implements the GORM tabler interface.
func (DedupEntry) TableName() string { return "notification_dedup" }
