package domain

import "time"

// HealthCheckRun tracks the last execution of a periodic inventory check.
// One row per check type; the unique index lets concurrent schedulers race
// on a single row so only one of them claims the slot.
type HealthCheckRun struct {
	ID                   string     `gorm:"type:TEXT NOT NULL;primaryKey"`
	CheckType            string     `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_health_check_type"`
	LastRunAt            time.Time  `gorm:"type:DATETIME NOT NULL"`
	CompletedAt          *time.Time `gorm:"type:DATETIME"`
	NotificationsCreated int        `gorm:"type:INTEGER NOT NULL;default:0"`
	ErrorMessage         string     `gorm:"type:TEXT NOT NULL;default:''"`
	CreatedAt            time.Time  `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"type:DATETIME NOT NULL;autoUpdateTime"`
}

// TableName implements the GORM tabler interface.
func (HealthCheckRun) TableName() string { return "health_check_runs" }
