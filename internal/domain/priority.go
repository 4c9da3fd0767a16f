package domain

import (
	"fmt"
	"time"
)

// Priority is the urgency level of a notification. Lower values are more
// urgent; the level drives both the dedup cooldown window and whether the
// alert is also delivered by email.
type Priority int

// Priority levels, most urgent first.
const (
	PriorityCritical Priority = iota + 1
	PriorityHigh
	PriorityMedium
	PriorityLow
	PriorityInfo
)

// Valid reports whether p is one of the defined levels.
func (p Priority) Valid() bool {
	return p >= PriorityCritical && p <= PriorityInfo
}

// String returns the lowercase label used in logs and API payloads.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PriorityInfo:
		return "info"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// cooldowns maps each level to how long repeat alerts with the same
// notification key stay suppressed after an admission.
var cooldowns = map[Priority]time.Duration{
	PriorityCritical: 1 * time.Hour,
	PriorityHigh:     6 * time.Hour,
	PriorityMedium:   24 * time.Hour,
	PriorityLow:      24 * time.Hour,
	PriorityInfo:     24 * time.Hour,
}

// Cooldown returns the dedup suppression window for the level. Unknown
// levels fall back to the most conservative window.
func (p Priority) Cooldown() time.Duration {
	if d, ok := cooldowns[p]; ok {
		return d
	}
	return 24 * time.Hour
}

// CooldownHours returns the window as whole hours, the unit the dedup
// ledger stores.
func (p Priority) CooldownHours() int {
	return int(p.Cooldown() / time.Hour)
}
