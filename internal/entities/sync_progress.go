package entities

import (
	"time"
)

// SyncType names a content family that is refreshed as a unit.
type SyncType string

const (
	SyncTypeLullabies SyncType = "lullabies"
	SyncTypeStories   SyncType = "stories"
)

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

type SyncProgress struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SyncType        SyncType   `gorm:"size:50;uniqueIndex" json:"sync_type"`
	Status          SyncStatus `gorm:"size:20" json:"status"`
	TotalItems      int        `json:"total_items"`
	Succeeded       int        `json:"succeeded"`
	Skipped         int        `json:"skipped"`
	Error           string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	LastSucceededAt *time.Time `json:"last_succeeded_at,omitempty"`
}

func (SyncProgress) TableName() string {
	return "sync_progress"
}
