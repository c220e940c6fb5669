package models

import (
	"time"
	"timetokens/src/types"
)

// WebhookEvent records every provider event id we have applied so a
// redelivered event is recognized and skipped instead of re-processed.
type WebhookEvent struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	EventID     string     `gorm:"uniqueIndex" json:"event_id"`
	EventType   string     `json:"event_type"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	types.Timestamps
}
