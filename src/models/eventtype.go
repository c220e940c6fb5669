package models

import "timetokens/src/types"

type EventType struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Title       string  `json:"title,omitempty"`
	Slug        string  `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Length      int     `json:"length,omitempty"`
	UserID      uint    `json:"user_id,omitempty"`
	// Payment never bypasses a manual confirmation requirement.
	RequiresConfirmation bool         `gorm:"default:false" json:"requires_confirmation"`
	RecurringEvent       *types.JSONB `gorm:"type:jsonb" json:"recurring_event,omitempty"`
	Metadata             *types.JSONB `gorm:"type:jsonb" json:"metadata,omitempty"`

	types.Timestamps
}
