package models

import "timetokens/src/types"

type User struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	Name          string  `json:"name,omitempty"`
	Username      string  `json:"username,omitempty"`
	Email         string  `gorm:"uniqueIndex" json:"email,omitempty"`
	TimeZone      string  `gorm:"default:'Europe/London'" json:"time_zone,omitempty"`
	Locale        string  `gorm:"default:'en'" json:"locale,omitempty"`
	Avatar        *string `json:"avatar,omitempty"`
	Role          string  `json:"role,omitempty"`
	Tokens        int     `gorm:"default:0" json:"tokens"`
	Level         uint    `gorm:"default:0" json:"level"`
	Price         int     `gorm:"default:0" json:"price,omitempty"`
	EmailVerified bool    `json:"email_verified,omitempty"`

	// Calendar/video credentials used by the EventManager when creating
	// external resources on the user's behalf.
	DestinationCalendarID *string      `json:"destination_calendar_id,omitempty"`
	Credentials           *types.JSONB `gorm:"type:jsonb" json:"-"`

	Bookings []Booking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
