package models

import (
	"time"
	"timetokens/src/types"
)

type Booking struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	UID         string              `gorm:"uniqueIndex" json:"uid,omitempty"`
	Title       string              `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	StartTime   time.Time           `json:"start_time,omitempty"`
	EndTime     time.Time           `json:"end_time,omitempty"`
	Status      types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Paid        bool                `gorm:"default:false" json:"paid"`
	Location    string              `json:"location,omitempty"`
	// Responses holds the free-form answers the booker supplied on the
	// booking form, including the email the wallet charge is keyed on.
	Responses types.JSONB `gorm:"type:jsonb" json:"responses,omitempty"`

	EventTypeID *uint `json:"event_type_id,omitempty"`
	UserID      uint  `json:"user_id,omitempty"`

	DestinationCalendarID *string `json:"destination_calendar_id,omitempty"`

	EventType  *EventType         `gorm:"foreignKey:event_type_id" json:"event_type,omitempty"`
	User       *User              `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Attendees  []Attendee         `gorm:"foreignKey:booking_id" json:"attendees,omitempty"`
	References []BookingReference `gorm:"foreignKey:booking_id" json:"references,omitempty"`

	types.Timestamps
}

// Duration of the meeting in whole minutes.
func (b *Booking) Duration() int {
	return int(b.EndTime.Sub(b.StartTime) / time.Minute)
}

type Attendee struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	BookingID uint   `json:"booking_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	TimeZone  string `gorm:"default:'Europe/London'" json:"time_zone,omitempty"`
	Locale    string `gorm:"default:'en'" json:"locale,omitempty"`

	types.Timestamps
}

type BookingReference struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	BookingID       uint   `json:"booking_id,omitempty"`
	Type            string `json:"type,omitempty"`
	UID             string `json:"uid,omitempty"`
	MeetingID       string `json:"meeting_id,omitempty"`
	MeetingURL      string `json:"meeting_url,omitempty"`
	MeetingPassword string `json:"-"`

	types.Timestamps
}
