package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_ACCEPTED  BookingStatus = "accepted"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_REJECTED  BookingStatus = "rejected"
)

// Person is one participant of a calendar event, organizer or attendee.
type Person struct {
	ID       uint   `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"time_zone,omitempty"`
	Locale   string `json:"locale,omitempty"`
	// Language holds the translated strings for the person's locale,
	// resolved before the payload is handed to collaborators.
	Language map[string]string `json:"-"`
}

// CalendarEvent is the payload handed to the EventManager and the mailer.
type CalendarEvent struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location,omitempty"`
	UID         string    `json:"uid"`
	Organizer   Person    `json:"organizer"`
	Attendees   []Person  `json:"attendees"`
	Responses   JSONB     `json:"responses,omitempty"`

	DestinationCalendarID *string `json:"destination_calendar_id,omitempty"`
	RecurringEvent        JSONB   `json:"recurring_event,omitempty"`
}

// EventReference is one external resource created for a booking
// (calendar entry, meeting link).
type EventReference struct {
	Type            string `json:"type"`
	UID             string `json:"uid"`
	MeetingID       string `json:"meeting_id,omitempty"`
	MeetingURL      string `json:"meeting_url,omitempty"`
	MeetingPassword string `json:"meeting_password,omitempty"`
}

// ScheduleResult is what the EventManager returns after creating
// external resources for a CalendarEvent.
type ScheduleResult struct {
	ReferencesToCreate []EventReference `json:"references_to_create"`
}

type BuyTokensRequestBody struct {
	EmitterID uint `json:"emitter" binding:"required"`
	Amount    int  `json:"amount" binding:"required,gt=0"`
}

type UpgradeSubscriptionRequestBody struct {
	Level uint `json:"level" binding:"required,lte=3"`
}

type BookingURIParams struct {
	UID string `uri:"uid" binding:"required"`
}

type WalletURIParams struct {
	EmitterID uint `uri:"emitterId" binding:"required"`
}

type BookingsQueryFilters struct {
	Status string `form:"status" binding:"omitempty,bookingstatus"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
