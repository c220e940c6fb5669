package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"time"
	"timetokens/src/models"
	"timetokens/src/types"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventManager creates the external calendar/video resources backing a
// confirmed booking.
type EventManager interface {
	Create(ctx context.Context, evt *types.CalendarEvent) (*types.ScheduleResult, error)
}

// GoogleCalendarEventManager writes events into the organizer's Google
// Calendar using the credentials stored on the user row.
type GoogleCalendarEventManager struct {
	user *models.User
}

func NewGoogleCalendarEventManager(user *models.User) *GoogleCalendarEventManager {
	return &GoogleCalendarEventManager{user: user}
}

func (m *GoogleCalendarEventManager) service(ctx context.Context) (*calendar.Service, error) {
	if m.user.Credentials == nil {
		return nil, fmt.Errorf("user [%d] has no calendar credentials", m.user.ID)
	}
	raw, err := json.Marshal(m.user.Credentials)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(raw, tok); err != nil {
		return nil, err
	}
	secretsPath := os.Getenv("SECRETS_DIR")
	b, err := os.ReadFile(path.Join(secretsPath, "client_secret.json"))
	if err != nil {
		return nil, err
	}
	conf, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, err
	}
	return calendar.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, tok)))
}

func (m *GoogleCalendarEventManager) Create(ctx context.Context, evt *types.CalendarEvent) (*types.ScheduleResult, error) {
	svc, err := m.service(ctx)
	if err != nil {
		return nil, err
	}
	calId := "primary"
	if evt.DestinationCalendarID != nil {
		calId = *evt.DestinationCalendarID
	}
	attendees := make([]*calendar.EventAttendee, 0, len(evt.Attendees)+1)
	attendees = append(attendees, &calendar.EventAttendee{
		Email:       evt.Organizer.Email,
		DisplayName: evt.Organizer.Name,
		Organizer:   true,
	})
	for _, a := range evt.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{
			Email:       a.Email,
			DisplayName: a.Name,
		})
	}
	evtId := uuid.NewString()
	inserted, err := svc.Events.
		Insert(calId, &calendar.Event{
			Summary:     evt.Title,
			Description: evt.Description,
			Location:    evt.Location,
			Start: &calendar.EventDateTime{
				DateTime: evt.StartTime.Format(time.RFC3339),
				TimeZone: evt.Organizer.TimeZone,
			},
			End: &calendar.EventDateTime{
				DateTime: evt.EndTime.Format(time.RFC3339),
				TimeZone: evt.Organizer.TimeZone,
			},
			Attendees: attendees,
		}).
		ConferenceDataVersion(1).
		Do()
	if err != nil {
		log.Printf("Failed to add Event to Calendar: %s\n", err.Error())
		return nil, err
	}
	ref := types.EventReference{
		Type:       "google_calendar",
		UID:        evtId,
		MeetingID:  inserted.Id,
		MeetingURL: inserted.HangoutLink,
	}
	return &types.ScheduleResult{
		ReferencesToCreate: []types.EventReference{ref},
	}, nil
}
