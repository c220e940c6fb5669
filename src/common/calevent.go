package common

import (
	"context"
	"sync"
	"timetokens/src/lib"
	"timetokens/src/models"
	"timetokens/src/types"
)

// BuildCalendarEvent flattens a booking row into the payload handed to
// the EventManager and the mailer. Attendee locales are translated
// concurrently and recombined in their original order.
func BuildCalendarEvent(ctx context.Context, booking *models.Booking) (*types.CalendarEvent, error) {
	user := booking.User
	t, err := lib.GetTranslation(ctx, user.Locale)
	if err != nil {
		return nil, err
	}

	attendees := make([]types.Person, len(booking.Attendees))
	var wg sync.WaitGroup
	for i, a := range booking.Attendees {
		wg.Add(1)
		go func(i int, a models.Attendee) {
			defer wg.Done()
			lang, _ := lib.GetTranslation(ctx, a.Locale)
			attendees[i] = types.Person{
				Name:     a.Name,
				Email:    a.Email,
				TimeZone: a.TimeZone,
				Locale:   a.Locale,
				Language: lang,
			}
		}(i, a)
	}
	wg.Wait()

	description := ""
	if booking.Description != nil {
		description = *booking.Description
	}
	evt := &types.CalendarEvent{
		Type:        booking.Title,
		Title:       booking.Title,
		Description: description,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Location:    booking.Location,
		UID:         booking.UID,
		Responses:   booking.Responses,
		Organizer: types.Person{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			TimeZone: user.TimeZone,
			Locale:   user.Locale,
			Language: t,
		},
		Attendees: attendees,
	}
	if booking.DestinationCalendarID != nil {
		evt.DestinationCalendarID = booking.DestinationCalendarID
	} else if user.DestinationCalendarID != nil {
		evt.DestinationCalendarID = user.DestinationCalendarID
	}
	if booking.EventType != nil && booking.EventType.RecurringEvent != nil {
		evt.RecurringEvent = *booking.EventType.RecurringEvent
	}
	return evt, nil
}
