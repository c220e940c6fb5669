package mailer

import (
	"fmt"
	"log"
	"os"
	"time"
	"timetokens/src/lib"
	"timetokens/src/types"
)

func from() (string, string) {
	return os.Getenv("SMTP_FROM"), "noreply"
}

func formatStart(evt *types.CalendarEvent, tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return evt.StartTime.In(loc).Format("Monday, 2 January 2006 15:04 MST")
}

func send(evt *types.CalendarEvent, p types.Person, subjectKey, bodyKey string) error {
	t := p.Language
	if t == nil {
		t = map[string]string{}
	}
	subject, ok := t[subjectKey]
	if !ok {
		subject = "Your meeting has been scheduled"
	}
	bodyTpl, ok := t[bodyKey]
	if !ok {
		bodyTpl = "Your meeting \"%s\" is scheduled for %s."
	}
	addr, name := from()
	return lib.SendMail(&lib.SendMailInput{
		From:     addr,
		FromName: name,
		To:       []string{p.Email},
		ReplyTo:  evt.Organizer.Email,
		Subject:  subject,
		Body:     fmt.Sprintf(bodyTpl, evt.Title, formatStart(evt, p.TimeZone)),
	})
}

// SendScheduledEmails notifies the organizer and every attendee that the
// booking has been scheduled. Dispatch failures are logged, not returned:
// the payment has already been applied by the time these go out.
func SendScheduledEmails(evt *types.CalendarEvent) {
	recipients := append([]types.Person{evt.Organizer}, evt.Attendees...)
	for _, p := range recipients {
		if err := send(evt, p, "booking_scheduled_subject", "booking_scheduled_body"); err != nil {
			log.Printf("Could not send scheduled email to [%s]: %s\n", p.Email, err.Error())
		}
	}
}

// SendConfirmedEmails notifies participants after a pending booking has
// been accepted.
func SendConfirmedEmails(evt *types.CalendarEvent) {
	recipients := append([]types.Person{evt.Organizer}, evt.Attendees...)
	for _, p := range recipients {
		if err := send(evt, p, "booking_confirmed_subject", "booking_confirmed_body"); err != nil {
			log.Printf("Could not send confirmed email to [%s]: %s\n", p.Email, err.Error())
		}
	}
}
