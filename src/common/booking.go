package common

import (
	"context"
	"errors"
	"math"
	"timetokens/src/config"
	"timetokens/src/db"
	"timetokens/src/lib"
	"timetokens/src/lib/mailer"
	"timetokens/src/models"
	"timetokens/src/types"

	"gorm.io/gorm"
)

// Collaborator seams. Tests replace these to keep reconciliation
// hermetic, same as db.NewDB swaps the database handle.
var newEventManager = func(user *models.User) lib.EventManager {
	return lib.NewGoogleCalendarEventManager(user)
}
var sendScheduledEmails = mailer.SendScheduledEmails
var sendConfirmedEmails = mailer.SendConfirmedEmails

// NewEventManagerFactory replaces the EventManager constructor, used by tests.
func NewEventManagerFactory(f func(*models.User) lib.EventManager) {
	newEventManager = f
}

// NewNotifier replaces the email dispatch functions, used by tests.
func NewNotifier(scheduled, confirmed func(*types.CalendarEvent)) {
	sendScheduledEmails = scheduled
	sendConfirmedEmails = confirmed
}

// TokenCost converts a meeting duration into time tokens. One token
// buys five minutes; partial slots round up.
func TokenCost(durationMinutes int) int {
	return int(math.Ceil(float64(durationMinutes) / float64(config.TOKEN_MINUTES)))
}

// applyBookingPayment charges the booker's wallet for the meeting,
// creates the external calendar resources and flips the booking to
// paid (and accepted, unless the event type requires confirmation).
func applyBookingPayment(ctx context.Context, payment *models.Payment) Result {
	gdb := db.GetDb()

	var booking models.Booking
	err := gdb.
		Preload("EventType").
		Preload("User").
		Preload("Attendees").
		Where("id = ?", *payment.BookingID).
		First(&booking).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("no booking found for payment %d", payment.ID)
	}
	if err != nil {
		return Internal(err)
	}
	if booking.User == nil {
		return NotFoundf("no user found for booking %d", booking.ID)
	}
	emitter := booking.User

	amount := TokenCost(booking.Duration())

	// The wallet charge is keyed on the email the booker typed into the
	// booking form; without it there is nobody to charge.
	email, _ := booking.Responses["email"].(string)
	if email == "" {
		return NotFoundf("no booker found for booking %d", booking.ID)
	}
	var booker models.User
	err = gdb.
		Where(&models.User{Email: email}).
		First(&booker).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("no booker found for booking %d", booking.ID)
	}
	if err != nil {
		return Internal(err)
	}

	var wallet models.TimeTokensWallet
	err = gdb.
		Where(&models.TimeTokensWallet{EmitterID: emitter.ID, OwnerID: booker.ID}).
		First(&wallet).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("no wallet for emitter %d and owner %d", emitter.ID, booker.ID)
	}
	if err != nil {
		return Internal(err)
	}

	// Shortfall policy: the wallet absorbs what it can and the overage
	// is charged against the emitter's own token balance. The booking
	// proceeds either way.
	if amount > wallet.Amount {
		shortfall := amount - wallet.Amount
		if err := gdb.Transaction(func(tx *gorm.DB) error {
			if err := tx.
				Model(&models.TimeTokensWallet{}).
				Where("id = ?", wallet.ID).
				Update("amount", gorm.Expr("amount - ?", wallet.Amount)).
				Error; err != nil {
				return err
			}
			if err := tx.
				Model(&models.User{}).
				Where("id = ?", emitter.ID).
				Update("tokens", gorm.Expr("tokens - ?", shortfall)).
				Error; err != nil {
				return err
			}
			return nil
		}); err != nil {
			return Internal(err)
		}
	}

	evt, err := BuildCalendarEvent(ctx, &booking)
	if err != nil {
		return Internal(err)
	}

	wasAccepted := booking.Status == types.BOOKING_ACCEPTED
	requiresConfirmation := booking.EventType != nil && booking.EventType.RequiresConfirmation

	var refs []types.EventReference
	if !wasAccepted {
		em := newEventManager(emitter)
		scheduleResult, err := em.Create(ctx, evt)
		if err != nil {
			return Internal(err)
		}
		refs = scheduleResult.ReferencesToCreate
	}

	updates := map[string]any{
		"paid":   true,
		"status": types.BOOKING_ACCEPTED,
	}
	if requiresConfirmation {
		// Payment does not bypass a manual confirmation requirement.
		delete(updates, "status")
	}

	if err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("success", true).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(updates).
			Error; err != nil {
			return err
		}
		for _, r := range refs {
			ref := models.BookingReference{
				BookingID:       booking.ID,
				Type:            r.Type,
				UID:             r.UID,
				MeetingID:       r.MeetingID,
				MeetingURL:      r.MeetingURL,
				MeetingPassword: r.MeetingPassword,
			}
			if err := tx.Create(&ref).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return Internal(err)
	}

	if !wasAccepted && !requiresConfirmation {
		go sendConfirmedEmails(evt)
	} else {
		go sendScheduledEmails(evt)
	}

	return Appliedf("Booking with id '%d' was paid and confirmed.", booking.ID)
}
