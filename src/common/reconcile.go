package common

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"
	"timetokens/src/db"
	"timetokens/src/models"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HandlePaymentSuccess reconciles a succeeded provider payment against
// the domain entity it was meant to pay for: a booking, a wallet
// top-up, or a subscription upgrade. Exactly one of those pointers is
// set on the Payment row.
func HandlePaymentSuccess(ctx context.Context, event stripe.Event) Result {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
		return Internal(err)
	}

	gdb := db.GetDb()

	// Each provider event id is applied at most once. The record is
	// claimed up front so a concurrent redelivery loses the insert race,
	// and released again if processing fails so the provider retry can
	// run the handler fresh.
	whe := models.WebhookEvent{
		EventID:   event.ID,
		EventType: string(event.Type),
	}
	claim := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&whe)
	if claim.Error != nil {
		return Internal(claim.Error)
	}
	if claim.RowsAffected == 0 {
		return Skippedf("event %s already processed", event.ID)
	}

	res := reconcilePaymentIntent(ctx, &pi)
	if res.Kind == Failed {
		// The release has to remove the row for real: a soft-deleted row
		// still occupies the event_id unique index and would make every
		// retry lose the insert race forever.
		if err := gdb.Unscoped().Delete(&models.WebhookEvent{}, whe.ID).Error; err != nil {
			log.Printf("Error releasing webhook event %s: %s\n", event.ID, err.Error())
		}
		return res
	}
	if err := gdb.
		Model(&models.WebhookEvent{}).
		Where("id = ?", whe.ID).
		Update("processed_at", time.Now()).
		Error; err != nil {
		log.Printf("Error finalizing webhook event %s: %s\n", event.ID, err.Error())
	}
	return res
}

func reconcilePaymentIntent(ctx context.Context, pi *stripe.PaymentIntent) Result {
	gdb := db.GetDb()

	var payment models.Payment
	err := gdb.
		Where(&models.Payment{ExternalID: pi.ID}).
		First(&payment).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Checkout-created intents get their own id after the Payment row
		// was written, so fall back to the metadata correlation before
		// treating the row as missing.
		err = findPaymentByMetadata(gdb, pi, &payment)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Checkout may not have written the Payment row yet. The
		// provider redelivers, so this is a benign race, not a failure.
		return Skippedf("no payment recorded for transaction %s", pi.ID)
	}
	if err != nil {
		return Internal(err)
	}

	switch {
	case payment.BookingID != nil:
		return applyBookingPayment(ctx, &payment)
	case payment.WalletTransactionID != nil:
		return applyWalletPayment(&payment)
	case payment.SubscriptionID != nil:
		return applySubscriptionPayment(&payment)
	default:
		return NotFoundf("payment %d has no booking, wallet or subscription attached", payment.ID)
	}
}

// findPaymentByMetadata resolves a Payment through the purpose ids the
// checkout flow mirrored onto the PaymentIntent, then pins the intent id
// onto the row so later deliveries match directly.
func findPaymentByMetadata(gdb *gorm.DB, pi *stripe.PaymentIntent, payment *models.Payment) error {
	cond := models.Payment{}
	if v := pi.Metadata["walletTransactionId"]; v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return gorm.ErrRecordNotFound
		}
		uid := uint(id)
		cond.WalletTransactionID = &uid
	} else if v := pi.Metadata["subscriptionId"]; v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return gorm.ErrRecordNotFound
		}
		uid := uint(id)
		cond.SubscriptionID = &uid
	} else if v := pi.Metadata["bookingId"]; v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return gorm.ErrRecordNotFound
		}
		uid := uint(id)
		cond.BookingID = &uid
	} else {
		return gorm.ErrRecordNotFound
	}
	if err := gdb.Where(&cond).First(payment).Error; err != nil {
		return err
	}
	if err := gdb.
		Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Update("external_id", pi.ID).
		Error; err != nil {
		log.Printf("Error pinning external id %s on payment %d: %s\n", pi.ID, payment.ID, err.Error())
	}
	return nil
}

func applyWalletPayment(payment *models.Payment) Result {
	gdb := db.GetDb()

	var wtx models.TimeTokensTransaction
	err := gdb.
		Where("id = ?", *payment.WalletTransactionID).
		First(&wtx).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("TimeTokensTransaction %d not found", *payment.WalletTransactionID)
	}
	if err != nil {
		return Internal(err)
	}
	if err := gdb.
		Model(&models.TimeTokensTransaction{}).
		Where("id = ?", wtx.ID).
		Update("paid", true).
		Error; err != nil {
		return Internal(err)
	}

	var wallet models.TimeTokensWallet
	err = gdb.
		Where(&models.TimeTokensWallet{EmitterID: wtx.EmitterID, OwnerID: wtx.OwnerID}).
		First(&wallet).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("no wallet for emitter %d and owner %d", wtx.EmitterID, wtx.OwnerID)
	}
	if err != nil {
		return Internal(err)
	}

	// The wallet pool and the emitter's token ledger must move together
	// or the aggregate token supply drifts.
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.TimeTokensWallet{}).
			Where("id = ?", wallet.ID).
			Update("amount", gorm.Expr("amount + ?", wtx.Amount)).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.User{}).
			Where("id = ?", wtx.EmitterID).
			Update("tokens", gorm.Expr("tokens - ?", wtx.Amount)).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("success", true).
			Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		return Internal(err)
	}
	return Appliedf("wallet %d topped up by %d tokens", wallet.ID, wtx.Amount)
}

func applySubscriptionPayment(payment *models.Payment) Result {
	gdb := db.GetDb()

	var sub models.Subscription
	err := gdb.
		Where("id = ?", *payment.SubscriptionID).
		First(&sub).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("Subscription %d not found", *payment.SubscriptionID)
	}
	if err != nil {
		return Internal(err)
	}

	if err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Subscription{}).
			Where("id = ?", sub.ID).
			Update("paid", true).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.User{}).
			Where("id = ?", sub.UserID).
			Update("level", sub.Level).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("success", true).
			Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		return Internal(err)
	}
	return Appliedf("subscription %d paid, user %d moved to level %d", sub.ID, sub.UserID, sub.Level)
}
