package models

import (
	"timetokens/src/types"

	"github.com/google/uuid"
)

// Payment links one provider transaction to exactly one purpose:
// a booking, a wallet top-up, or a subscription upgrade.
type Payment struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid()" json:"uid"`
	ExternalID string    `gorm:"uniqueIndex" json:"external_id"`
	Amount     int64     `json:"amount,omitempty"`
	Currency   string    `gorm:"default:'usd'" json:"currency,omitempty"`
	Success    bool      `gorm:"default:false" json:"success"`

	BookingID           *uint `json:"booking_id,omitempty"`
	WalletTransactionID *uint `json:"wallet_transaction_id,omitempty"`
	SubscriptionID      *uint `json:"subscription_id,omitempty"`

	Booking           *Booking               `gorm:"foreignKey:booking_id" json:"-"`
	WalletTransaction *TimeTokensTransaction `gorm:"foreignKey:wallet_transaction_id" json:"-"`
	Subscription      *Subscription          `gorm:"foreignKey:subscription_id" json:"-"`

	types.Timestamps
}
