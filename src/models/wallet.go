package models

import "timetokens/src/types"

// TimeTokensWallet is the prepaid token balance a booker (owner) holds
// with one expert (emitter).
type TimeTokensWallet struct {
	ID        uint `gorm:"primarykey" json:"id"`
	EmitterID uint `gorm:"uniqueIndex:idx_wallet_pair" json:"emitter_id"`
	OwnerID   uint `gorm:"uniqueIndex:idx_wallet_pair" json:"owner_id"`
	Amount    int  `gorm:"default:0" json:"amount"`

	Emitter *User `gorm:"foreignKey:emitter_id" json:"emitter,omitempty"`
	Owner   *User `gorm:"foreignKey:owner_id" json:"owner,omitempty"`

	types.Timestamps
}

// TimeTokensTransaction is a pending top-up request against a wallet.
type TimeTokensTransaction struct {
	ID        uint `gorm:"primarykey" json:"id"`
	EmitterID uint `json:"emitter_id"`
	OwnerID   uint `json:"owner_id"`
	Amount    int  `json:"amount"`
	Paid      bool `gorm:"default:false" json:"paid"`
	Expired   bool `gorm:"default:false" json:"expired"`

	Emitter *User `gorm:"foreignKey:emitter_id" json:"-"`
	Owner   *User `gorm:"foreignKey:owner_id" json:"-"`

	types.Timestamps
}
