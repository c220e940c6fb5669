package models

import "timetokens/src/types"

type Subscription struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `json:"user_id"`
	Level  uint `json:"level"`
	Paid   bool `gorm:"default:false" json:"paid"`

	User *User `gorm:"foreignKey:user_id" json:"-"`

	types.Timestamps
}
