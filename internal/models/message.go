package models

import "time"

// Message is a direct message between two users.
type Message struct {
	ID         uint      `gorm:"primaryKey"`
	SenderID   uint      `gorm:"not null;index"`
	ReceiverID uint      `gorm:"not null;index"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`

	Sender   User `gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
