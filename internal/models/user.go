package models

import "time"

// User represents an account in the system.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:255;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
