package models

import "time"

// Post is a piece of content owned by its author.
type Post struct {
	ID        uint      `gorm:"primaryKey"`
	AuthorID  uint      `gorm:"not null;index"`
	Content   string    `gorm:"type:text;not null"`
	ImageURL  *string   `gorm:"size:1024"`
	CreatedAt time.Time `gorm:"index"`

	Author User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
