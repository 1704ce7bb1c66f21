package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus defines the state of a friend edge.
type FriendshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet answered.
	StatusPending FriendshipStatus = "pending"

	// StatusAccepted means the recipient accepted and the two users are friends.
	StatusAccepted FriendshipStatus = "accepted"
)

// FriendEdge is a friend request between two users. It keeps the direction it
// was created with, but UserLowID/UserHighID hold the same pair in ascending
// order so the unique index covers the unordered pair: A->B and B->A collide.
type FriendEdge struct {
	ID          uint             `gorm:"primaryKey"`
	RequesterID uint             `gorm:"not null;index"`
	RecipientID uint             `gorm:"not null;index"`
	UserLowID   uint             `gorm:"not null;uniqueIndex:idx_friend_edges_pair"`
	UserHighID  uint             `gorm:"not null;uniqueIndex:idx_friend_edges_pair"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Requester User `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Recipient User `gorm:"foreignKey:RecipientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// BeforeCreate fills the canonical pair columns.
func (e *FriendEdge) BeforeCreate(_ *gorm.DB) error {
	e.UserLowID, e.UserHighID = OrderedPair(e.RequesterID, e.RecipientID)
	return nil
}

// Other returns the id on the opposite side of the edge from userID.
func (e *FriendEdge) Other(userID uint) uint {
	if e.RequesterID == userID {
		return e.RecipientID
	}
	return e.RequesterID
}

// OrderedPair returns a and b in ascending order.
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
