package service

import "gorm.io/gorm"

// Page limits a list query. Zero values mean no limit and no offset.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

// UserSummary is the public part of a user carried in event payloads.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
