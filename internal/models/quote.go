package models

import "time"

type Quote struct {
	ID         string    `json:"id" db:"id"`
	OwnerID    int64     `json:"owner_id" db:"owner_id"`
	Text       string    `json:"text" db:"text"`
	Author     string    `json:"author" db:"author"`
	Favorite   bool      `json:"favorite" db:"favorite"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ModifiedAt time.Time `json:"modified_at" db:"modified_at"`
}

// PublicQuote is what the unauthenticated feed returns: the quote
// plus the username of its owner.
type PublicQuote struct {
	Quote
	OwnerUsername string `json:"owner_username"`
}
