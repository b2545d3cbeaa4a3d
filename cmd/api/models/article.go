package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is a news article saved by a user, usually from the browser extension
// Maps to: articles table
type Article struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	CleanText string    `db:"clean_text" json:"clean_text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
