package models

import (
	"time"

	"github.com/google/uuid"
)

// LetterStatus is the lifecycle state of a saved letter
type LetterStatus string

const (
	LetterDraft LetterStatus = "draft"
	LetterSent  LetterStatus = "sent"
)

// Letter is a generated letter or phone script saved to a user's history
// Maps to: letters table
type Letter struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	UserID    uuid.UUID    `db:"user_id" json:"user_id"`
	ArticleID *uuid.UUID   `db:"article_id" json:"article_id"`
	Content   string       `db:"content" json:"content"`
	Status    LetterStatus `db:"status" json:"status"`
	Recipient string       `db:"recipient" json:"recipient"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`

	// Populated by history queries
	Article *ArticleRef `json:"articles,omitempty"`
}

// ArticleRef is the slice of an article shown next to a letter
type ArticleRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
