package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the personal details used to personalize letters
// Maps to: profiles table, keyed by the user id
type Profile struct {
	ID                uuid.UUID `db:"id" json:"id"`
	FullName          string    `db:"full_name" json:"full_name"`
	Address           string    `db:"address" json:"address"`
	Phone             string    `db:"phone" json:"phone"`
	JobTitle          string    `db:"job_title" json:"job_title"`
	IsRegisteredVoter bool      `db:"is_registered_voter" json:"is_registered_voter"`
	CivicRoles        []string  `db:"civic_roles" json:"civic_roles"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
