package models

import (
	"github.com/google/uuid"
)

// Role is the office a representative holds
type Role string

const (
	RoleRepresentative      Role = "Representative"
	RoleSenator             Role = "Senator"
	RoleStateRepresentative Role = "State Representative"
	RoleStateSenator        Role = "State Senator"
	RoleGovernor            Role = "Governor"
)

// Level is the tier of government of an office
type Level string

const (
	LevelFederal Level = "federal"
	LevelState   Level = "state"
)

// Chamber is a state legislative chamber classification
type Chamber string

const (
	ChamberUpper Chamber = "upper"
	ChamberLower Chamber = "lower"
)

// StatewideDistrict is the district value of offices elected statewide
const StatewideDistrict = "Statewide"

// Representative is an elected official
// Maps to: representatives table
//
// Rows are matched by BioguideID when present, else by (name, state, role).
type Representative struct {
	ID uuid.UUID `db:"id" json:"id"`

	// External identifier from the federal directory; nil for state officials
	BioguideID *string `db:"bioguide_id" json:"bioguide_id"`

	Name     string  `db:"name" json:"name"`
	Role     Role    `db:"role" json:"role"`
	Level    Level   `db:"level" json:"level"`
	Party    *string `db:"party" json:"party"`
	State    string  `db:"state" json:"state"`
	District string  `db:"district" json:"district"`

	PhotoURL *string `db:"photo_url" json:"photo_url"`
	Phone    *string `db:"phone" json:"phone"`
	Email    *string `db:"email" json:"email"`
	Website  *string `db:"website" json:"website"`
}

// HasExternalID reports whether the record carries a usable external identifier
func (r *Representative) HasExternalID() bool {
	return r.BioguideID != nil && *r.BioguideID != ""
}

// UserRepresentative links a user to one of their representatives
// Maps to: user_reps table, unique on (user_id, rep_id)
type UserRepresentative struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	RepID     uuid.UUID `db:"rep_id" json:"rep_id"`
	IsPrimary bool      `db:"is_primary" json:"is_primary"`
}

// LinkedRepresentative is a representative as seen from one user's link
type LinkedRepresentative struct {
	IsPrimary      bool            `json:"is_primary"`
	Representative *Representative `json:"representatives"`
}

// StringPtr returns nil for the empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
