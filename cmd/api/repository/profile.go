package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/db"
)

const profileColumns = `id, full_name, address, phone, job_title, is_registered_voter, civic_roles, updated_at`

// Profiles are created by the auth backend with most columns null
const profileSelect = `
	SELECT id, COALESCE(full_name, ''), COALESCE(address, ''), COALESCE(phone, ''),
	       COALESCE(job_title, ''), COALESCE(is_registered_voter, false),
	       COALESCE(civic_roles, '{}'), COALESCE(updated_at, NOW())
	FROM profiles`

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *db.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *db.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves a user's profile
func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := profileSelect + ` WHERE id = $1`

	p, err := scanProfile(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", notFound(err))
	}
	return p, nil
}

// Save inserts or replaces a user's profile
func (r *ProfileRepository) Save(ctx context.Context, p *models.Profile) error {
	return saveProfile(ctx, r.db, p)
}

// Modify applies fn to the current profile under a row lock and saves the result.
// A missing profile is passed to fn as an empty profile for the user.
func (r *ProfileRepository) Modify(ctx context.Context, userID uuid.UUID, fn func(current *models.Profile) (*models.Profile, error)) (*models.Profile, error) {
	var saved *models.Profile

	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		query := profileSelect + ` WHERE id = $1 FOR UPDATE`

		current, err := scanProfile(tx.QueryRow(ctx, query, userID))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to lock profile: %w", err)
			}
			current = &models.Profile{ID: userID, CivicRoles: []string{}}
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		next.ID = userID

		if err := saveProfile(ctx, tx, next); err != nil {
			return err
		}
		saved = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func saveProfile(ctx context.Context, q rowQuerier, p *models.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			job_title = EXCLUDED.job_title,
			is_registered_voter = EXCLUDED.is_registered_voter,
			civic_roles = EXCLUDED.civic_roles,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	if p.CivicRoles == nil {
		p.CivicRoles = []string{}
	}
	p.UpdatedAt = time.Now().UTC()

	err := q.QueryRow(ctx, query,
		p.ID,
		p.FullName,
		p.Address,
		p.Phone,
		p.JobTitle,
		p.IsRegisteredVoter,
		p.CivicRoles,
		p.UpdatedAt,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// rowQuerier is satisfied by both the pool and a transaction
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Address,
		&p.Phone,
		&p.JobTitle,
		&p.IsRegisteredVoter,
		&p.CivicRoles,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
