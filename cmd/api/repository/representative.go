package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/db"
)

// RepresentativeRepository handles database operations for representatives and user links
type RepresentativeRepository struct {
	db *db.DB
}

// NewRepresentativeRepository creates a new representative repository
func NewRepresentativeRepository(db *db.DB) *RepresentativeRepository {
	return &RepresentativeRepository{db: db}
}

// FindIDByExternalID returns the id of the row holding a federal identifier
func (r *RepresentativeRepository) FindIDByExternalID(ctx context.Context, bioguideID string) (uuid.UUID, error) {
	query := `SELECT id FROM representatives WHERE bioguide_id = $1 LIMIT 1`

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, bioguideID).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to find representative by bioguide_id: %w", notFound(err))
	}
	return id, nil
}

// FindIDByComposite returns the id of the row matching (name, state, role)
func (r *RepresentativeRepository) FindIDByComposite(ctx context.Context, name, state string, role models.Role) (uuid.UUID, error) {
	query := `
		SELECT id FROM representatives
		WHERE name = $1 AND state = $2 AND role = $3
		LIMIT 1
	`

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, name, state, string(role)).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to find representative by name/state/role: %w", notFound(err))
	}
	return id, nil
}

// Create inserts a new representative and returns its id
func (r *RepresentativeRepository) Create(ctx context.Context, rep *models.Representative) (uuid.UUID, error) {
	query := `
		INSERT INTO representatives
			(id, bioguide_id, name, role, level, party, state, district, photo_url, phone, email, website)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	id := uuid.New()
	err := r.db.QueryRow(ctx, query,
		id,
		rep.BioguideID,
		rep.Name,
		string(rep.Role),
		string(rep.Level),
		rep.Party,
		rep.State,
		rep.District,
		rep.PhotoURL,
		rep.Phone,
		rep.Email,
		rep.Website,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create representative: %w", err)
	}

	return id, nil
}

// Update overwrites every non-key field of an existing representative
func (r *RepresentativeRepository) Update(ctx context.Context, id uuid.UUID, rep *models.Representative) error {
	query := `
		UPDATE representatives
		SET bioguide_id = $2, name = $3, role = $4, level = $5, party = $6, state = $7,
		    district = $8, photo_url = $9, phone = $10, email = $11, website = $12
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		id,
		rep.BioguideID,
		rep.Name,
		string(rep.Role),
		string(rep.Level),
		rep.Party,
		rep.State,
		rep.District,
		rep.PhotoURL,
		rep.Phone,
		rep.Email,
		rep.Website,
	)
	if err != nil {
		return fmt.Errorf("failed to update representative: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update representative %s: %w", id, ErrNotFound)
	}

	return nil
}

// UpsertUserLink creates or refreshes the link between a user and a representative
func (r *RepresentativeRepository) UpsertUserLink(ctx context.Context, link *models.UserRepresentative) error {
	query := `
		INSERT INTO user_reps (user_id, rep_id, is_primary)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, rep_id) DO UPDATE SET is_primary = EXCLUDED.is_primary
	`

	if _, err := r.db.Exec(ctx, query, link.UserID, link.RepID, link.IsPrimary); err != nil {
		return fmt.Errorf("failed to upsert user representative link: %w", err)
	}
	return nil
}

// ListForUser returns the representatives linked to a user
func (r *RepresentativeRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.LinkedRepresentative, error) {
	query := `
		SELECT ur.is_primary,
		       r.id, r.bioguide_id, r.name, r.role, r.level, r.party, r.state, r.district,
		       r.photo_url, r.phone, r.email, r.website
		FROM user_reps ur
		JOIN representatives r ON r.id = ur.rep_id
		WHERE ur.user_id = $1
		ORDER BY r.level, r.role, r.name
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user representatives: %w", err)
	}
	defer rows.Close()

	var linked []*models.LinkedRepresentative
	for rows.Next() {
		rep := &models.Representative{}
		item := &models.LinkedRepresentative{Representative: rep}
		var role, level string
		if err := rows.Scan(
			&item.IsPrimary,
			&rep.ID,
			&rep.BioguideID,
			&rep.Name,
			&role,
			&level,
			&rep.Party,
			&rep.State,
			&rep.District,
			&rep.PhotoURL,
			&rep.Phone,
			&rep.Email,
			&rep.Website,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user representative: %w", err)
		}
		rep.Role = models.Role(role)
		rep.Level = models.Level(level)
		linked = append(linked, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user representatives: %w", err)
	}

	return linked, nil
}
