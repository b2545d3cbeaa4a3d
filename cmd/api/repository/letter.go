package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/db"
)

// LetterRepository handles database operations for saved letters
type LetterRepository struct {
	db *db.DB
}

// NewLetterRepository creates a new letter repository
func NewLetterRepository(db *db.DB) *LetterRepository {
	return &LetterRepository{db: db}
}

// Create inserts a new letter, filling in its id and creation time
func (r *LetterRepository) Create(ctx context.Context, l *models.Letter) error {
	query := `
		INSERT INTO letters (id, user_id, article_id, content, status, recipient)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		l.ID,
		l.UserID,
		l.ArticleID,
		l.Content,
		string(l.Status),
		l.Recipient,
	).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create letter: %w", err)
	}
	return nil
}

// ListForUser returns a user's letters with their article title and url, newest first
func (r *LetterRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Letter, error) {
	query := `
		SELECT l.id, l.user_id, l.article_id, COALESCE(l.content, ''), COALESCE(l.status, 'draft'),
		       COALESCE(l.recipient, ''), l.created_at, a.title, a.url
		FROM letters l
		LEFT JOIN articles a ON a.id = l.article_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list letters: %w", err)
	}
	defer rows.Close()

	var letters []*models.Letter
	for rows.Next() {
		l := &models.Letter{}
		var status string
		var title, url *string
		if err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.ArticleID,
			&l.Content,
			&status,
			&l.Recipient,
			&l.CreatedAt,
			&title,
			&url,
		); err != nil {
			return nil, fmt.Errorf("failed to scan letter: %w", err)
		}
		l.Status = models.LetterStatus(status)
		if l.ArticleID != nil {
			l.Article = &models.ArticleRef{Title: models.Deref(title), URL: models.Deref(url)}
		}
		letters = append(letters, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate letters: %w", err)
	}
	return letters, nil
}
