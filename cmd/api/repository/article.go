package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/db"
)

// ArticleRepository handles database operations for saved articles
type ArticleRepository struct {
	db *db.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *db.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a new article, filling in its id and creation time
func (r *ArticleRepository) Create(ctx context.Context, a *models.Article) error {
	query := `
		INSERT INTO articles (id, user_id, title, url, clean_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if err := r.db.QueryRow(ctx, query, a.ID, a.UserID, a.Title, a.URL, a.CleanText).Scan(&a.CreatedAt); err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// Get retrieves one of a user's articles
func (r *ArticleRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.Article, error) {
	query := `
		SELECT id, user_id, COALESCE(title, ''), COALESCE(url, ''), COALESCE(clean_text, ''), created_at
		FROM articles
		WHERE id = $1 AND user_id = $2
	`

	a := &models.Article{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.Title,
		&a.URL,
		&a.CleanText,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", notFound(err))
	}
	return a, nil
}

// List returns a user's articles, newest first. Bodies are omitted.
func (r *ArticleRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Article, error) {
	query := `
		SELECT id, user_id, COALESCE(title, ''), COALESCE(url, ''), created_at
		FROM articles
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		a := &models.Article{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.URL, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}
