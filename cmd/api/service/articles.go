package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/promptmyrep/civic/common/validation"
)

// ErrInvalidArticle is returned for articles without a url or content, or with an unusable url
var ErrInvalidArticle = errors.New("invalid article")

const defaultListLimit = 50

// ArticleStore persists saved articles
type ArticleStore interface {
	Create(ctx context.Context, a *models.Article) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Article, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Article, error)
}

// ArticleService saves and serves articles clipped by users
type ArticleService struct {
	store ArticleStore
	urls  *validation.URLValidator
	log   *logger.Logger
}

// NewArticleService creates a new article service
func NewArticleService(store ArticleStore, log *logger.Logger) *ArticleService {
	return &ArticleService{
		store: store,
		urls:  validation.NewPublicURLValidator(),
		log:   log,
	}
}

// Save stores an article for the user
func (s *ArticleService) Save(ctx context.Context, userID uuid.UUID, title, url, content string) (*models.Article, error) {
	a := &models.Article{
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		URL:       strings.TrimSpace(url),
		CleanText: strings.TrimSpace(content),
	}
	if a.URL == "" && a.CleanText == "" {
		return nil, fmt.Errorf("%w: url or content is required", ErrInvalidArticle)
	}
	if a.URL != "" {
		if err := s.urls.Validate(a.URL); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArticle, err)
		}
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("article saved", "article_id", a.ID, "url", a.URL)
	return a, nil
}

// Get returns one of the user's articles
func (s *ArticleService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Article, error) {
	return s.store.Get(ctx, userID, id)
}

// List returns the user's most recent articles
func (s *ArticleService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Article, error) {
	return s.store.List(ctx, userID, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return defaultListLimit
	}
	return limit
}
