package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/generation"
	"github.com/promptmyrep/civic/cmd/api/models"
)

// RepLookup resolves and saves a user's representatives
type RepLookup interface {
	Lookup(ctx context.Context, userID uuid.UUID, address string) (*models.LookupSummary, error)
}

// RepLister lists a user's saved representatives
type RepLister interface {
	List(ctx context.Context, userID uuid.UUID, expr string) ([]*models.LinkedRepresentative, error)
}

// ArticleManager saves and serves articles
type ArticleManager interface {
	Save(ctx context.Context, userID uuid.UUID, title, url, content string) (*models.Article, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Article, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Article, error)
}

// ProfileManager reads and updates profiles
type ProfileManager interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Replace(ctx context.Context, userID uuid.UUID, p *models.Profile) (*models.Profile, error)
	Patch(ctx context.Context, userID uuid.UUID, patch []byte) (*models.Profile, error)
}

// LetterManager saves letters and lists history
type LetterManager interface {
	Save(ctx context.Context, userID uuid.UUID, l *models.Letter) (*models.Letter, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Letter, error)
}

// LetterGenerator drafts letters and phone scripts
type LetterGenerator interface {
	Generate(ctx context.Context, req *generation.Request) (string, error)
}
