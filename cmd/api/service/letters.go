package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/logger"
)

// ErrInvalidLetter is returned for letters without content or with an unknown status
var ErrInvalidLetter = errors.New("invalid letter")

// LetterStore persists letters
type LetterStore interface {
	Create(ctx context.Context, l *models.Letter) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Letter, error)
}

// LetterService saves generated letters to a user's history
type LetterService struct {
	store LetterStore
	log   *logger.Logger
}

// NewLetterService creates a new letter service
func NewLetterService(store LetterStore, log *logger.Logger) *LetterService {
	return &LetterService{store: store, log: log}
}

// Save stores a letter for the user. An empty status means draft.
func (s *LetterService) Save(ctx context.Context, userID uuid.UUID, l *models.Letter) (*models.Letter, error) {
	l.ID = uuid.Nil
	l.UserID = userID
	l.Content = strings.TrimSpace(l.Content)
	l.Recipient = strings.TrimSpace(l.Recipient)

	if l.Content == "" {
		return nil, ErrInvalidLetter
	}

	switch l.Status {
	case "":
		l.Status = models.LetterDraft
	case models.LetterDraft, models.LetterSent:
	default:
		return nil, ErrInvalidLetter
	}

	if err := s.store.Create(ctx, l); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("letter saved", "letter_id", l.ID, "status", l.Status)
	return l, nil
}

// History returns the user's letters, newest first
func (s *LetterService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Letter, error) {
	return s.store.ListForUser(ctx, userID, clampLimit(limit))
}
