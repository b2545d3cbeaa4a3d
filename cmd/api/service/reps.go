package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/filter"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/logger"
)

// ErrInvalidFilter wraps filter expressions that fail to compile or evaluate
var ErrInvalidFilter = errors.New("invalid filter")

// RepresentativeLister lists a user's linked representatives
type RepresentativeLister interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.LinkedRepresentative, error)
}

// RepresentativeService serves a user's saved representatives
type RepresentativeService struct {
	store     RepresentativeLister
	evaluator *filter.Evaluator
	log       *logger.Logger
}

// NewRepresentativeService creates a new representative service
func NewRepresentativeService(store RepresentativeLister, evaluator *filter.Evaluator, log *logger.Logger) *RepresentativeService {
	return &RepresentativeService{
		store:     store,
		evaluator: evaluator,
		log:       log,
	}
}

// List returns the user's representatives, keeping those matching expr when it is set.
// expr is a CEL predicate over the variable rep, e.g. rep.level == "federal".
func (s *RepresentativeService) List(ctx context.Context, userID uuid.UUID, expr string) ([]*models.LinkedRepresentative, error) {
	expr = strings.TrimSpace(expr)
	if expr != "" {
		if _, err := s.evaluator.Compile(expr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}

	linked, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if expr == "" {
		return linked, nil
	}

	matched := make([]*models.LinkedRepresentative, 0, len(linked))
	for _, item := range linked {
		ok, err := s.evaluator.Match(expr, filterFields(item))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		if ok {
			matched = append(matched, item)
		}
	}

	logger.FromContext(ctx, s.log).Debug("representatives filtered",
		"filter", expr,
		"total", len(linked),
		"matched", len(matched),
	)
	return matched, nil
}

// filterFields exposes every field so expressions never hit a missing key
func filterFields(item *models.LinkedRepresentative) map[string]interface{} {
	rep := item.Representative
	return map[string]interface{}{
		"id":          rep.ID.String(),
		"bioguide_id": models.Deref(rep.BioguideID),
		"name":        rep.Name,
		"role":        string(rep.Role),
		"level":       string(rep.Level),
		"party":       models.Deref(rep.Party),
		"state":       rep.State,
		"district":    rep.District,
		"photo_url":   models.Deref(rep.PhotoURL),
		"phone":       models.Deref(rep.Phone),
		"email":       models.Deref(rep.Email),
		"website":     models.Deref(rep.Website),
		"is_primary":  item.IsPrimary,
	}
}
