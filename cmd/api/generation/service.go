// Package generation drafts constituent letters and phone scripts with a
// hosted language model.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promptmyrep/civic/common/logger"
	"github.com/promptmyrep/civic/common/telemetry"
)

// ErrUnavailable is returned when no model is configured
var ErrUnavailable = errors.New("text generation is not configured")

// ErrInvalidRequest is returned for requests missing required fields
var ErrInvalidRequest = errors.New("invalid generation request")

// TextModel generates text from a prompt with a named model
type TextModel interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Service generates letters with a primary model and a fallback model
type Service struct {
	model     TextModel
	primary   string
	fallback  string
	telemetry *telemetry.Telemetry
	log       *logger.Logger
}

// NewService creates a new generation service. model may be nil when no API key is set.
func NewService(model TextModel, primary, fallback string, tel *telemetry.Telemetry, log *logger.Logger) *Service {
	return &Service{
		model:     model,
		primary:   primary,
		fallback:  fallback,
		telemetry: tel,
		log:       log,
	}
}

// Generate drafts the text described by req.
// When the primary model does not exist the fallback model is tried once.
func (s *Service) Generate(ctx context.Context, req *Request) (string, error) {
	if s.model == nil {
		return "", ErrUnavailable
	}
	if err := validate(req); err != nil {
		return "", err
	}

	defer s.telemetry.RecordDuration("generate", time.Now())
	log := logger.FromContext(ctx, s.log)
	prompt := BuildPrompt(req)

	text, err := s.model.Generate(ctx, s.primary, prompt)
	if err == nil {
		s.telemetry.RecordGeneration(s.primary, telemetry.OutcomeFound)
		return text, nil
	}
	s.telemetry.RecordGeneration(s.primary, telemetry.OutcomeError)

	if s.fallback == "" || !isModelNotFound(err) {
		log.Warn("generation failed", "model", s.primary, "error", err)
		return "", err
	}

	log.Warn("primary model unavailable, retrying with fallback", "model", s.primary, "fallback", s.fallback)
	text, fallbackErr := s.model.Generate(ctx, s.fallback, prompt)
	if fallbackErr != nil {
		s.telemetry.RecordGeneration(s.fallback, telemetry.OutcomeError)
		log.Warn("fallback generation failed", "model", s.fallback, "error", fallbackErr)
		return "", fmt.Errorf("primary (%s) and fallback (%s) failed, original error: %w", s.primary, s.fallback, err)
	}

	s.telemetry.RecordGeneration(s.fallback, telemetry.OutcomeFound)
	return text, nil
}

func validate(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if req.IsRefinement {
		if strings.TrimSpace(req.CurrentDraft) == "" {
			return fmt.Errorf("%w: currentDraft is required for refinement", ErrInvalidRequest)
		}
		if strings.TrimSpace(req.RefinementInstructions) == "" {
			return fmt.Errorf("%w: refinementInstructions is required for refinement", ErrInvalidRequest)
		}
		return nil
	}
	if strings.TrimSpace(req.ArticleText) == "" && strings.TrimSpace(req.ArticleTitle) == "" {
		return fmt.Errorf("%w: article text or title is required", ErrInvalidRequest)
	}
	return nil
}
