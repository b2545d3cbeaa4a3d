package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/repository"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/promptmyrep/civic/common/validation"
)

// ErrInvalidProfile is returned for profile updates that cannot be applied
var ErrInvalidProfile = errors.New("invalid profile")

// ProfileStore persists profiles
type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	Modify(ctx context.Context, userID uuid.UUID, fn func(current *models.Profile) (*models.Profile, error)) (*models.Profile, error)
}

const maxCivicRoles = 20

// profilePatchFields are the profile fields a merge patch may touch
var profilePatchFields = map[string]validation.FieldKind{
	"full_name":           validation.KindString,
	"address":             validation.KindString,
	"phone":               validation.KindString,
	"job_title":           validation.KindString,
	"is_registered_voter": validation.KindBool,
	"civic_roles":         validation.KindStringList,
	"id":                  validation.KindReadOnly,
	"updated_at":          validation.KindReadOnly,
}

// ProfileService manages user profiles
type ProfileService struct {
	store   ProfileStore
	patches *validation.MergePatchValidator
	log     *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(store ProfileStore, log *logger.Logger) *ProfileService {
	return &ProfileService{
		store:   store,
		patches: validation.NewMergePatchValidator(profilePatchFields, maxCivicRoles),
		log:     log,
	}
}

// Get returns the user's profile. A user without one gets an empty profile.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.Profile{ID: userID, CivicRoles: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Replace stores p as the user's full profile
func (s *ProfileService) Replace(ctx context.Context, userID uuid.UUID, p *models.Profile) (*models.Profile, error) {
	p.ID = userID
	normalizeProfile(p)

	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("profile replaced")
	return p, nil
}

// Patch applies an RFC 7396 merge patch to the stored profile
func (s *ProfileService) Patch(ctx context.Context, userID uuid.UUID, patch []byte) (*models.Profile, error) {
	if err := s.patches.Validate(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	updated, err := s.store.Modify(ctx, userID, func(current *models.Profile) (*models.Profile, error) {
		return applyProfilePatch(current, patch)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("profile patched")
	return updated, nil
}

func applyProfilePatch(current *models.Profile, patch []byte) (*models.Profile, error) {
	original, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	next := &models.Profile{}
	if err := json.Unmarshal(merged, next); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	// Identity and timestamps are not client writable
	next.ID = current.ID
	next.UpdatedAt = current.UpdatedAt
	normalizeProfile(next)
	return next, nil
}

func normalizeProfile(p *models.Profile) {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Address = strings.TrimSpace(p.Address)
	p.Phone = strings.TrimSpace(p.Phone)
	p.JobTitle = strings.TrimSpace(p.JobTitle)

	roles := make([]string, 0, len(p.CivicRoles))
	seen := make(map[string]bool, len(p.CivicRoles))
	for _, role := range p.CivicRoles {
		role = strings.TrimSpace(role)
		if role == "" || seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	p.CivicRoles = roles
}
