package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/repository"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryProfiles struct {
	profiles map[uuid.UUID]models.Profile
}

func (m *memoryProfiles) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memoryProfiles) Save(ctx context.Context, p *models.Profile) error {
	m.profiles[p.ID] = *p
	return nil
}

func (m *memoryProfiles) Modify(ctx context.Context, userID uuid.UUID, fn func(current *models.Profile) (*models.Profile, error)) (*models.Profile, error) {
	current, err := m.Get(ctx, userID)
	if err != nil {
		current = &models.Profile{ID: userID, CivicRoles: []string{}}
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	m.profiles[userID] = *next
	return next, nil
}

func newProfileService() (*ProfileService, *memoryProfiles) {
	store := &memoryProfiles{profiles: make(map[uuid.UUID]models.Profile)}
	return NewProfileService(store, logger.Discard()), store
}

func TestProfileGet_MissingIsEmpty(t *testing.T) {
	svc, _ := newProfileService()
	user := uuid.New()

	p, err := svc.Get(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, user, p.ID)
	assert.Empty(t, p.FullName)
	assert.NotNil(t, p.CivicRoles)
}

func TestProfileReplace_Normalizes(t *testing.T) {
	svc, store := newProfileService()
	user := uuid.New()

	p, err := svc.Replace(context.Background(), user, &models.Profile{
		ID:         uuid.New(),
		FullName:   "  Ada Lovelace ",
		CivicRoles: []string{"Parent", " Parent", "", "Teacher"},
	})
	require.NoError(t, err)

	assert.Equal(t, user, p.ID)
	assert.Equal(t, "Ada Lovelace", p.FullName)
	assert.Equal(t, []string{"Parent", "Teacher"}, p.CivicRoles)
	assert.Contains(t, store.profiles, user)
}

func TestProfilePatch_MergesFields(t *testing.T) {
	svc, store := newProfileService()
	user := uuid.New()
	store.profiles[user] = models.Profile{
		ID:         user,
		FullName:   "Ada Lovelace",
		Address:    "1 Main St",
		JobTitle:   "Engineer",
		CivicRoles: []string{"Parent"},
	}

	p, err := svc.Patch(context.Background(), user, []byte(`{"job_title": null, "is_registered_voter": true, "civic_roles": ["Veteran"], "id": "00000000-0000-0000-0000-000000000001"}`))
	require.NoError(t, err)

	assert.Equal(t, user, p.ID)
	assert.Equal(t, "Ada Lovelace", p.FullName)
	assert.Equal(t, "1 Main St", p.Address)
	assert.Empty(t, p.JobTitle)
	assert.True(t, p.IsRegisteredVoter)
	assert.Equal(t, []string{"Veteran"}, p.CivicRoles)
}

func TestProfilePatch_CreatesMissingProfile(t *testing.T) {
	svc, store := newProfileService()
	user := uuid.New()

	p, err := svc.Patch(context.Background(), user, []byte(`{"full_name": "Grace Hopper"}`))
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", p.FullName)
	assert.Equal(t, "Grace Hopper", store.profiles[user].FullName)
}

func TestProfilePatch_Invalid(t *testing.T) {
	svc, _ := newProfileService()

	_, err := svc.Patch(context.Background(), uuid.New(), []byte(`{"is_registered_voter": "yes"}`))
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = svc.Patch(context.Background(), uuid.New(), []byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = svc.Patch(context.Background(), uuid.New(), []byte(`{"ssn": "123-45-6789"}`))
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.ErrorContains(t, err, "unknown field")
}

func TestProfilePatch_NonObjectKeepsProfile(t *testing.T) {
	svc, store := newProfileService()
	user := uuid.New()
	store.profiles[user] = models.Profile{ID: user, FullName: "Ada", Address: "1 Main St", CivicRoles: []string{"voter"}}

	for _, body := range []string{`null`, ` null `, `[]`, `"x"`, `42`} {
		_, err := svc.Patch(context.Background(), user, []byte(body))
		assert.ErrorIs(t, err, ErrInvalidProfile, body)
	}

	stored := store.profiles[user]
	assert.Equal(t, "Ada", stored.FullName)
	assert.Equal(t, "1 Main St", stored.Address)
	assert.Equal(t, []string{"voter"}, stored.CivicRoles)
}
