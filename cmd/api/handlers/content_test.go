package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/generation"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/repository"
	"github.com/promptmyrep/civic/cmd/api/service"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockArticles struct {
	SaveFunc func(ctx context.Context, userID uuid.UUID, title, url, content string) (*models.Article, error)
	GetFunc  func(ctx context.Context, userID, id uuid.UUID) (*models.Article, error)
	ListFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Article, error)
}

func (m *mockArticles) Save(ctx context.Context, userID uuid.UUID, title, url, content string) (*models.Article, error) {
	return m.SaveFunc(ctx, userID, title, url, content)
}

func (m *mockArticles) Get(ctx context.Context, userID, id uuid.UUID) (*models.Article, error) {
	return m.GetFunc(ctx, userID, id)
}

func (m *mockArticles) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Article, error) {
	return m.ListFunc(ctx, userID, limit)
}

type mockGenerator struct {
	GenerateFunc func(ctx context.Context, req *generation.Request) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req *generation.Request) (string, error) {
	return m.GenerateFunc(ctx, req)
}

type mockProfiles struct {
	patches [][]byte
	err     error
}

func (m *mockProfiles) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return &models.Profile{ID: userID, FullName: "Ada"}, nil
}

func (m *mockProfiles) Replace(ctx context.Context, userID uuid.UUID, p *models.Profile) (*models.Profile, error) {
	p.ID = userID
	return p, nil
}

func (m *mockProfiles) Patch(ctx context.Context, userID uuid.UUID, patch []byte) (*models.Profile, error) {
	m.patches = append(m.patches, patch)
	if m.err != nil {
		return nil, m.err
	}
	return &models.Profile{ID: userID}, nil
}

type mockLetters struct {
	saved []*models.Letter
}

func (m *mockLetters) Save(ctx context.Context, userID uuid.UUID, l *models.Letter) (*models.Letter, error) {
	if l.Content == "" {
		return nil, service.ErrInvalidLetter
	}
	l.UserID = userID
	m.saved = append(m.saved, l)
	return l, nil
}

func (m *mockLetters) History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Letter, error) {
	return m.saved, nil
}

func TestArticleSave(t *testing.T) {
	articles := &mockArticles{SaveFunc: func(ctx context.Context, userID uuid.UUID, title, url, content string) (*models.Article, error) {
		return &models.Article{ID: uuid.New(), UserID: userID, Title: title, URL: url, CleanText: content, CreatedAt: time.Now()}, nil
	}}
	h := NewArticleHandler(articles, logger.Discard())

	c, rec := newContext(http.MethodPost, "/api/save-article", `{"title": "T", "url": "https://n.example/a", "content": "body"}`, testUser())
	require.NoError(t, h.Save(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"clean_text":"body"`)

	c, rec = newContext(http.MethodPost, "/api/save-article", `{}`, nil)
	require.NoError(t, h.Save(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false, "error": "Unauthorized: Please log in first."}`, rec.Body.String())
}

func TestArticleGet(t *testing.T) {
	articles := &mockArticles{GetFunc: func(ctx context.Context, userID, id uuid.UUID) (*models.Article, error) {
		return nil, repository.ErrNotFound
	}}
	h := NewArticleHandler(articles, logger.Discard())

	c, rec := newContext(http.MethodGet, "/api/v1/articles/x", "", testUser())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodGet, "/api/v1/articles/x", "", testUser())
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerate(t *testing.T) {
	gen := &mockGenerator{GenerateFunc: func(ctx context.Context, req *generation.Request) (string, error) {
		switch req.Mode {
		case "phone":
			return "Hi, my name is Ada", nil
		case "broken":
			return "", errors.New("primary (a) and fallback (b) failed")
		}
		return "", generation.ErrInvalidRequest
	}}
	h := NewGenerateHandler(gen, logger.Discard())

	c, rec := newContext(http.MethodPost, "/api/generate", `{"mode": "phone", "articleText": "x"}`, testUser())
	require.NoError(t, h.Generate(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true, "letter": "Hi, my name is Ada"}`, rec.Body.String())

	c, rec = newContext(http.MethodPost, "/api/generate", `{"mode": "broken"}`, testUser())
	require.NoError(t, h.Generate(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success": false, "error": "primary (a) and fallback (b) failed"}`, rec.Body.String())

	c, rec = newContext(http.MethodPost, "/api/generate", `{"mode": "letter"}`, testUser())
	require.NoError(t, h.Generate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfilePatch(t *testing.T) {
	profiles := &mockProfiles{}
	h := NewProfileHandler(profiles, logger.Discard())

	c, rec := newContext(http.MethodPatch, "/api/v1/profile", `{"full_name": "Ada"}`, testUser())
	require.NoError(t, h.Patch(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, profiles.patches, 1)
	assert.JSONEq(t, `{"full_name": "Ada"}`, string(profiles.patches[0]))

	c, rec = newContext(http.MethodPatch, "/api/v1/profile", "", testUser())
	require.NoError(t, h.Patch(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	profiles.err = service.ErrInvalidProfile
	c, rec = newContext(http.MethodPatch, "/api/v1/profile", `{"is_registered_voter": "yes"}`, testUser())
	require.NoError(t, h.Patch(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type seededProfiles struct {
	profile models.Profile
	saves   int
}

func (s *seededProfiles) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p := s.profile
	return &p, nil
}

func (s *seededProfiles) Save(ctx context.Context, p *models.Profile) error {
	s.saves++
	s.profile = *p
	return nil
}

func (s *seededProfiles) Modify(ctx context.Context, userID uuid.UUID, fn func(current *models.Profile) (*models.Profile, error)) (*models.Profile, error) {
	current := s.profile
	next, err := fn(&current)
	if err != nil {
		return nil, err
	}
	return next, s.Save(ctx, next)
}

func TestProfilePatch_NonObjectBody(t *testing.T) {
	user := testUser()
	store := &seededProfiles{profile: models.Profile{ID: user.ID, FullName: "Ada", CivicRoles: []string{"voter"}}}
	h := NewProfileHandler(service.NewProfileService(store, logger.Discard()), logger.Discard())

	for _, body := range []string{`null`, `[]`, `"x"`} {
		c, rec := newContext(http.MethodPatch, "/api/v1/profile", body, user)
		require.NoError(t, h.Patch(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	assert.Equal(t, 0, store.saves)
	assert.Equal(t, "Ada", store.profile.FullName)
}

func TestLetters(t *testing.T) {
	letters := &mockLetters{}
	h := NewLetterHandler(letters, logger.Discard())

	c, rec := newContext(http.MethodPost, "/api/v1/letters", `{"content": "Dear Senator", "recipient": "Thom Tillis"}`, testUser())
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newContext(http.MethodPost, "/api/v1/letters", `{"content": ""}`, testUser())
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodGet, "/api/v1/letters", "", testUser())
	require.NoError(t, h.History(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), "Thom Tillis")
}
