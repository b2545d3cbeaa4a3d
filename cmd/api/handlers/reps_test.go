package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/promptmyrep/civic/cmd/api/directory"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/service"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLookup struct {
	LookupFunc func(ctx context.Context, userID uuid.UUID, address string) (*models.LookupSummary, error)
	addresses  []string
}

func (m *mockLookup) Lookup(ctx context.Context, userID uuid.UUID, address string) (*models.LookupSummary, error) {
	m.addresses = append(m.addresses, address)
	return m.LookupFunc(ctx, userID, address)
}

type mockLister struct {
	ListFunc func(ctx context.Context, userID uuid.UUID, expr string) ([]*models.LinkedRepresentative, error)
}

func (m *mockLister) List(ctx context.Context, userID uuid.UUID, expr string) ([]*models.LinkedRepresentative, error) {
	return m.ListFunc(ctx, userID, expr)
}

func TestRepsLookup_Success(t *testing.T) {
	district := "4"
	lookup := &mockLookup{LookupFunc: func(ctx context.Context, userID uuid.UUID, address string) (*models.LookupSummary, error) {
		assert.Equal(t, testUser().ID, userID)
		return &models.LookupSummary{
			Found:      true,
			State:      "NC",
			SavedCount: 5,
			Districts:  models.Districts{Federal: models.DistrictRef{District: &district}},
		}, nil
	}}
	h := NewRepsHandler(lookup, nil, logger.Discard())

	c, rec := newContext(http.MethodPost, "/api/reps/lookup", `{"address": "  101 City Hall Plaza, Durham, NC 27701 "}`, testUser())
	require.NoError(t, h.Lookup(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"found": true, "state": "NC", "saved_count": 5,
		"districts": {
			"federal": {"district": "4", "label": null},
			"state_upper": {"district": null, "label": null},
			"state_lower": {"district": null, "label": null}
		}
	}`, rec.Body.String())
	assert.Equal(t, []string{"101 City Hall Plaza, Durham, NC 27701"}, lookup.addresses)
}

func TestRepsLookup_NotFoundBodies(t *testing.T) {
	tests := []struct {
		err  error
		body string
	}{
		{directory.ErrAddressNotFound, `{"found": false, "error": "Address not found in Census database."}`},
		{directory.ErrStateUnknown, `{"found": false, "error": "Could not determine state."}`},
	}

	for _, tt := range tests {
		lookup := &mockLookup{LookupFunc: func(ctx context.Context, userID uuid.UUID, address string) (*models.LookupSummary, error) {
			return nil, tt.err
		}}
		h := NewRepsHandler(lookup, nil, logger.Discard())

		c, rec := newContext(http.MethodPost, "/api/reps/lookup", `{"address": "nowhere"}`, testUser())
		require.NoError(t, h.Lookup(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, tt.body, rec.Body.String())
	}
}

func TestRepsLookup_Errors(t *testing.T) {
	lookup := &mockLookup{LookupFunc: func(ctx context.Context, userID uuid.UUID, address string) (*models.LookupSummary, error) {
		return nil, fmt.Errorf("failed to geocode address: %w", errors.New("dial tcp: timeout"))
	}}
	h := NewRepsHandler(lookup, nil, logger.Discard())

	c, rec := newContext(http.MethodPost, "/api/reps/lookup", `{"address": ""}`, testUser())
	require.NoError(t, h.Lookup(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Address is required"}`, rec.Body.String())

	c, rec = newContext(http.MethodPost, "/api/reps/lookup", `{"address": "x"}`, nil)
	require.NoError(t, h.Lookup(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "Unauthorized"}`, rec.Body.String())

	c, rec = newContext(http.MethodPost, "/api/reps/lookup", `{"address": "x"}`, testUser())
	require.NoError(t, h.Lookup(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "dial tcp: timeout")
}

func TestRepsList(t *testing.T) {
	lister := &mockLister{ListFunc: func(ctx context.Context, userID uuid.UUID, expr string) ([]*models.LinkedRepresentative, error) {
		switch expr {
		case "bad":
			return nil, fmt.Errorf("%w: syntax error", service.ErrInvalidFilter)
		case `rep.level == "federal"`:
			return []*models.LinkedRepresentative{{IsPrimary: true, Representative: &models.Representative{Name: "Thom Tillis"}}}, nil
		}
		return nil, nil
	}}
	h := NewRepsHandler(nil, lister, logger.Discard())

	c, rec := newContext(http.MethodGet, `/api/v1/reps?filter=rep.level%20==%20%22federal%22`, "", testUser())
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thom Tillis")
	assert.Contains(t, rec.Body.String(), `"count":1`)

	c, rec = newContext(http.MethodGet, "/api/v1/reps", "", testUser())
	require.NoError(t, h.List(c))
	assert.JSONEq(t, `{"representatives": [], "count": 0}`, rec.Body.String())

	c, rec = newContext(http.MethodGet, "/api/v1/reps?filter=bad", "", testUser())
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
