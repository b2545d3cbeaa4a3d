package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/common/clients"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path  string
	query url.Values
}

// openStatesStub answers with route(path, query); an empty body yields a 500
type openStatesStub struct {
	mu       sync.Mutex
	requests []recordedRequest
	route    func(path string, q url.Values) string
}

func (s *openStatesStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "os-key", r.Header.Get("X-API-KEY"))

		s.mu.Lock()
		s.requests = append(s.requests, recordedRequest{path: r.URL.Path, query: r.URL.Query()})
		s.mu.Unlock()

		body := s.route(r.URL.Path, r.URL.Query())
		if body == "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOpenStates(srv *httptest.Server) *OpenStates {
	log := logger.Discard()
	return NewOpenStates(srv.URL, "os-key", clients.NewHTTPClient(srv.Client(), log), log)
}

func TestOpenStatesLegislator_CleansDistrictAndNormalizes(t *testing.T) {
	stub := &openStatesStub{route: func(path string, q url.Values) string {
		return `{"results": [{
		  "name": "Natalie Murdock", "party": "Democratic", "image": "https://img/m.jpg",
		  "offices": [
		    {"classification": "district", "voice": "919-555-0100", "email": "district@example.org"},
		    {"classification": "capitol", "voice": "919-733-0000", "email": "capitol@example.org"}
		  ],
		  "links": [{"url": "https://ncleg.gov/murdock"}, {"url": "https://other"}]
		}]}`
	}}
	srv := stub.server(t)

	rep, err := newTestOpenStates(srv).Legislator(context.Background(), "NC", "020", models.ChamberUpper)
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, "Natalie Murdock", rep.Name)
	assert.Equal(t, models.RoleStateSenator, rep.Role)
	assert.Equal(t, models.LevelState, rep.Level)
	assert.Equal(t, "20", rep.District)
	assert.Equal(t, "NC", rep.State)
	assert.Nil(t, rep.BioguideID)
	assert.Equal(t, "919-733-0000", models.Deref(rep.Phone))
	assert.Equal(t, "capitol@example.org", models.Deref(rep.Email))
	assert.Equal(t, "https://ncleg.gov/murdock", models.Deref(rep.Website))
	assert.Equal(t, "https://img/m.jpg", models.Deref(rep.PhotoURL))

	require.Len(t, stub.requests, 1)
	req := stub.requests[0]
	assert.Equal(t, "/people", req.path)
	assert.Equal(t, "ocd-jurisdiction/country:us/state:nc/government", req.query.Get("jurisdiction"))
	assert.Equal(t, "20", req.query.Get("district"))
	assert.Equal(t, "upper", req.query.Get("org_classification"))
	assert.Equal(t, "offices", req.query.Get("include"))
}

func TestOpenStatesLegislator_EmptyAndFailure(t *testing.T) {
	stub := &openStatesStub{route: func(path string, q url.Values) string {
		if q.Get("org_classification") == "lower" {
			return `{"results": []}`
		}
		return ""
	}}
	adapter := newTestOpenStates(stub.server(t))

	rep, err := adapter.Legislator(context.Background(), "NC", "29", models.ChamberLower)
	require.NoError(t, err)
	assert.Nil(t, rep)

	rep, err = adapter.Legislator(context.Background(), "NC", "20", models.ChamberUpper)
	assert.Error(t, err)
	assert.Nil(t, rep)

	rep, err = adapter.Legislator(context.Background(), "NC", "", models.ChamberUpper)
	require.NoError(t, err)
	assert.Nil(t, rep)
}

func TestOpenStatesGovernor_ExecutivePeople(t *testing.T) {
	stub := &openStatesStub{route: func(path string, q url.Values) string {
		return `{"results": [
		  {"name": "Rachel Hunt", "current_role": {"title": "Lieutenant Governor"}},
		  {"name": "Josh Stein", "email": "gov@nc.gov", "current_role": {"title": "Governor"}}
		]}`
	}}
	srv := stub.server(t)

	rep, err := newTestOpenStates(srv).Governor(context.Background(), "NC")
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, "Josh Stein", rep.Name)
	assert.Equal(t, models.RoleGovernor, rep.Role)
	assert.Equal(t, models.StatewideDistrict, rep.District)
	assert.Equal(t, "gov@nc.gov", models.Deref(rep.Email))
	assert.Len(t, stub.requests, 1)
	assert.Equal(t, "executive", stub.requests[0].query.Get("org_classification"))
}

func TestOpenStatesGovernor_FallsBackToOrganization(t *testing.T) {
	stub := &openStatesStub{route: func(path string, q url.Values) string {
		switch {
		case path == "/people" && q.Get("org_classification") == "executive":
			return `{"results": []}`
		case path == "/organizations":
			return `{"results": [
			  {"id": "ocd-organization/ag", "name": "Attorney General"},
			  {"id": "ocd-organization/gov", "name": "Office of the Governor"}
			]}`
		case path == "/people" && q.Get("org_id") == "ocd-organization/gov":
			return `{"results": [{"name": "Josh Stein", "current_role": {"title": "Governor"}}]}`
		}
		return ""
	}}
	srv := stub.server(t)

	rep, err := newTestOpenStates(srv).Governor(context.Background(), "NC")
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, "Josh Stein", rep.Name)
	assert.Len(t, stub.requests, 3)
}

func TestOpenStatesGovernor_FirstStrategyErrorStillFallsBack(t *testing.T) {
	stub := &openStatesStub{route: func(path string, q url.Values) string {
		switch {
		case path == "/organizations":
			return `{"results": [{"id": "org-1", "name": "Executive Branch"}]}`
		case path == "/people" && q.Get("org_id") == "org-1":
			return `{"results": [{"name": "First Person", "current_role": {"title": "Chief of Staff"}}]}`
		}
		return ""
	}}
	srv := stub.server(t)

	rep, err := newTestOpenStates(srv).Governor(context.Background(), "VT")
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, "First Person", rep.Name)
}

func TestOpenStatesGovernor_NotFound(t *testing.T) {
	stub := &openStatesStub{route: func(path string, q url.Values) string {
		return `{"results": []}`
	}}
	rep, err := newTestOpenStates(stub.server(t)).Governor(context.Background(), "NC")
	require.NoError(t, err)
	assert.Nil(t, rep)
}

func TestOpenStatesDisabled(t *testing.T) {
	log := logger.Discard()
	adapter := NewOpenStates("http://127.0.0.1:1", "", clients.NewHTTPClient(nil, log), log)

	_, err := adapter.Legislator(context.Background(), "NC", "4", models.ChamberLower)
	assert.ErrorIs(t, err, ErrAdapterDisabled)
	_, err = adapter.Governor(context.Background(), "NC")
	assert.ErrorIs(t, err, ErrAdapterDisabled)
}

func TestCleanDistrict(t *testing.T) {
	tests := map[string]string{
		"004":          "4",
		" 12 ":         "12",
		"0":            "0",
		"7A":           "7",
		"Chittenden-1": "Chittenden-1",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanDistrict(in), "input %q", in)
	}
}

func TestPreferredOffice(t *testing.T) {
	assert.Nil(t, preferredOffice(nil))

	offices := []osOffice{{Classification: "other", Voice: "1"}, {Classification: "district", Voice: "2"}}
	assert.Equal(t, "2", preferredOffice(offices).Voice)

	offices = []osOffice{{Classification: "other", Voice: "1"}}
	assert.Equal(t, "1", preferredOffice(offices).Voice)
}
