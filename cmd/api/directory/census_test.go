package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/promptmyrep/civic/common/clients"
	"github.com/promptmyrep/civic/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const durhamResponse = `{
  "result": {
    "addressMatches": [{
      "matchedAddress": "101 CITY HALL PLZ, DURHAM, NC, 27701",
      "addressComponents": {"state": "NC"},
      "geographies": {
        "119th Congressional Districts": [{"BASENAME": "4", "NAME": "Congressional District 4"}],
        "2024 State Legislative Districts - Upper": [{"BASENAME": "20", "NAME": "State Senate District 20"}],
        "2024 State Legislative Districts - Lower": [{"BASENAME": "29", "NAME": "State House District 29"}]
      }
    }]
  }
}`

func newCensusServer(t *testing.T, body string, seen *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, censusGeographiesPath, r.URL.Path)
		if seen != nil {
			*seen = r.URL.Query()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestCensus(srv *httptest.Server) *Census {
	log := logger.Discard()
	return NewCensus(srv.URL, clients.NewHTTPClient(srv.Client(), log), log)
}

func TestCensusGeocode_Durham(t *testing.T) {
	var seen url.Values
	srv := newCensusServer(t, durhamResponse, &seen)

	match, err := newTestCensus(srv).Geocode(context.Background(), "101 City Hall Plaza, Durham, NC 27701")
	require.NoError(t, err)

	assert.Equal(t, "NC", match.State)
	require.NotNil(t, match.Districts.Federal.District)
	assert.Equal(t, "4", *match.Districts.Federal.District)
	assert.Equal(t, "Congressional District 4", *match.Districts.Federal.Label)
	assert.Equal(t, "20", *match.Districts.StateUpper.District)
	assert.Equal(t, "29", *match.Districts.StateLower.District)

	assert.Equal(t, "101 City Hall Plaza, Durham, NC 27701", seen.Get("address"))
	assert.Equal(t, "Public_AR_Current", seen.Get("benchmark"))
	assert.Equal(t, "Current_Current", seen.Get("vintage"))
	assert.Equal(t, "json", seen.Get("format"))
	assert.Equal(t, "54,56,58", seen.Get("layers"))
}

func TestCensusGeocode_NoMatches(t *testing.T) {
	srv := newCensusServer(t, `{"result": {"addressMatches": []}}`, nil)

	match, err := newTestCensus(srv).Geocode(context.Background(), "nowhere")
	assert.Nil(t, match)
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.True(t, IsNotFound(err))
}

func TestCensusGeocode_MissingState(t *testing.T) {
	srv := newCensusServer(t, `{"result": {"addressMatches": [{"addressComponents": {}, "geographies": {}}]}}`, nil)

	_, err := newTestCensus(srv).Geocode(context.Background(), "somewhere")
	assert.ErrorIs(t, err, ErrStateUnknown)
}

func TestCensusGeocode_FallbackKeysAndMissingLayers(t *testing.T) {
	body := `{"result": {"addressMatches": [{
	  "addressComponents": {"state": "ne"},
	  "geographies": {
	    "State Senate Districts": [{"BASENAME": 11, "NAME": "Legislative District 11"}]
	  }
	}]}}`
	srv := newCensusServer(t, body, nil)

	match, err := newTestCensus(srv).Geocode(context.Background(), "Lincoln NE")
	require.NoError(t, err)

	assert.Equal(t, "NE", match.State)
	require.NotNil(t, match.Districts.StateUpper.District)
	assert.Equal(t, "11", *match.Districts.StateUpper.District)
	assert.Nil(t, match.Districts.StateLower.District)
	assert.Nil(t, match.Districts.Federal.District)
	assert.Nil(t, match.Districts.Federal.Label)
}

func TestCensusGeocode_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestCensus(srv).Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestFindLayerKey(t *testing.T) {
	keys := []string{"2024 State Legislative Districts - Lower", "2024 State Legislative Districts - Upper"}

	key, ok := findLayerKey(keys, []string{"state", "UPPER"})
	assert.True(t, ok)
	assert.Equal(t, "2024 State Legislative Districts - Upper", key)

	_, ok = findLayerKey(keys, []string{"Congress"})
	assert.False(t, ok)
}
