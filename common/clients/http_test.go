package clients

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/promptmyrep/civic/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"name":"Ada"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), logger.Discard())

	var out struct {
		Name string `json:"name"`
	}
	err := c.GetJSON(context.Background(), srv.URL, "test", http.Header{"X-API-KEY": {"secret"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Ada", out.Name)
}

func TestGetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(nil, logger.Discard())

	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL+"?api_key=secret", "members", nil, &out)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.NotContains(t, err.Error(), "secret")
}

func TestGetJSON_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), logger.Discard())

	var out map[string]any
	assert.Error(t, c.GetJSON(context.Background(), srv.URL, "x", nil, &out))
}

func TestGetJSON_TransportErrorIsRedacted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	c := NewHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}, logger.NewWithWriter(&logs, "debug", "json"))

	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL+"/v3/member/NC?api_key=SECRET123&format=json", srv.URL+"/v3/member/NC", nil, &out)
	require.Error(t, err)

	assert.NotContains(t, err.Error(), "SECRET123")
	assert.Contains(t, err.Error(), "/v3/member/NC")
	assert.NotContains(t, logs.String(), "SECRET123")
	assert.Contains(t, logs.String(), "http request failed")
}
