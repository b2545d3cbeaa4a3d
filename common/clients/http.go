package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"
)

// Logger interface for HTTP client logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// StatusError is returned when the remote answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPClient wraps http.Client with context-aware JSON helpers
type HTTPClient struct {
	client *http.Client
	logger Logger
}

// NewHTTPClient creates a new HTTP client wrapper. A nil client gets a 20s timeout default.
func NewHTTPClient(client *http.Client, logger Logger) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPClient{
		client: client,
		logger: logger,
	}
}

// DoRequest creates and executes an HTTP request with the given headers
func (c *HTTPClient) DoRequest(ctx context.Context, method, url string, body io.Reader, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	return c.client.Do(req)
}

// GetJSON issues a GET and decodes a 2xx JSON body into dst.
// redact names the URL form written to logs so query-string secrets stay out of them.
func (c *HTTPClient) GetJSON(ctx context.Context, url, redact string, headers http.Header, dst any) error {
	start := time.Now()

	resp, err := c.DoRequest(ctx, http.MethodGet, url, nil, headers)
	if err != nil {
		// url.Error prints the full request URL
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redact
		}
		c.logger.Warn("http request failed", "url", redact, "error", err)
		return fmt.Errorf("GET %s: %w", redact, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("http request returned error status", "url", redact, "status", resp.StatusCode)
		return &StatusError{URL: redact, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", redact, err)
	}

	c.logger.Debug("http GET", "url", redact, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
