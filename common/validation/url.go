package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLValidator checks that a URL is an absolute http(s) link.
// Saved links are rendered back to users, so script and data URLs are refused.
type URLValidator struct {
	allowedProtocols map[string]bool
	blockedHostnames map[string]bool
}

// NewURLValidator creates a validator that accepts http and https URLs
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedProtocols: map[string]bool{
			"http":  true,
			"https": true,
		},
		blockedHostnames: map[string]bool{},
	}
}

// NewPublicURLValidator also refuses loopback hosts
func NewPublicURLValidator() *URLValidator {
	v := NewURLValidator()
	for _, host := range []string{"localhost", "127.0.0.1", "::1", "0.0.0.0", "::"} {
		v.blockedHostnames[host] = true
	}
	return v
}

// Validate parses raw and checks its scheme and host
func (v *URLValidator) Validate(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		return fmt.Errorf("protocol scheme is required")
	}
	if !v.allowedProtocols[scheme] {
		return fmt.Errorf("protocol '%s' is not allowed (only http/https permitted)", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("hostname is required")
	}
	if v.blockedHostnames[host] {
		return fmt.Errorf("hostname '%s' is blocked", host)
	}

	return nil
}
