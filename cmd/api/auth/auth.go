// Package auth identifies the user behind a request using tokens issued by
// the hosted auth backend.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/promptmyrep/civic/common/cache"
	"github.com/promptmyrep/civic/common/clients"
)

// ErrUnauthorized is returned when a request carries no valid session
var ErrUnauthorized = errors.New("unauthorized")

const (
	tokenAudience   = "authenticated"
	userCachePrefix = "auth:user:"
)

// Logger interface for auth logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// User is the authenticated caller
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Authenticator resolves the user behind a request
type Authenticator interface {
	CurrentUser(ctx context.Context, r *http.Request) (*User, error)
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Supabase verifies access tokens locally with the project JWT secret when
// one is configured, and otherwise asks the auth server, caching answers.
type Supabase struct {
	http     *clients.HTTPClient
	baseURL  string
	anonKey  string
	secret   []byte
	cache    cache.Cache
	cacheTTL time.Duration
	log      Logger
}

// NewSupabase creates a new Supabase authenticator
func NewSupabase(baseURL, anonKey, jwtSecret string, httpClient *clients.HTTPClient, c cache.Cache, cacheTTL time.Duration, log Logger) *Supabase {
	s := &Supabase{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		anonKey:  anonKey,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
	if jwtSecret != "" {
		s.secret = []byte(jwtSecret)
	}
	return s
}

// CurrentUser returns the user for the request's bearer token or session cookie
func (s *Supabase) CurrentUser(ctx context.Context, r *http.Request) (*User, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, ErrUnauthorized
	}

	if len(s.secret) > 0 {
		return s.verifyLocal(token)
	}
	return s.verifyRemote(ctx, token)
}

func (s *Supabase) verifyLocal(token string) (*User, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil {
		s.log.Debug("failed to parse jwt", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !parsed.Valid || !ok {
		return nil, ErrUnauthorized
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}

	return &User{ID: id, Email: claims.Email}, nil
}

func (s *Supabase) verifyRemote(ctx context.Context, token string) (*User, error) {
	key := userCachePrefix + tokenDigest(token)

	var cached User
	if cache.GetJSON(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	headers := http.Header{}
	headers.Set("apikey", s.anonKey)
	headers.Set("Authorization", "Bearer "+token)

	endpoint := s.baseURL + "/auth/v1/user"
	var resp struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := s.http.GetJSON(ctx, endpoint, endpoint, headers, &resp); err != nil {
		var statusErr *clients.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}

	id, err := uuid.Parse(resp.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrUnauthorized)
	}

	user := &User{ID: id, Email: resp.Email}
	if err := cache.SetJSON(ctx, s.cache, key, user, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache session", "error", err)
	}
	return user, nil
}

// Tokens are never used as cache keys directly
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
