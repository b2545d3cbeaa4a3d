package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/auth"
	"github.com/promptmyrep/civic/common/logger"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserKey is the context key for storing the authenticated user
	UserKey ContextKey = "user"
)

// UnauthorizedBody is the default response for requests without a session
var UnauthorizedBody = map[string]interface{}{"error": "Unauthorized"}

// RequireUser is a middleware that resolves the session user and stores it
// in the echo context. Requests without a valid session get a 401 with body.
//
// It also places a logger carrying user_id and request_id on the request context.
//
// Accessing in handlers:
//
//	user := middleware.GetUser(c)
func RequireUser(authn auth.Authenticator, log *logger.Logger, body interface{}) echo.MiddlewareFunc {
	if body == nil {
		body = UnauthorizedBody
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			user, err := authn.CurrentUser(req.Context(), req)
			if err != nil {
				if !errors.Is(err, auth.ErrUnauthorized) {
					log.Warn("session verification failed", "error", err, "path", c.Path())
				}
				return c.JSON(http.StatusUnauthorized, body)
			}

			c.Set(string(UserKey), user)

			scoped := log.WithUserID(user.ID.String())
			if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
				scoped = scoped.WithRequestID(rid)
			}
			c.SetRequest(req.WithContext(logger.IntoContext(req.Context(), scoped)))

			return next(c)
		}
	}
}

// GetUser retrieves the user from the echo context
// Returns nil if not set
func GetUser(c echo.Context) *auth.User {
	user, _ := c.Get(string(UserKey)).(*auth.User)
	return user
}

// UserID returns the session user id, or empty string when absent
func UserID(c echo.Context) string {
	if user := GetUser(c); user != nil {
		return user.ID.String()
	}
	return ""
}
