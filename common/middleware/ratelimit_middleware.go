package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/common/ratelimit"
)

// UserIDFunc extracts the authenticated user id from the request context
type UserIDFunc func(c echo.Context) string

// UserRateLimitMiddleware checks per-user limits for action.
// A nil limiter disables the check (Redis not configured).
func UserRateLimitMiddleware(limiter ratelimit.Limiter, action ratelimit.Action, userID UserIDFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}

			id := userID(c)
			if id == "" {
				// No user, let the handler decide how to reject
				return next(c)
			}

			result, err := limiter.CheckUserLimit(c.Request().Context(), id, action)
			if err != nil {
				// On error, allow request (fail open for availability)
				return next(c)
			}

			if !result.Allowed {
				c.Response().Header().Set("Retry-After", strconv.FormatInt(result.RetryAfterSeconds, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "user_rate_limit_exceeded",
					"message": "You have exceeded your request quota. Please wait before trying again.",
					"details": map[string]interface{}{
						"action":              action,
						"limit":               result.Limit,
						"current_count":       result.CurrentCount,
						"retry_after_seconds": result.RetryAfterSeconds,
					},
				})
			}

			return next(c)
		}
	}
}
