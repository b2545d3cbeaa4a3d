package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/container"
	"github.com/promptmyrep/civic/cmd/api/handlers"
	"github.com/promptmyrep/civic/cmd/api/middleware"
	commonmw "github.com/promptmyrep/civic/common/middleware"
	"github.com/promptmyrep/civic/common/ratelimit"
)

// RegisterRepsRoutes registers representative lookup and listing routes
func RegisterRepsRoutes(e *echo.Echo, c *container.Container) {
	log := c.Components.Logger
	h := handlers.NewRepsHandler(c.LookupService, c.RepresentativeService, log)
	requireUser := middleware.RequireUser(c.Authenticator, log, nil)

	e.POST("/api/reps/lookup", h.Lookup,
		requireUser,
		commonmw.UserRateLimitMiddleware(c.Limiter, ratelimit.ActionLookup, middleware.UserID),
	) // POST /api/reps/lookup {"address": "..."}

	reps := e.Group("/api/v1/reps", requireUser)
	{
		reps.GET("", h.List) // GET /api/v1/reps?filter=rep.level == "federal"
	}
}
