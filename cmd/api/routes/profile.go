package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/container"
	"github.com/promptmyrep/civic/cmd/api/handlers"
	"github.com/promptmyrep/civic/cmd/api/middleware"
)

// RegisterProfileRoutes registers profile routes
func RegisterProfileRoutes(e *echo.Echo, c *container.Container) {
	log := c.Components.Logger
	h := handlers.NewProfileHandler(c.ProfileService, log)

	profile := e.Group("/api/v1/profile", middleware.RequireUser(c.Authenticator, log, nil))
	{
		profile.GET("", h.Get)     // GET /api/v1/profile
		profile.PUT("", h.Replace) // PUT /api/v1/profile
		profile.PATCH("", h.Patch) // PATCH /api/v1/profile (merge patch)
	}
}
