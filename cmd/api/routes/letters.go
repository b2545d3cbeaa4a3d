package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/container"
	"github.com/promptmyrep/civic/cmd/api/handlers"
	"github.com/promptmyrep/civic/cmd/api/middleware"
	commonmw "github.com/promptmyrep/civic/common/middleware"
	"github.com/promptmyrep/civic/common/ratelimit"
)

// RegisterLetterRoutes registers letter history and generation routes
func RegisterLetterRoutes(e *echo.Echo, c *container.Container) {
	log := c.Components.Logger
	requireUser := middleware.RequireUser(c.Authenticator, log, nil)

	gen := handlers.NewGenerateHandler(c.GenerationService, log)
	e.POST("/api/generate", gen.Generate,
		requireUser,
		commonmw.UserRateLimitMiddleware(c.Limiter, ratelimit.ActionGenerate, middleware.UserID),
	) // POST /api/generate

	h := handlers.NewLetterHandler(c.LetterService, log)
	letters := e.Group("/api/v1/letters", requireUser)
	{
		letters.POST("", h.Create) // POST /api/v1/letters
		letters.GET("", h.History) // GET /api/v1/letters?limit=20
	}
}
