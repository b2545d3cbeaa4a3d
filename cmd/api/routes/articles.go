package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/promptmyrep/civic/cmd/api/container"
	"github.com/promptmyrep/civic/cmd/api/handlers"
	"github.com/promptmyrep/civic/cmd/api/middleware"
)

// extensionCORS lets the browser extension post with the user's cookies.
// Any origin is echoed back since credentials rule out a wildcard.
func extensionCORS() echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return true, nil
		},
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	})
}

// RegisterArticleRoutes registers article routes, including the extension endpoints
func RegisterArticleRoutes(e *echo.Echo, c *container.Container) {
	log := c.Components.Logger
	h := handlers.NewArticleHandler(c.ArticleService, log)

	// Extension endpoints: CORS runs before auth so preflights never need a session
	cors := extensionCORS()
	saveArticle := middleware.RequireUser(c.Authenticator, log, handlers.ExtensionUnauthorizedBody)
	for _, path := range []string{"/api/save-article", "/api/api-article"} {
		e.POST(path, h.Save, cors, saveArticle) // POST /api/save-article {"title", "url", "content"}
		e.OPTIONS(path, noContent, cors)
	}

	articles := e.Group("/api/v1/articles", middleware.RequireUser(c.Authenticator, log, nil))
	{
		articles.GET("", h.List)    // GET /api/v1/articles?limit=20
		articles.GET("/:id", h.Get) // GET /api/v1/articles/:id
	}
}

func noContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
