package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/middleware"
	"github.com/promptmyrep/civic/cmd/api/repository"
	"github.com/promptmyrep/civic/cmd/api/service"
	"github.com/promptmyrep/civic/common/logger"
)

// ExtensionUnauthorizedBody is returned to the browser extension without a session
var ExtensionUnauthorizedBody = map[string]interface{}{
	"success": false,
	"error":   "Unauthorized: Please log in first.",
}

// ArticleHandler handles saved articles
type ArticleHandler struct {
	articles ArticleManager
	log      *logger.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articles ArticleManager, log *logger.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, log: log}
}

// Save stores an article clipped by the browser extension
// POST /api/save-article
func (h *ArticleHandler) Save(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, ExtensionUnauthorizedBody)
	}

	var req struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
	}

	ctx := c.Request().Context()
	article, err := h.articles.Save(ctx, user.ID, req.Title, req.URL, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArticle) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
		}
		logger.FromContext(ctx, h.log).Error("failed to save article", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    []interface{}{article},
	})
}

// List returns the caller's saved articles
// GET /api/v1/articles?limit=20
func (h *ArticleHandler) List(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx := c.Request().Context()
	articles, err := h.articles.List(ctx, user.ID, limit)
	if err != nil {
		logger.FromContext(ctx, h.log).Error("failed to list articles", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to list articles",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"articles": nonNil(articles),
		"count":    len(articles),
	})
}

// Get returns one of the caller's articles
// GET /api/v1/articles/:id
func (h *ArticleHandler) Get(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid article id",
		})
	}

	ctx := c.Request().Context()
	article, err := h.articles.Get(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "article not found",
			})
		}
		logger.FromContext(ctx, h.log).Error("failed to get article", "error", err, "article_id", id)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to get article",
		})
	}

	return c.JSON(http.StatusOK, article)
}
