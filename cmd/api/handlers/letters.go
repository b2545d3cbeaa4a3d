package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/middleware"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/service"
	"github.com/promptmyrep/civic/common/logger"
)

// LetterHandler handles the caller's letter history
type LetterHandler struct {
	letters LetterManager
	log     *logger.Logger
}

// NewLetterHandler creates a new letter handler
func NewLetterHandler(letters LetterManager, log *logger.Logger) *LetterHandler {
	return &LetterHandler{letters: letters, log: log}
}

// Create saves a letter to the caller's history
// POST /api/v1/letters
func (h *LetterHandler) Create(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	var req struct {
		ArticleID *uuid.UUID          `json:"article_id"`
		Content   string              `json:"content"`
		Status    models.LetterStatus `json:"status"`
		Recipient string              `json:"recipient"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	letter, err := h.letters.Save(ctx, user.ID, &models.Letter{
		ArticleID: req.ArticleID,
		Content:   req.Content,
		Status:    req.Status,
		Recipient: req.Recipient,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidLetter) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "letter content is required and status must be draft or sent",
			})
		}
		logger.FromContext(ctx, h.log).Error("failed to save letter", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to save letter",
		})
	}

	return c.JSON(http.StatusCreated, letter)
}

// History lists the caller's letters, newest first
// GET /api/v1/letters?limit=20
func (h *LetterHandler) History(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx := c.Request().Context()
	letters, err := h.letters.History(ctx, user.ID, limit)
	if err != nil {
		logger.FromContext(ctx, h.log).Error("failed to list letters", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to list letters",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"letters": nonNil(letters),
		"count":   len(letters),
	})
}
