package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/generation"
	"github.com/promptmyrep/civic/common/logger"
)

// GenerateHandler drafts letters and phone scripts
type GenerateHandler struct {
	generator LetterGenerator
	log       *logger.Logger
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(generator LetterGenerator, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{generator: generator, log: log}
}

// Generate drafts or refines a letter
// POST /api/generate
func (h *GenerateHandler) Generate(c echo.Context) error {
	var req generation.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
	}

	ctx := c.Request().Context()
	letter, err := h.generator.Generate(ctx, &req)
	switch {
	case errors.Is(err, generation.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, generation.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	case err != nil:
		logger.FromContext(ctx, h.log).Error("letter generation failed", "error", err, "mode", req.Mode)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"letter":  letter,
	})
}
