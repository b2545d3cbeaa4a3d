package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/middleware"
	"github.com/promptmyrep/civic/cmd/api/models"
	"github.com/promptmyrep/civic/cmd/api/service"
	"github.com/promptmyrep/civic/common/logger"
)

const maxPatchBytes = 64 << 10

// ProfileHandler handles the caller's profile
type ProfileHandler struct {
	profiles ProfileManager
	log      *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles ProfileManager, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

// Get returns the caller's profile
// GET /api/v1/profile
func (h *ProfileHandler) Get(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	ctx := c.Request().Context()
	profile, err := h.profiles.Get(ctx, user.ID)
	if err != nil {
		logger.FromContext(ctx, h.log).Error("failed to get profile", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to get profile",
		})
	}

	return c.JSON(http.StatusOK, profile)
}

// Replace stores the full profile
// PUT /api/v1/profile
func (h *ProfileHandler) Replace(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	var req models.Profile
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	profile, err := h.profiles.Replace(ctx, user.ID, &req)
	if err != nil {
		logger.FromContext(ctx, h.log).Error("failed to save profile", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to save profile",
		})
	}

	return c.JSON(http.StatusOK, profile)
}

// Patch applies a JSON merge patch to the profile
// PATCH /api/v1/profile
func (h *ProfileHandler) Patch(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPatchBytes))
	if err != nil || len(body) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "merge patch body is required",
		})
	}

	ctx := c.Request().Context()
	profile, err := h.profiles.Patch(ctx, user.ID, body)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProfile) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": err.Error(),
			})
		}
		logger.FromContext(ctx, h.log).Error("failed to patch profile", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to patch profile",
		})
	}

	return c.JSON(http.StatusOK, profile)
}
