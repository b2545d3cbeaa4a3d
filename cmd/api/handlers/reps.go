package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/promptmyrep/civic/cmd/api/directory"
	"github.com/promptmyrep/civic/cmd/api/middleware"
	"github.com/promptmyrep/civic/cmd/api/service"
	"github.com/promptmyrep/civic/common/logger"
)

// Messages returned to clients when an address cannot be placed
const (
	msgAddressNotFound = "Address not found in Census database."
	msgStateUnknown    = "Could not determine state."
)

// RepsHandler handles representative lookup and listing
type RepsHandler struct {
	lookup RepLookup
	reps   RepLister
	log    *logger.Logger
}

// NewRepsHandler creates a new representatives handler
func NewRepsHandler(lookup RepLookup, reps RepLister, log *logger.Logger) *RepsHandler {
	return &RepsHandler{
		lookup: lookup,
		reps:   reps,
		log:    log,
	}
}

// Lookup resolves the caller's representatives from an address and saves them
// POST /api/reps/lookup
func (h *RepsHandler) Lookup(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	var req struct {
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Address is required",
		})
	}

	ctx := c.Request().Context()
	summary, err := h.lookup.Lookup(ctx, user.ID, address)
	switch {
	case errors.Is(err, directory.ErrAddressNotFound):
		return c.JSON(http.StatusOK, notFound(msgAddressNotFound))
	case errors.Is(err, directory.ErrStateUnknown):
		return c.JSON(http.StatusOK, notFound(msgStateUnknown))
	case err != nil:
		logger.FromContext(ctx, h.log).Error("representative lookup failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, summary)
}

// List returns the caller's saved representatives
// GET /api/v1/reps?filter=rep.level == "federal"
func (h *RepsHandler) List(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, middleware.UnauthorizedBody)
	}

	ctx := c.Request().Context()
	linked, err := h.reps.List(ctx, user.ID, c.QueryParam("filter"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilter) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": err.Error(),
			})
		}
		logger.FromContext(ctx, h.log).Error("failed to list representatives", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to list representatives",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"representatives": nonNil(linked),
		"count":           len(linked),
	})
}

func notFound(message string) map[string]interface{} {
	return map[string]interface{}{
		"found": false,
		"error": message,
	}
}

// nonNil renders empty results as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
