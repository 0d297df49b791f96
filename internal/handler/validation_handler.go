package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/idiomas-adm-api/internal/service"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
	"github.com/noah-isme/idiomas-adm-api/pkg/response"
)

// ValidationHandler exposes pending-validation counters.
type ValidationHandler struct {
	pending *service.PendingService
	cycles  *service.CycleService
}

// NewValidationHandler constructs handler.
func NewValidationHandler(pending *service.PendingService, cycles *service.CycleService) *ValidationHandler {
	return &ValidationHandler{pending: pending, cycles: cycles}
}

// PendingCount godoc
// @Summary Count enrollments awaiting validation in one cycle
// @Tags Validation
// @Produce json
// @Param id path string true "Cycle ID"
// @Param refresh query bool false "Force a rescan"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id}/pending-count [get]
func (h *ValidationHandler) PendingCount(c *gin.Context) {
	refresh := c.Query("refresh") == "true"
	count, err := h.pending.Count(c.Request.Context(), c.Param("id"), refresh)
	if err != nil {
		if count != nil && count.Partial {
			// An interrupted scan still carries the records counted so far;
			// return them alongside the failure instead of discarding them.
			response.JSON(c, appErrors.FromError(err).Status, count, nil, map[string]interface{}{
				"partial": true,
				"error":   err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count, nil)
}

// PendingCounts godoc
// @Summary Count pending validations across cycles
// @Tags Validation
// @Produce json
// @Param cycleIds query string false "Comma-separated cycle ids; defaults to every active cycle"
// @Param refresh query bool false "Force a rescan"
// @Success 200 {object} response.Envelope
// @Router /validation/pending-counts [get]
func (h *ValidationHandler) PendingCounts(c *gin.Context) {
	var cycleIDs []string
	if raw := c.Query("cycleIds"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				cycleIDs = append(cycleIDs, trimmed)
			}
		}
	} else {
		ids, err := h.cycles.ActiveIDs(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		cycleIDs = ids
	}

	refresh := c.Query("refresh") == "true"
	counts, err := h.pending.CountMany(c.Request.Context(), cycleIDs, refresh)
	if err != nil {
		// Interrupted cycles come back tagged partial; surface them with
		// the failure rather than hiding the whole fleet behind a 502.
		response.JSON(c, http.StatusOK, counts, nil, map[string]interface{}{
			"partial": true,
			"error":   err.Error(),
		})
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}
