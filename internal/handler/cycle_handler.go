package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	"github.com/noah-isme/idiomas-adm-api/internal/service"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
	"github.com/noah-isme/idiomas-adm-api/pkg/response"
)

// CycleHandler exposes course-cycle and export endpoints.
type CycleHandler struct {
	cycles  *service.CycleService
	exports *service.ExportService
}

// NewCycleHandler constructs handler.
func NewCycleHandler(cycles *service.CycleService, exports *service.ExportService) *CycleHandler {
	return &CycleHandler{cycles: cycles, exports: exports}
}

// List godoc
// @Summary List course cycles
// @Tags Cycles
// @Produce json
// @Param language query string false "Filter by language"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /cycles [get]
func (h *CycleHandler) List(c *gin.Context) {
	filter := models.CycleFilter{Language: c.Query("language")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	cycles, pagination, err := h.cycles.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycles, pagination)
}

// Get godoc
// @Summary Get one course cycle
// @Tags Cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id} [get]
func (h *CycleHandler) Get(c *gin.Context) {
	cycle, err := h.cycles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// Export godoc
// @Summary Export the validation queue or academic summary of a cycle
// @Tags Cycles
// @Produce octet-stream
// @Param id path string true "Cycle ID"
// @Param report query string true "Report type: validation-queue or academic-summary"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Router /cycles/{id}/export [get]
func (h *CycleHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	var (
		result *service.ExportResult
		err    error
	)
	switch c.Query("report") {
	case "validation-queue":
		result, err = h.exports.ValidationQueue(c.Request.Context(), c.Param("id"), format)
	case "academic-summary":
		result, err = h.exports.AcademicSummary(c.Request.Context(), c.Param("id"), format)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "report must be validation-queue or academic-summary"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
