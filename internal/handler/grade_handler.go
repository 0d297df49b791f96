package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/idiomas-adm-api/internal/service"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
	"github.com/noah-isme/idiomas-adm-api/pkg/response"
)

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Summary godoc
// @Summary Grade summary for one enrollment
// @Tags Grades
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/grades [get]
func (h *GradeHandler) Summary(c *gin.Context) {
	summary, err := h.grades.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Save godoc
// @Summary Record grade components for one enrollment
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.SaveGradeComponentsRequest true "Component scores"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/grades [put]
func (h *GradeHandler) Save(c *gin.Context) {
	var req service.SaveGradeComponentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.grades.SaveComponents(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
