package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/idiomas-adm-api/internal/service"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
	"github.com/noah-isme/idiomas-adm-api/pkg/response"
)

// AttendanceHandler exposes attendance-percentage endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

func parseReferenceDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	// Include the whole reference day.
	return date.Add(24*time.Hour - time.Second), nil
}

// Student godoc
// @Summary Attendance percentage for one enrollment
// @Tags Attendance
// @Produce json
// @Param id path string true "Cycle ID"
// @Param enrollmentId path string true "Enrollment ID"
// @Param date query string false "Reference date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id}/enrollments/{enrollmentId}/attendance [get]
func (h *AttendanceHandler) Student(c *gin.Context) {
	referenceDate, err := parseReferenceDate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.attendance.StudentAttendance(c.Request.Context(), c.Param("id"), c.Param("enrollmentId"), referenceDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Cycle godoc
// @Summary Attendance percentages for several enrollments of a cycle
// @Tags Attendance
// @Produce json
// @Param id path string true "Cycle ID"
// @Param enrollmentIds query string true "Comma-separated enrollment ids"
// @Param date query string false "Reference date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id}/attendance [get]
func (h *AttendanceHandler) Cycle(c *gin.Context) {
	referenceDate, err := parseReferenceDate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var enrollmentIDs []string
	for _, id := range strings.Split(c.Query("enrollmentIds"), ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			enrollmentIDs = append(enrollmentIDs, trimmed)
		}
	}
	if len(enrollmentIDs) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "enrollmentIds required"))
		return
	}
	reports, err := h.attendance.CycleAttendance(c.Request.Context(), c.Param("id"), enrollmentIDs, referenceDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}
