package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	"github.com/noah-isme/idiomas-adm-api/internal/service"
)

type matrixProviderStub struct {
	matrix *models.CycleMatrix
}

func (s *matrixProviderStub) Matrix(ctx context.Context, cycleID string) (*models.CycleMatrix, error) {
	return s.matrix, nil
}

func newAttendanceHandler(matrix *models.CycleMatrix) *AttendanceHandler {
	return NewAttendanceHandler(service.NewAttendanceService(&matrixProviderStub{matrix: matrix}, nil))
}

func TestAttendanceHandlerStudentInvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAttendanceHandler(&models.CycleMatrix{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance?date=12-03-2026", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "cycle-1"}, {Key: "enrollmentId", Value: "enr-1"}}

	handler.Student(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerStudentReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessionDate := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	matrix := &models.CycleMatrix{
		Sessions: []models.SessionRecord{{ID: "s-1", CycleID: "cycle-1", Date: sessionDate}},
		Marks:    []models.AttendanceMark{{SessionID: "s-1", EnrollmentID: "enr-1", State: models.MarkPresent}},
	}
	handler := newAttendanceHandler(matrix)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance?date=2026-03-02", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "cycle-1"}, {Key: "enrollmentId", Value: "enr-1"}}

	handler.Student(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"percentage":100`)
}

func TestAttendanceHandlerCycleRequiresEnrollmentIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAttendanceHandler(&models.CycleMatrix{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "cycle-1"}}

	handler.Cycle(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
