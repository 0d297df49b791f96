package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	"github.com/noah-isme/idiomas-adm-api/internal/service"
)

// pendingListerStub serves one full page of awaiting records, then fails.
type pendingListerStub struct {
	calls int
}

func (s *pendingListerStub) ListByCycle(ctx context.Context, cycleID string, offset, limit int, status models.EnrollmentStatus) ([]models.EnrollmentRecord, error) {
	s.calls++
	if s.calls > 1 {
		return nil, errors.New("connection reset")
	}
	batch := make([]models.EnrollmentRecord, limit)
	for i := range batch {
		batch[i] = models.EnrollmentRecord{Kind: models.KindPayment, RawStatus: models.StatusPreEnrolled}
	}
	return batch, nil
}

func TestPendingCountInterruptedScanKeepsPartialCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pending := service.NewPendingService(&pendingListerStub{}, nil, nil, nil, service.PendingServiceConfig{BatchSize: 2})
	handler := NewValidationHandler(pending, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/pending-count", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "cycle-1"}}

	handler.PendingCount(c)
	require.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `"count":2`)
	require.Contains(t, body, `"partial":true`)
	require.Contains(t, body, "pending scan interrupted")
}
