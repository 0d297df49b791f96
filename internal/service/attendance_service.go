package service

import (
	"context"
	"database/sql"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

type matrixProvider interface {
	Matrix(ctx context.Context, cycleID string) (*models.CycleMatrix, error)
}

// AttendanceService computes attendance percentages from a cycle's session
// calendar and per-session marks.
type AttendanceService struct {
	matrices matrixProvider
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(matrices matrixProvider, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{matrices: matrices, logger: logger, now: time.Now}
}

// AttendanceReport is the per-enrollment attendance summary.
type AttendanceReport struct {
	EnrollmentID     string    `json:"enrollment_id"`
	CycleID          string    `json:"cycle_id"`
	Percentage       int       `json:"percentage"`
	EligibleSessions int       `json:"eligible_sessions"`
	ReferenceDate    time.Time `json:"reference_date"`
}

// Percentage computes the attendance percentage for one enrollment over the
// sessions dated on or before referenceDate. Sessions after the reference
// date never enter the denominator; a session without a mark contributes
// zero. Zero eligible sessions yield zero.
func Percentage(sessions []models.SessionRecord, marks map[string]models.MarkState, referenceDate time.Time) (int, int) {
	cutoff := referenceDate
	eligible := 0
	sum := 0.0
	for _, session := range sessions {
		if session.Date.After(cutoff) {
			continue
		}
		eligible++
		if state, ok := marks[session.ID]; ok {
			sum += state.Weight()
		}
	}
	if eligible == 0 {
		return 0, 0
	}
	return int(math.Round(100 * sum / float64(eligible))), eligible
}

// StudentAttendance loads the cycle matrix and computes the enrollment's
// percentage as of referenceDate (today when zero).
func (s *AttendanceService) StudentAttendance(ctx context.Context, cycleID, enrollmentID string, referenceDate time.Time) (*AttendanceReport, error) {
	if cycleID == "" || enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cycle and enrollment ids required")
	}
	if referenceDate.IsZero() {
		referenceDate = endOfDay(s.now())
	}
	matrix, err := s.matrices.Matrix(ctx, cycleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance matrix")
	}
	percentage, eligible := Percentage(matrix.Sessions, matrix.MarksFor(enrollmentID), referenceDate)
	return &AttendanceReport{
		EnrollmentID:     enrollmentID,
		CycleID:          cycleID,
		Percentage:       percentage,
		EligibleSessions: eligible,
		ReferenceDate:    referenceDate,
	}, nil
}

// CycleAttendance computes percentages for every enrollment that has marks
// in the cycle, reusing one matrix load.
func (s *AttendanceService) CycleAttendance(ctx context.Context, cycleID string, enrollmentIDs []string, referenceDate time.Time) (map[string]*AttendanceReport, error) {
	if referenceDate.IsZero() {
		referenceDate = endOfDay(s.now())
	}
	matrix, err := s.matrices.Matrix(ctx, cycleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance matrix")
	}
	reports := make(map[string]*AttendanceReport, len(enrollmentIDs))
	for _, enrollmentID := range enrollmentIDs {
		percentage, eligible := Percentage(matrix.Sessions, matrix.MarksFor(enrollmentID), referenceDate)
		reports[enrollmentID] = &AttendanceReport{
			EnrollmentID:     enrollmentID,
			CycleID:          cycleID,
			Percentage:       percentage,
			EligibleSessions: eligible,
			ReferenceDate:    referenceDate,
		}
	}
	return reports, nil
}

// endOfDay pins the reference instant to the caller's local end of day so a
// session held earlier today still counts as eligible.
func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
}
