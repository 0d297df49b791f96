package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

func day(n int) time.Time {
	return time.Date(2026, time.March, n, 10, 0, 0, 0, time.UTC)
}

func sessionsOn(days ...int) []models.SessionRecord {
	sessions := make([]models.SessionRecord, len(days))
	for i, d := range days {
		sessions[i] = models.SessionRecord{ID: string(rune('a' + i)), CycleID: "cycle-1", Date: day(d)}
	}
	return sessions
}

func TestPercentageWeightsAndRounding(t *testing.T) {
	sessions := sessionsOn(1, 2, 3, 4)
	marks := map[string]models.MarkState{
		"a": models.MarkPresent,
		"b": models.MarkPresent,
		"c": models.MarkLate,
		"d": models.MarkLate,
	}
	pct, eligible := Percentage(sessions, marks, day(30))
	assert.Equal(t, 75, pct)
	assert.Equal(t, 4, eligible)
}

func TestPercentageRoundsHalfAwayFromZero(t *testing.T) {
	sessions := sessionsOn(1, 2, 3, 4)
	marks := map[string]models.MarkState{
		"a": models.MarkPresent,
		"b": models.MarkPresent,
		"c": models.MarkLate,
		"d": models.MarkAbsent,
	}
	// 2.5 of 4 = 62.5, rounds to 63.
	pct, _ := Percentage(sessions, marks, day(30))
	assert.Equal(t, 63, pct)
}

func TestPercentageExcusedCountsAsFullCredit(t *testing.T) {
	sessions := sessionsOn(1, 2)
	marks := map[string]models.MarkState{
		"a": models.MarkExcused,
		"b": models.MarkPresent,
	}
	pct, _ := Percentage(sessions, marks, day(30))
	assert.Equal(t, 100, pct)
}

func TestPercentageMissingMarkStaysInDenominator(t *testing.T) {
	sessions := sessionsOn(1, 2)
	marks := map[string]models.MarkState{"a": models.MarkPresent}
	pct, eligible := Percentage(sessions, marks, day(30))
	assert.Equal(t, 50, pct)
	assert.Equal(t, 2, eligible)
}

func TestPercentageIgnoresFutureSessions(t *testing.T) {
	sessions := sessionsOn(1, 2, 20, 21)
	marks := map[string]models.MarkState{
		"a": models.MarkPresent,
		"b": models.MarkPresent,
		// Marks on future sessions must not leak into the figure.
		"c": models.MarkAbsent,
		"d": models.MarkAbsent,
	}
	pct, eligible := Percentage(sessions, marks, day(10))
	assert.Equal(t, 100, pct)
	assert.Equal(t, 2, eligible)
}

func TestPercentageNoEligibleSessions(t *testing.T) {
	pct, eligible := Percentage(nil, nil, day(10))
	assert.Equal(t, 0, pct)
	assert.Equal(t, 0, eligible)

	pct, eligible = Percentage(sessionsOn(20, 21), nil, day(10))
	assert.Equal(t, 0, pct)
	assert.Equal(t, 0, eligible)
}

type fakeMatrixProvider struct {
	matrix *models.CycleMatrix
	err    error
}

func (f *fakeMatrixProvider) Matrix(ctx context.Context, cycleID string) (*models.CycleMatrix, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matrix, nil
}

func TestStudentAttendanceUnknownCycle(t *testing.T) {
	svc := NewAttendanceService(&fakeMatrixProvider{err: sql.ErrNoRows}, nil)
	_, err := svc.StudentAttendance(context.Background(), "cycle-x", "enr-1", time.Time{})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentAttendanceReport(t *testing.T) {
	matrix := &models.CycleMatrix{
		Sessions: sessionsOn(1, 2),
		Marks: []models.AttendanceMark{
			{SessionID: "a", EnrollmentID: "enr-1", State: models.MarkPresent},
			{SessionID: "b", EnrollmentID: "enr-1", State: models.MarkAbsent},
			{SessionID: "a", EnrollmentID: "enr-2", State: models.MarkAbsent},
		},
	}
	svc := NewAttendanceService(&fakeMatrixProvider{matrix: matrix}, nil)

	report, err := svc.StudentAttendance(context.Background(), "cycle-1", "enr-1", day(30))
	require.NoError(t, err)
	assert.Equal(t, 50, report.Percentage)
	assert.Equal(t, 2, report.EligibleSessions)
}

func TestCycleAttendanceSharesOneMatrixLoad(t *testing.T) {
	matrix := &models.CycleMatrix{
		Sessions: sessionsOn(1, 2),
		Marks: []models.AttendanceMark{
			{SessionID: "a", EnrollmentID: "enr-1", State: models.MarkPresent},
			{SessionID: "b", EnrollmentID: "enr-1", State: models.MarkPresent},
		},
	}
	svc := NewAttendanceService(&fakeMatrixProvider{matrix: matrix}, nil)

	reports, err := svc.CycleAttendance(context.Background(), "cycle-1", []string{"enr-1", "enr-2"}, day(30))
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 100, reports["enr-1"].Percentage)
	assert.Equal(t, 0, reports["enr-2"].Percentage)
	assert.Equal(t, 2, reports["enr-2"].EligibleSessions)
}
