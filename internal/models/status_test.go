package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"ingles":                "ingles",
		"Idioma.ingles":         "ingles",
		"a.b.c":                 "c",
		"  Idioma.frances  ":    "frances",
		"EstadoMatricula.":      "",
		"  espaciado  ":         "espaciado",
		"Nivel.intermedio.alto": "alto",
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeToken(raw), "input %q", raw)
	}
}

func TestParseEnrollmentStatus(t *testing.T) {
	assert.Equal(t, StatusRegistered, ParseEnrollmentStatus("EstadoMatricula.Registered"))
	assert.Equal(t, StatusPreEnrolled, ParseEnrollmentStatus("pre-enrolled"))
	assert.False(t, ParseEnrollmentStatus("unknown").Valid())
}

func TestDisplayStatusHomologizesExemptionRegistered(t *testing.T) {
	record := EnrollmentRecord{Kind: KindExemption, RawStatus: StatusRegistered}
	assert.Equal(t, StatusPreEnrolled, record.DisplayStatus())

	// Idempotent: deriving twice never changes the answer.
	view := record.View()
	assert.Equal(t, StatusPreEnrolled, view.DisplayStatus)
	assert.Equal(t, StatusRegistered, view.RawStatus)
}

func TestDisplayStatusEveryOtherCombinationIsRaw(t *testing.T) {
	statuses := []EnrollmentStatus{StatusRegistered, StatusPreEnrolled, StatusConfirmed, StatusRejected, StatusCancelled}
	for _, kind := range []EnrollmentKind{KindPayment, KindExemption} {
		for _, status := range statuses {
			if kind == KindExemption && status == StatusRegistered {
				continue
			}
			record := EnrollmentRecord{Kind: kind, RawStatus: status}
			assert.Equal(t, status, record.DisplayStatus(), "kind=%s status=%s", kind, status)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusConfirmed.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusRegistered.Terminal())
	assert.False(t, StatusPreEnrolled.Terminal())
}

func TestMarkWeights(t *testing.T) {
	assert.Equal(t, 1.0, MarkPresent.Weight())
	assert.Equal(t, 1.0, MarkExcused.Weight())
	assert.Equal(t, 0.5, MarkLate.Weight())
	assert.Equal(t, 0.0, MarkAbsent.Weight())
}
