package models

import "time"

// MarkState is the recorded attendance outcome for one session.
type MarkState string

const (
	MarkPresent MarkState = "present"
	MarkAbsent  MarkState = "absent"
	MarkLate    MarkState = "late"
	MarkExcused MarkState = "excused"
)

// Valid returns true when the mark state is a supported value.
func (m MarkState) Valid() bool {
	switch m {
	case MarkPresent, MarkAbsent, MarkLate, MarkExcused:
		return true
	default:
		return false
	}
}

// Weight returns the attendance credit for the mark state. A missing mark
// contributes zero and is handled by the caller.
func (m MarkState) Weight() float64 {
	switch m {
	case MarkPresent, MarkExcused:
		return 1.0
	case MarkLate:
		return 0.5
	default:
		return 0.0
	}
}

// SessionRecord is one scheduled class meeting of a cycle. The session
// calendar is immutable once generated.
type SessionRecord struct {
	ID      string    `db:"id" json:"id"`
	CycleID string    `db:"cycle_id" json:"cycle_id"`
	Date    time.Time `db:"session_date" json:"date"`
}

// AttendanceMark records one (session, enrollment) attendance outcome.
type AttendanceMark struct {
	SessionID    string    `db:"session_id" json:"session_id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	State        MarkState `db:"state" json:"state"`
}

// CycleMatrix bundles the full session calendar of a cycle with every
// attendance mark recorded against it.
type CycleMatrix struct {
	Sessions []SessionRecord  `json:"sessions"`
	Marks    []AttendanceMark `json:"marks"`
}

// MarksFor extracts the per-session marks of a single enrollment.
func (m CycleMatrix) MarksFor(enrollmentID string) map[string]MarkState {
	out := make(map[string]MarkState)
	for _, mark := range m.Marks {
		if mark.EnrollmentID == enrollmentID {
			out[mark.SessionID] = mark.State
		}
	}
	return out
}
