package models

import "time"

// Component caps. Each component is clamped independently before any
// aggregate is computed; both subtotals land in [0,100] by construction.
const (
	MaxMidtermExam       = 80.0
	MaxMidtermContinuous = 20.0
	MaxFinalExam         = 60.0
	MaxFinalContinuous   = 20.0
	MaxFinalProject      = 20.0
)

// GradeComponents holds the raw component scores of one enrollment. Nil
// means not yet graded; a graded zero and an ungraded component aggregate
// identically but remain distinguishable here.
type GradeComponents struct {
	EnrollmentID      string     `db:"enrollment_id" json:"enrollment_id"`
	CycleID           string     `db:"cycle_id" json:"cycle_id"`
	MidtermExam       *float64   `db:"midterm_exam" json:"midterm_exam,omitempty"`
	MidtermContinuous *float64   `db:"midterm_continuous" json:"midterm_continuous,omitempty"`
	FinalExam         *float64   `db:"final_exam" json:"final_exam,omitempty"`
	FinalContinuous   *float64   `db:"final_continuous" json:"final_continuous,omitempty"`
	FinalProject      *float64   `db:"final_project" json:"final_project,omitempty"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Graded reports whether at least one component has been recorded.
func (g GradeComponents) Graded() bool {
	return g.MidtermExam != nil || g.MidtermContinuous != nil ||
		g.FinalExam != nil || g.FinalContinuous != nil || g.FinalProject != nil
}

// GradeSummary carries the derived subtotals and final average.
type GradeSummary struct {
	EnrollmentID    string  `json:"enrollment_id"`
	MidtermSubtotal float64 `json:"midterm_subtotal"`
	FinalSubtotal   float64 `json:"final_subtotal"`
	Average         float64 `json:"average"`
	Graded          bool    `json:"graded"`
}
