package models

import "time"

// Cycle is a scheduled offering of a course: fixed dates, language, level,
// teacher and capacity.
type Cycle struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Language  string    `db:"language" json:"language"`
	Level     string    `db:"level" json:"level"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CycleFilter scopes cycle listing queries.
type CycleFilter struct {
	Language string
	Active   *bool
	Page     int
	PageSize int
}

// PendingCount is the result of a validation-queue scan for one cycle.
// Partial marks a count interrupted mid-scan; it must never be presented as
// a complete figure.
type PendingCount struct {
	CycleID     string    `json:"cycle_id"`
	Count       int       `json:"count"`
	Partial     bool      `json:"partial"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
