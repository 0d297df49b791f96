package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
)

// MatrixRepository loads a cycle's session calendar and attendance marks.
type MatrixRepository struct {
	db *sqlx.DB
}

// NewMatrixRepository constructs the repository.
func NewMatrixRepository(db *sqlx.DB) *MatrixRepository {
	return &MatrixRepository{db: db}
}

// Matrix returns the full session calendar and every recorded mark for the
// cycle. A missing cycle yields sql.ErrNoRows.
func (r *MatrixRepository) Matrix(ctx context.Context, cycleID string) (*models.CycleMatrix, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM cycles WHERE id = $1", cycleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("check cycle: %w", err)
	}

	matrix := &models.CycleMatrix{}
	const sessionQuery = `SELECT id, cycle_id, session_date FROM sessions WHERE cycle_id = $1 ORDER BY session_date ASC, id ASC`
	if err := r.db.SelectContext(ctx, &matrix.Sessions, sessionQuery, cycleID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	const markQuery = `SELECT m.session_id, m.enrollment_id, m.state
        FROM attendance_marks m
        JOIN sessions s ON s.id = m.session_id
        WHERE s.cycle_id = $1`
	if err := r.db.SelectContext(ctx, &matrix.Marks, markQuery, cycleID); err != nil {
		return nil, fmt.Errorf("list attendance marks: %w", err)
	}
	return matrix, nil
}

// RecordMark upserts one attendance outcome.
func (r *MatrixRepository) RecordMark(ctx context.Context, mark models.AttendanceMark) error {
	const query = `INSERT INTO attendance_marks (session_id, enrollment_id, state)
        VALUES ($1, $2, $3)
        ON CONFLICT (session_id, enrollment_id) DO UPDATE SET state = EXCLUDED.state`
	if _, err := r.db.ExecContext(ctx, query, mark.SessionID, mark.EnrollmentID, mark.State); err != nil {
		return fmt.Errorf("record attendance mark: %w", err)
	}
	return nil
}
