package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
)

// GradeRepository persists per-enrollment grade components.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindByEnrollment returns the stored components for an enrollment.
func (r *GradeRepository) FindByEnrollment(ctx context.Context, enrollmentID string) (*models.GradeComponents, error) {
	const query = `SELECT enrollment_id, cycle_id, midterm_exam, midterm_continuous, final_exam, final_continuous, final_project, updated_at
        FROM grade_components WHERE enrollment_id = $1`
	var components models.GradeComponents
	if err := r.db.GetContext(ctx, &components, query, enrollmentID); err != nil {
		return nil, err
	}
	return &components, nil
}

// Upsert stores the components, replacing any existing row.
func (r *GradeRepository) Upsert(ctx context.Context, components *models.GradeComponents) error {
	components.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO grade_components (enrollment_id, cycle_id, midterm_exam, midterm_continuous, final_exam, final_continuous, final_project, updated_at)
        VALUES (:enrollment_id, :cycle_id, :midterm_exam, :midterm_continuous, :final_exam, :final_continuous, :final_project, :updated_at)
        ON CONFLICT (enrollment_id) DO UPDATE SET
            midterm_exam = EXCLUDED.midterm_exam,
            midterm_continuous = EXCLUDED.midterm_continuous,
            final_exam = EXCLUDED.final_exam,
            final_continuous = EXCLUDED.final_continuous,
            final_project = EXCLUDED.final_project,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, components); err != nil {
		return fmt.Errorf("upsert grade components: %w", err)
	}
	return nil
}
