package service

import (
	"context"
	"database/sql"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

type gradeRepo interface {
	FindByEnrollment(ctx context.Context, enrollmentID string) (*models.GradeComponents, error)
	Upsert(ctx context.Context, components *models.GradeComponents) error
}

type enrollmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.EnrollmentRecord, error)
}

// SaveGradeComponentsRequest carries raw component scores. Nil fields leave
// the stored component untouched.
type SaveGradeComponentsRequest struct {
	MidtermExam       *float64 `json:"midterm_exam" validate:"omitempty,gte=0,lte=80"`
	MidtermContinuous *float64 `json:"midterm_continuous" validate:"omitempty,gte=0,lte=20"`
	FinalExam         *float64 `json:"final_exam" validate:"omitempty,gte=0,lte=60"`
	FinalContinuous   *float64 `json:"final_continuous" validate:"omitempty,gte=0,lte=20"`
	FinalProject      *float64 `json:"final_project" validate:"omitempty,gte=0,lte=20"`
}

// GradeService persists grade components and derives course summaries.
type GradeService struct {
	grades      gradeRepo
	enrollments enrollmentFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(grades gradeRepo, enrollments enrollmentFinder, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, enrollments: enrollments, validator: validate, logger: logger}
}

func clamp(value *float64, max float64) float64 {
	if value == nil {
		return 0
	}
	v := *value
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// round2 rounds to two decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summarize derives the midterm and final subtotals and their average from
// raw components. Each component is clamped to its cap independently, so
// both subtotals and the average always land in [0,100]. Absent components
// contribute zero; Graded lets callers tell ungraded apart from a zero.
func Summarize(components models.GradeComponents) models.GradeSummary {
	midterm := clamp(components.MidtermExam, models.MaxMidtermExam) +
		clamp(components.MidtermContinuous, models.MaxMidtermContinuous)
	final := clamp(components.FinalExam, models.MaxFinalExam) +
		clamp(components.FinalContinuous, models.MaxFinalContinuous) +
		clamp(components.FinalProject, models.MaxFinalProject)
	return models.GradeSummary{
		EnrollmentID:    components.EnrollmentID,
		MidtermSubtotal: midterm,
		FinalSubtotal:   final,
		Average:         round2((midterm + final) / 2),
		Graded:          components.Graded(),
	}
}

// SaveComponents validates and stores component scores for an enrollment.
// Out-of-range values are rejected before any write.
func (s *GradeService) SaveComponents(ctx context.Context, enrollmentID string, req SaveGradeComponentsRequest) (*models.GradeSummary, error) {
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "grade component out of range")
	}
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	existing, err := s.grades.FindByEnrollment(ctx, enrollmentID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade components")
	}
	components := models.GradeComponents{EnrollmentID: enrollmentID, CycleID: enrollment.CycleID}
	if existing != nil {
		components = *existing
	}
	applyComponent(&components.MidtermExam, req.MidtermExam)
	applyComponent(&components.MidtermContinuous, req.MidtermContinuous)
	applyComponent(&components.FinalExam, req.FinalExam)
	applyComponent(&components.FinalContinuous, req.FinalContinuous)
	applyComponent(&components.FinalProject, req.FinalProject)

	if err := s.grades.Upsert(ctx, &components); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade components")
	}
	summary := Summarize(components)
	return &summary, nil
}

// Summary returns the derived grade summary for an enrollment. A missing
// grade row yields the all-zero ungraded summary rather than an error.
func (s *GradeService) Summary(ctx context.Context, enrollmentID string) (*models.GradeSummary, error) {
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id required")
	}
	components, err := s.grades.FindByEnrollment(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			summary := Summarize(models.GradeComponents{EnrollmentID: enrollmentID})
			return &summary, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade components")
	}
	summary := Summarize(*components)
	return &summary, nil
}

func applyComponent(target **float64, value *float64) {
	if value != nil {
		copied := *value
		*target = &copied
	}
}
