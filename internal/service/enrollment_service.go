package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.EnrollmentRecord, error)
}

// EnrollmentService serves staff-facing enrollment listings and detail
// views. Every record leaves this service as an EnrollmentView so callers
// only ever see the derived display status.
type EnrollmentService struct {
	repo   enrollmentRepository
	logger *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, logger: logger}
}

// List returns a page of enrollment views for the filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentView, *models.Pagination, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status filter")
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment kind filter")
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	views := make([]models.EnrollmentView, 0, len(records))
	for _, record := range records {
		views = append(views, record.View())
	}
	pagination := &models.Pagination{
		Page:       filter.Offset/filter.Limit + 1,
		PageSize:   filter.Limit,
		TotalCount: total,
	}
	return views, pagination, nil
}

// Get returns a single enrollment with its payment detail and proof files.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentView, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	view := record.View()
	return &view, nil
}
