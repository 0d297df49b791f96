package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

type cycleRepository interface {
	List(ctx context.Context, filter models.CycleFilter) ([]models.Cycle, int, error)
	FindByID(ctx context.Context, id string) (*models.Cycle, error)
	ListIDs(ctx context.Context, activeOnly bool) ([]string, error)
}

// CycleService serves course-cycle listings for the staff portal.
type CycleService struct {
	repo   cycleRepository
	logger *zap.Logger
}

// NewCycleService constructs a CycleService.
func NewCycleService(repo cycleRepository, logger *zap.Logger) *CycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CycleService{repo: repo, logger: logger}
}

// List returns a page of cycles.
func (s *CycleService) List(ctx context.Context, filter models.CycleFilter) ([]models.Cycle, *models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	cycles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cycles")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return cycles, pagination, nil
}

// Get returns one cycle by id.
func (s *CycleService) Get(ctx context.Context, id string) (*models.Cycle, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cycle id required")
	}
	cycle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}
	return cycle, nil
}

// ActiveIDs returns the ids of every active cycle, used by the fleet-wide
// pending-count scan.
func (s *CycleService) ActiveIDs(ctx context.Context) ([]string, error) {
	ids, err := s.repo.ListIDs(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cycle ids")
	}
	return ids, nil
}
