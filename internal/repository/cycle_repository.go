package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
)

// CycleRepository handles persistence of course cycles.
type CycleRepository struct {
	db *sqlx.DB
}

// NewCycleRepository constructs the repository.
func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

const cycleColumns = `id, course_id, language, level, start_date, end_date, teacher_id, capacity, active, created_at`

// List returns cycles filtered by the provided criteria.
func (r *CycleRepository) List(ctx context.Context, filter models.CycleFilter) ([]models.Cycle, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Language != "" {
		conditions = append(conditions, fmt.Sprintf("language = $%d", len(args)+1))
		args = append(args, filter.Language)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM cycles%s ORDER BY start_date DESC, id ASC LIMIT %d OFFSET %d`,
		cycleColumns, clause, size, offset)

	var cycles []models.Cycle
	if err := r.db.SelectContext(ctx, &cycles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list cycles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM cycles%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count cycles: %w", err)
	}
	return cycles, total, nil
}

// FindByID returns one cycle by id.
func (r *CycleRepository) FindByID(ctx context.Context, id string) (*models.Cycle, error) {
	query := fmt.Sprintf(`SELECT %s FROM cycles WHERE id = $1`, cycleColumns)
	var cycle models.Cycle
	if err := r.db.GetContext(ctx, &cycle, query, id); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// ListIDs returns every cycle id, optionally restricted to active cycles.
func (r *CycleRepository) ListIDs(ctx context.Context, activeOnly bool) ([]string, error) {
	query := "SELECT id FROM cycles"
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY start_date DESC, id ASC"
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list cycle ids: %w", err)
	}
	return ids, nil
}
