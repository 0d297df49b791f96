package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollment records.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `e.id, e.cycle_id, e.student_id, e.student_name, e.student_email, e.kind, e.raw_status,
        COALESCE(e.rejection_reason, '') AS rejection_reason, e.created_at,
        e.payment_reference, e.payment_amount, e.payment_date`

type enrollmentRow struct {
	models.EnrollmentRecord
	PaymentReference sql.NullString `db:"payment_reference"`
	PaymentAmount    sql.NullInt64  `db:"payment_amount"`
	PaymentDate      sql.NullTime   `db:"payment_date"`
}

func (row enrollmentRow) record() models.EnrollmentRecord {
	record := row.EnrollmentRecord
	if row.PaymentReference.Valid {
		record.PaymentDetail = &models.PaymentDetail{
			Reference: row.PaymentReference.String,
			Amount:    row.PaymentAmount.Int64,
			PaidAt:    row.PaymentDate.Time,
		}
	}
	return record
}

// displayStatusClause builds a WHERE fragment matching the given display
// status against stored columns. It mirrors EnrollmentRecord.DisplayStatus:
// an exemption stored as registered reads as pre-enrolled.
func displayStatusClause(status models.EnrollmentStatus, argIndex int) (string, []interface{}) {
	switch status {
	case models.StatusPreEnrolled:
		return fmt.Sprintf("(e.raw_status = $%d OR (e.kind = $%d AND e.raw_status = $%d))", argIndex, argIndex+1, argIndex+2),
			[]interface{}{models.StatusPreEnrolled, models.KindExemption, models.StatusRegistered}
	case models.StatusRegistered:
		return fmt.Sprintf("(e.raw_status = $%d AND e.kind <> $%d)", argIndex, argIndex+1),
			[]interface{}{models.StatusRegistered, models.KindExemption}
	default:
		return fmt.Sprintf("e.raw_status = $%d", argIndex), []interface{}{status}
	}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentRecord, int, error) {
	base := "FROM enrollments e"
	var conditions []string
	var args []interface{}

	if filter.CycleID != "" {
		conditions = append(conditions, fmt.Sprintf("e.cycle_id = $%d", len(args)+1))
		args = append(args, filter.CycleID)
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("e.kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		clause, clauseArgs := displayStatusClause(filter.Status, len(args)+1)
		conditions = append(conditions, clause)
		args = append(args, clauseArgs...)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(e.student_name ILIKE $%d OR e.student_email ILIKE $%d)", len(args)+1, len(args)+2))
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":   "e.created_at",
		"student_name": "e.student_name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s, e.id ASC LIMIT %d OFFSET %d`,
		enrollmentColumns, base+clause, orderBy, order, limit, offset)

	var rows []enrollmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	records := make([]models.EnrollmentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return records, total, nil
}

// ListByCycle returns one stable page of a cycle's enrollments. The status
// argument narrows the query when set but callers still reclassify each
// record themselves.
func (r *EnrollmentRepository) ListByCycle(ctx context.Context, cycleID string, offset, limit int, status models.EnrollmentStatus) ([]models.EnrollmentRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	conditions := []string{"e.cycle_id = $1"}
	args := []interface{}{cycleID}
	if status != "" {
		clause, clauseArgs := displayStatusClause(status, len(args)+1)
		conditions = append(conditions, clause)
		args = append(args, clauseArgs...)
	}

	query := fmt.Sprintf(`SELECT %s FROM enrollments e WHERE %s ORDER BY e.created_at ASC, e.id ASC LIMIT %d OFFSET %d`,
		enrollmentColumns, strings.Join(conditions, " AND "), limit, offset)

	var rows []enrollmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list cycle enrollments: %w", err)
	}
	records := make([]models.EnrollmentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// FindByID returns an enrollment with its payment detail and proof files.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments e WHERE e.id = $1`, enrollmentColumns)
	var row enrollmentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	record := row.record()

	const proofQuery = `SELECT id, enrollment_id, kind, file_name, stored_path, content_type, uploaded_at
        FROM proof_files WHERE enrollment_id = $1 ORDER BY uploaded_at ASC`
	if err := r.db.SelectContext(ctx, &record.ProofFiles, proofQuery, id); err != nil {
		return nil, fmt.Errorf("list enrollment proofs: %w", err)
	}
	return &record, nil
}

// TransitionStatus moves the enrollment to the target status only while
// its stored status is still one of from. The guard runs inside the UPDATE
// so concurrent decisions cannot both succeed; a non-matching guard
// surfaces as sql.ErrNoRows.
func (r *EnrollmentRepository) TransitionStatus(ctx context.Context, id string, to models.EnrollmentStatus, reason string, at time.Time, from ...models.EnrollmentStatus) (*models.EnrollmentRecord, error) {
	if len(from) == 0 {
		return nil, fmt.Errorf("transition requires at least one source status")
	}
	args := []interface{}{id, to, reason, at}
	placeholders := make([]string, len(from))
	for i, status := range from {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, status)
	}

	query := fmt.Sprintf(`UPDATE enrollments e SET raw_status = $2, rejection_reason = NULLIF($3, ''), decided_at = $4
        WHERE e.id = $1 AND e.raw_status IN (%s)
        RETURNING %s`, strings.Join(placeholders, ","), enrollmentColumns)

	var row enrollmentRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, err
	}
	record := row.record()
	return &record, nil
}

// SetPaymentDetail replaces the payment evidence on a payment-kind
// enrollment that has not reached a final state. sql.ErrNoRows signals the
// record is missing, not payment-kind, or already decided.
func (r *EnrollmentRepository) SetPaymentDetail(ctx context.Context, id string, detail models.PaymentDetail) error {
	const query = `UPDATE enrollments SET payment_reference = $2, payment_amount = $3, payment_date = $4
        WHERE id = $1 AND kind = $5 AND raw_status NOT IN ($6, $7, $8)`
	result, err := r.db.ExecContext(ctx, query, id, detail.Reference, detail.Amount, detail.PaidAt,
		models.KindPayment, models.StatusConfirmed, models.StatusRejected, models.StatusCancelled)
	if err != nil {
		return fmt.Errorf("update payment detail: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment detail: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
