package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*EnrollmentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEnrollmentRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var enrollmentRowColumns = []string{
	"id", "cycle_id", "student_id", "student_name", "student_email",
	"kind", "raw_status", "rejection_reason", "created_at",
	"payment_reference", "payment_amount", "payment_date",
}

func TestTransitionStatusGuardedUpdate(t *testing.T) {
	repo, mock := newEnrollmentRepoMock(t)
	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(enrollmentRowColumns).
		AddRow("enr-1", "cycle-1", "stu-1", "Ana Pérez", "ana@example.com",
			string(models.KindExemption), string(models.StatusConfirmed), "", at,
			nil, nil, nil)
	mock.ExpectQuery(`UPDATE enrollments e SET raw_status = \$2`).
		WithArgs("enr-1", string(models.StatusConfirmed), "", at,
			string(models.StatusRegistered), string(models.StatusPreEnrolled)).
		WillReturnRows(rows)

	record, err := repo.TransitionStatus(context.Background(), "enr-1",
		models.StatusConfirmed, "", at, models.StatusRegistered, models.StatusPreEnrolled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, record.RawStatus)
	assert.Nil(t, record.PaymentDetail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusGuardMiss(t *testing.T) {
	repo, mock := newEnrollmentRepoMock(t)

	mock.ExpectQuery(`UPDATE enrollments e SET raw_status = \$2`).
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns))

	_, err := repo.TransitionStatus(context.Background(), "enr-1",
		models.StatusConfirmed, "", time.Now(), models.StatusPreEnrolled)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusRequiresSourceStatus(t *testing.T) {
	repo, _ := newEnrollmentRepoMock(t)
	_, err := repo.TransitionStatus(context.Background(), "enr-1", models.StatusConfirmed, "", time.Now())
	assert.Error(t, err)
}

func TestSetPaymentDetailNoMatchingRow(t *testing.T) {
	repo, mock := newEnrollmentRepoMock(t)

	mock.ExpectExec(`UPDATE enrollments SET payment_reference = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetPaymentDetail(context.Background(), "enr-1", models.PaymentDetail{
		Reference: "OP-1", Amount: 100, PaidAt: time.Now(),
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPaymentDetailUpdatesGuardedRecord(t *testing.T) {
	repo, mock := newEnrollmentRepoMock(t)
	paidAt := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE enrollments SET payment_reference = \$2`).
		WithArgs("enr-1", "OP-9", int64(250000), paidAt,
			string(models.KindPayment), string(models.StatusConfirmed),
			string(models.StatusRejected), string(models.StatusCancelled)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetPaymentDetail(context.Background(), "enr-1", models.PaymentDetail{
		Reference: "OP-9", Amount: 250000, PaidAt: paidAt,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByCycleMapsPaymentColumns(t *testing.T) {
	repo, mock := newEnrollmentRepoMock(t)
	created := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, time.January, 14, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(enrollmentRowColumns).
		AddRow("enr-1", "cycle-1", "stu-1", "Ana Pérez", "ana@example.com",
			string(models.KindPayment), string(models.StatusPreEnrolled), "", created,
			"OP-1", int64(150000), paidAt).
		AddRow("enr-2", "cycle-1", "stu-2", "Luis Rojas", "luis@example.com",
			string(models.KindExemption), string(models.StatusRegistered), "", created,
			nil, nil, nil)
	mock.ExpectQuery(`SELECT .+ FROM enrollments e WHERE e\.cycle_id = \$1 ORDER BY e\.created_at ASC`).
		WithArgs("cycle-1").
		WillReturnRows(rows)

	records, err := repo.ListByCycle(context.Background(), "cycle-1", 0, 200, "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].PaymentDetail)
	assert.Equal(t, "OP-1", records[0].PaymentDetail.Reference)
	assert.Equal(t, int64(150000), records[0].PaymentDetail.Amount)

	assert.Nil(t, records[1].PaymentDetail)
	assert.Equal(t, models.StatusPreEnrolled, records[1].DisplayStatus())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDLoadsProofFiles(t *testing.T) {
	repo, mock := newEnrollmentRepoMock(t)
	created := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM enrollments e WHERE e\.id = \$1`).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("enr-1", "cycle-1", "stu-1", "Ana Pérez", "ana@example.com",
				string(models.KindPayment), string(models.StatusPreEnrolled), "", created,
				nil, nil, nil))
	mock.ExpectQuery(`SELECT id, enrollment_id, kind, file_name, stored_path, content_type, uploaded_at`).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "enrollment_id", "kind", "file_name", "stored_path", "content_type", "uploaded_at"}).
			AddRow("proof-1", "enr-1", string(models.ProofPaymentReceipt), "boleta.pdf", "proofs/enr-1/abc.pdf", "application/pdf", created))

	record, err := repo.FindByID(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Len(t, record.ProofFiles, 1)
	assert.Equal(t, "boleta.pdf", record.ProofFiles[0].FileName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisplayStatusClauseMirrorsDerivation(t *testing.T) {
	clause, args := displayStatusClause(models.StatusPreEnrolled, 1)
	assert.Equal(t, "(e.raw_status = $1 OR (e.kind = $2 AND e.raw_status = $3))", clause)
	require.Len(t, args, 3)

	clause, args = displayStatusClause(models.StatusRegistered, 2)
	assert.Equal(t, "(e.raw_status = $2 AND e.kind <> $3)", clause)
	require.Len(t, args, 2)

	clause, args = displayStatusClause(models.StatusConfirmed, 1)
	assert.Equal(t, "e.raw_status = $1", clause)
	require.Len(t, args, 1)
}

func TestListAppliesFiltersAndCount(t *testing.T) {
	repo, mock := newEnrollmentRepoMock(t)
	created := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM enrollments e WHERE e\.cycle_id = \$1 AND \(e\.raw_status = \$2 OR \(e\.kind = \$3 AND e\.raw_status = \$4\)\)`).
		WithArgs("cycle-1", string(models.StatusPreEnrolled), string(models.KindExemption), string(models.StatusRegistered)).
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("enr-1", "cycle-1", "stu-1", "Ana Pérez", "ana@example.com",
				string(models.KindExemption), string(models.StatusRegistered), "", created,
				nil, nil, nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments e WHERE`).
		WithArgs("cycle-1", string(models.StatusPreEnrolled), string(models.KindExemption), string(models.StatusRegistered)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	records, total, err := repo.List(context.Background(), models.EnrollmentFilter{
		CycleID: "cycle-1",
		Status:  models.StatusPreEnrolled,
		Limit:   20,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
