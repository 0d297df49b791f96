package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

type fakeValidationRepo struct {
	record        *models.EnrollmentRecord
	transitionErr error
	transitions   int
	lastTo        models.EnrollmentStatus
	lastReason    string
	lastFrom      []models.EnrollmentStatus

	paymentErr    error
	paymentCalls  int
	paymentDetail models.PaymentDetail
}

func (f *fakeValidationRepo) FindByID(ctx context.Context, id string) (*models.EnrollmentRecord, error) {
	if f.record == nil {
		return nil, sql.ErrNoRows
	}
	copied := *f.record
	return &copied, nil
}

func (f *fakeValidationRepo) TransitionStatus(ctx context.Context, id string, to models.EnrollmentStatus, reason string, at time.Time, from ...models.EnrollmentStatus) (*models.EnrollmentRecord, error) {
	f.transitions++
	f.lastTo = to
	f.lastReason = reason
	f.lastFrom = from
	if f.transitionErr != nil {
		return nil, f.transitionErr
	}
	updated := *f.record
	updated.RawStatus = to
	updated.RejectionReason = reason
	return &updated, nil
}

func (f *fakeValidationRepo) SetPaymentDetail(ctx context.Context, id string, detail models.PaymentDetail) error {
	f.paymentCalls++
	if f.paymentErr != nil {
		return f.paymentErr
	}
	f.paymentDetail = detail
	return nil
}

type fakeInvalidator struct {
	cycles []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, cycleID string) {
	f.cycles = append(f.cycles, cycleID)
}

type fakeScheduler struct {
	cycles []string
}

func (f *fakeScheduler) Schedule(cycleID string) {
	f.cycles = append(f.cycles, cycleID)
}

func awaitingRecord(kind models.EnrollmentKind, status models.EnrollmentStatus) *models.EnrollmentRecord {
	return &models.EnrollmentRecord{ID: "enr-1", CycleID: "cycle-1", Kind: kind, RawStatus: status}
}

func TestApproveExemptionStoredAsRegistered(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindExemption, models.StatusRegistered)}
	pending := &fakeInvalidator{}
	recounts := &fakeScheduler{}
	svc := NewValidationService(repo, pending, recounts, nil, nil)

	view, err := svc.Approve(context.Background(), "enr-1", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, view.RawStatus)
	assert.Equal(t, models.StatusConfirmed, view.DisplayStatus)
	// The guard runs against stored values, so both raw forms of
	// "awaiting validation" must be accepted for an exemption.
	assert.ElementsMatch(t, []models.EnrollmentStatus{models.StatusRegistered, models.StatusPreEnrolled}, repo.lastFrom)
	assert.Equal(t, []string{"cycle-1"}, pending.cycles)
	assert.Equal(t, []string{"cycle-1"}, recounts.cycles)
}

func TestApprovePaymentRegisteredIsNotAwaiting(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindPayment, models.StatusRegistered)}
	svc := NewValidationService(repo, nil, nil, nil, nil)

	_, err := svc.Approve(context.Background(), "enr-1", "staff-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 0, repo.transitions)
}

func TestApproveAlreadyDecided(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindPayment, models.StatusConfirmed)}
	svc := NewValidationService(repo, nil, nil, nil, nil)

	_, err := svc.Approve(context.Background(), "enr-1", "staff-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 0, repo.transitions)
}

func TestApproveLosesRaceMapsToConflict(t *testing.T) {
	// The record read as awaiting but another decision landed first: the
	// guarded update matches nothing.
	repo := &fakeValidationRepo{
		record:        awaitingRecord(models.KindPayment, models.StatusPreEnrolled),
		transitionErr: sql.ErrNoRows,
	}
	svc := NewValidationService(repo, nil, nil, nil, nil)

	_, err := svc.Approve(context.Background(), "enr-1", "staff-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 1, repo.transitions)
}

func TestApproveUnknownEnrollment(t *testing.T) {
	svc := NewValidationService(&fakeValidationRepo{}, nil, nil, nil, nil)
	_, err := svc.Approve(context.Background(), "enr-x", "staff-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRejectReasonLength(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindPayment, models.StatusPreEnrolled)}
	svc := NewValidationService(repo, nil, nil, nil, nil)

	for _, reason := range []string{"", "hi", "     ", strings.Repeat("x", 301)} {
		_, err := svc.Reject(context.Background(), "enr-1", reason, "staff-1")
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "reason %q", reason)
	}
	assert.Equal(t, 0, repo.transitions)

	view, err := svc.Reject(context.Background(), "enr-1", "documentación incompleta", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, view.RawStatus)
	assert.Equal(t, "documentación incompleta", repo.lastReason)
}

func TestCancelAllowedOnlyBeforeDecision(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindPayment, models.StatusRegistered)}
	pending := &fakeInvalidator{}
	svc := NewValidationService(repo, pending, nil, nil, nil)

	view, err := svc.Cancel(context.Background(), "enr-1", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, view.RawStatus)
	assert.ElementsMatch(t, []models.EnrollmentStatus{models.StatusRegistered, models.StatusPreEnrolled}, repo.lastFrom)

	repo.record = awaitingRecord(models.KindPayment, models.StatusRejected)
	_, err = svc.Cancel(context.Background(), "enr-1", "staff-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func validPayment() PaymentDetailRequest {
	return PaymentDetailRequest{Reference: "OP-1234", Amount: 150000, PaidAt: time.Now().Add(-time.Hour)}
}

func TestCorrectPaymentDetail(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindPayment, models.StatusPreEnrolled)}
	svc := NewValidationService(repo, nil, nil, nil, nil)

	view, err := svc.CorrectPaymentDetail(context.Background(), "enr-1", validPayment())
	require.NoError(t, err)
	require.NotNil(t, view.PaymentDetail)
	assert.Equal(t, int64(150000), view.PaymentDetail.Amount)
	assert.Equal(t, 1, repo.paymentCalls)
}

func TestCorrectPaymentDetailFailsWithoutMutation(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindPayment, models.StatusPreEnrolled)}
	svc := NewValidationService(repo, nil, nil, nil, nil)

	cases := []PaymentDetailRequest{
		{Reference: "", Amount: 100, PaidAt: time.Now().Add(-time.Hour)},
		{Reference: "OP-1", Amount: 0, PaidAt: time.Now().Add(-time.Hour)},
		{Reference: "OP-1", Amount: -50, PaidAt: time.Now().Add(-time.Hour)},
		{Reference: "OP-1", Amount: 100, PaidAt: time.Now().Add(48 * time.Hour)},
		{Reference: "OP-1", Amount: 100},
	}
	for _, req := range cases {
		_, err := svc.CorrectPaymentDetail(context.Background(), "enr-1", req)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "request %+v", req)
	}
	assert.Equal(t, 0, repo.paymentCalls)
}

func TestCorrectPaymentDetailOnExemption(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindExemption, models.StatusRegistered)}
	svc := NewValidationService(repo, nil, nil, nil, nil)

	_, err := svc.CorrectPaymentDetail(context.Background(), "enr-1", validPayment())
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 0, repo.paymentCalls)
}

func TestCorrectPaymentDetailOnDecidedRecord(t *testing.T) {
	repo := &fakeValidationRepo{record: awaitingRecord(models.KindPayment, models.StatusConfirmed)}
	svc := NewValidationService(repo, nil, nil, nil, nil)

	_, err := svc.CorrectPaymentDetail(context.Background(), "enr-1", validPayment())
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 0, repo.paymentCalls)
}
