package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
)

const (
	rejectionReasonMinChars = 6
	rejectionReasonMaxChars = 300
)

type validationEnrollmentRepo interface {
	FindByID(ctx context.Context, id string) (*models.EnrollmentRecord, error)
	// TransitionStatus moves the record to the target status only while the
	// stored status is still one of from; sql.ErrNoRows signals the guard
	// did not match.
	TransitionStatus(ctx context.Context, id string, to models.EnrollmentStatus, reason string, at time.Time, from ...models.EnrollmentStatus) (*models.EnrollmentRecord, error)
	SetPaymentDetail(ctx context.Context, id string, detail models.PaymentDetail) error
}

type pendingInvalidator interface {
	Invalidate(ctx context.Context, cycleID string)
}

type recountScheduler interface {
	Schedule(cycleID string)
}

// PaymentDetailRequest carries a staff correction of a payment record.
// Amount is in minor currency units.
type PaymentDetailRequest struct {
	Reference string    `json:"reference" validate:"required"`
	Amount    int64     `json:"amount" validate:"required"`
	PaidAt    time.Time `json:"paid_at" validate:"required"`
}

// ValidationService drives the staff decision workflow over enrollments:
// approve, reject, cancel and payment-detail correction. Decisions are
// guarded by conditional updates so two staff members racing on the same
// record cannot both win.
type ValidationService struct {
	enrollments validationEnrollmentRepo
	pending     pendingInvalidator
	recounts    recountScheduler
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewValidationService constructs a ValidationService.
func NewValidationService(enrollments validationEnrollmentRepo, pending pendingInvalidator, recounts recountScheduler, metrics *MetricsService, logger *zap.Logger) *ValidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationService{
		enrollments: enrollments,
		pending:     pending,
		recounts:    recounts,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Approve confirms an enrollment that is awaiting validation. The record
// must read as pre-enrolled; anything already decided yields a conflict.
func (s *ValidationService) Approve(ctx context.Context, enrollmentID, actorID string) (*models.EnrollmentView, error) {
	record, err := s.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAwaitingValidation(record); err != nil {
		return nil, err
	}

	updated, err := s.enrollments.TransitionStatus(ctx, enrollmentID, models.StatusConfirmed, "", s.now(), awaitingRawStatuses(record.Kind)...)
	if err != nil {
		return nil, s.transitionError(err, "enrollment was decided by someone else")
	}

	s.afterDecision(ctx, updated.CycleID, "approve", enrollmentID, actorID)
	view := updated.View()
	return &view, nil
}

// Reject declines an enrollment awaiting validation. The reason is
// mandatory and must carry between 6 and 300 characters after trimming.
func (s *ValidationService) Reject(ctx context.Context, enrollmentID, reason, actorID string) (*models.EnrollmentView, error) {
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < rejectionReasonMinChars || n > rejectionReasonMaxChars {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason must be between 6 and 300 characters")
	}

	record, err := s.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAwaitingValidation(record); err != nil {
		return nil, err
	}

	updated, err := s.enrollments.TransitionStatus(ctx, enrollmentID, models.StatusRejected, reason, s.now(), awaitingRawStatuses(record.Kind)...)
	if err != nil {
		return nil, s.transitionError(err, "enrollment was decided by someone else")
	}

	s.afterDecision(ctx, updated.CycleID, "reject", enrollmentID, actorID)
	view := updated.View()
	return &view, nil
}

// Cancel withdraws an enrollment on the student's behalf. Cancellation is
// allowed only while the stored status is registered or pre-enrolled; a
// decided record stays decided.
func (s *ValidationService) Cancel(ctx context.Context, enrollmentID, actorID string) (*models.EnrollmentView, error) {
	record, err := s.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if record.RawStatus.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is already in a final state")
	}

	updated, err := s.enrollments.TransitionStatus(ctx, enrollmentID, models.StatusCancelled, "", s.now(), models.StatusRegistered, models.StatusPreEnrolled)
	if err != nil {
		return nil, s.transitionError(err, "enrollment state changed before cancellation")
	}

	s.afterDecision(ctx, updated.CycleID, "cancel", enrollmentID, actorID)
	view := updated.View()
	return &view, nil
}

// CorrectPaymentDetail replaces the payment evidence on a payment-kind
// enrollment. Every field is checked before any write: an invalid
// correction leaves the record exactly as it was.
func (s *ValidationService) CorrectPaymentDetail(ctx context.Context, enrollmentID string, req PaymentDetailRequest) (*models.EnrollmentView, error) {
	record, err := s.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if record.Kind != models.KindPayment {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment carries no payment detail")
	}
	if record.RawStatus.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is already in a final state")
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment reference is required")
	}
	if req.Amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment amount must be a positive number of minor units")
	}
	if req.PaidAt.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment date is required")
	}
	if req.PaidAt.After(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment date cannot be in the future")
	}

	detail := models.PaymentDetail{Reference: reference, Amount: req.Amount, PaidAt: req.PaidAt}
	if err := s.enrollments.SetPaymentDetail(ctx, enrollmentID, detail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment detail")
	}

	record.PaymentDetail = &detail
	view := record.View()
	return &view, nil
}

func (s *ValidationService) load(ctx context.Context, enrollmentID string) (*models.EnrollmentRecord, error) {
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id required")
	}
	record, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return record, nil
}

// requireAwaitingValidation checks the derived status, so an exemption
// still stored as registered is accepted like any other pre-enrolled
// record.
func (s *ValidationService) requireAwaitingValidation(record *models.EnrollmentRecord) error {
	if record.DisplayStatus() == models.StatusPreEnrolled {
		return nil
	}
	if record.RawStatus.Terminal() {
		return appErrors.Clone(appErrors.ErrConflict, "enrollment is already in a final state")
	}
	return appErrors.Clone(appErrors.ErrValidation, "enrollment is not awaiting validation")
}

// awaitingRawStatuses lists the stored statuses that read as pre-enrolled
// for the given kind. The guard must run on stored values, not derived
// ones, because the database never sees the homologized status.
func awaitingRawStatuses(kind models.EnrollmentKind) []models.EnrollmentStatus {
	if kind == models.KindExemption {
		return []models.EnrollmentStatus{models.StatusRegistered, models.StatusPreEnrolled}
	}
	return []models.EnrollmentStatus{models.StatusPreEnrolled}
}

func (s *ValidationService) transitionError(err error, conflictMessage string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrConflict, conflictMessage)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
}

// afterDecision runs the side effects shared by every decision: drop the
// cached pending count, schedule an async recount and bump metrics.
func (s *ValidationService) afterDecision(ctx context.Context, cycleID, action, enrollmentID, actorID string) {
	if s.pending != nil {
		s.pending.Invalidate(ctx, cycleID)
	}
	if s.recounts != nil {
		s.recounts.Schedule(cycleID)
	}
	if s.metrics != nil {
		s.metrics.IncValidationDecision(action)
	}
	s.logger.Info("validation decision recorded",
		zap.String("action", action),
		zap.String("enrollment_id", enrollmentID),
		zap.String("cycle_id", cycleID),
		zap.String("actor_id", actorID))
}
