package models

import "time"

// ProofKind tags an uploaded eligibility attachment.
type ProofKind string

const (
	ProofPaymentReceipt  ProofKind = "payment-receipt"
	ProofExemptionProof  ProofKind = "exemption-proof"
	ProofEnrollmentProof ProofKind = "enrollment-proof"
)

// Valid returns true when the proof kind is a supported value.
func (p ProofKind) Valid() bool {
	switch p {
	case ProofPaymentReceipt, ProofExemptionProof, ProofEnrollmentProof:
		return true
	default:
		return false
	}
}

// PaymentDetail holds the payment evidence for a payment-kind enrollment.
// Amount is an integer number of minor currency units.
type PaymentDetail struct {
	Reference string    `db:"payment_reference" json:"reference"`
	Amount    int64     `db:"payment_amount" json:"amount"`
	PaidAt    time.Time `db:"payment_date" json:"paid_at"`
}

// ProofFile is the metadata of a stored eligibility attachment.
type ProofFile struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Kind         ProofKind `db:"kind" json:"kind"`
	FileName     string    `db:"file_name" json:"file_name"`
	StoredPath   string    `db:"stored_path" json:"-"`
	ContentType  string    `db:"content_type" json:"content_type"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// EnrollmentRecord is a student's registration against one course cycle.
// PaymentDetail is present only for payment-kind records; RejectionReason is
// non-empty only when the raw status is rejected.
type EnrollmentRecord struct {
	ID              string           `db:"id" json:"id"`
	CycleID         string           `db:"cycle_id" json:"cycle_id"`
	StudentID       string           `db:"student_id" json:"student_id"`
	StudentName     string           `db:"student_name" json:"student_name"`
	StudentEmail    string           `db:"student_email" json:"student_email"`
	Kind            EnrollmentKind   `db:"kind" json:"kind"`
	RawStatus       EnrollmentStatus `db:"raw_status" json:"raw_status"`
	PaymentDetail   *PaymentDetail   `db:"-" json:"payment_detail,omitempty"`
	ProofFiles      []ProofFile      `db:"-" json:"proof_files,omitempty"`
	RejectionReason string           `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// DisplayStatus derives the status used for staff review queues. It equals
// the raw status except for an exemption still sitting in "registered":
// an exemption has no payment step, so that state already means awaiting
// validation and is homologized to "pre-enrolled". Pure and recomputed on
// every read; never persisted. Every consumer that counts, sorts or renders
// status must go through this method.
func (e EnrollmentRecord) DisplayStatus() EnrollmentStatus {
	if e.Kind == KindExemption && e.RawStatus == StatusRegistered {
		return StatusPreEnrolled
	}
	return e.RawStatus
}

// EnrollmentView is an EnrollmentRecord plus its derived display status,
// suitable for listing responses.
type EnrollmentView struct {
	EnrollmentRecord
	DisplayStatus EnrollmentStatus `json:"display_status"`
	StatusLabel   string           `json:"status_label"`
}

// View wraps the record with its derived display fields.
func (e EnrollmentRecord) View() EnrollmentView {
	display := e.DisplayStatus()
	return EnrollmentView{EnrollmentRecord: e, DisplayStatus: display, StatusLabel: display.Label()}
}

// EnrollmentFilter scopes listing queries. Status filters on the raw stored
// value and is advisory only; callers must reclassify via DisplayStatus.
type EnrollmentFilter struct {
	CycleID   string
	Status    EnrollmentStatus
	Kind      EnrollmentKind
	Search    string
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
