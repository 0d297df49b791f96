package models

import "strings"

// EnrollmentKind distinguishes how an enrollment proves eligibility.
type EnrollmentKind string

const (
	KindPayment   EnrollmentKind = "payment"
	KindExemption EnrollmentKind = "exemption"
)

// Valid returns true when the kind is a supported value.
func (k EnrollmentKind) Valid() bool {
	return k == KindPayment || k == KindExemption
}

// EnrollmentStatus is the persisted lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	StatusRegistered  EnrollmentStatus = "registered"
	StatusPreEnrolled EnrollmentStatus = "pre-enrolled"
	StatusConfirmed   EnrollmentStatus = "confirmed"
	StatusRejected    EnrollmentStatus = "rejected"
	StatusCancelled   EnrollmentStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusPreEnrolled, StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s EnrollmentStatus) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// NormalizeToken strips an optional dotted namespace prefix (keeping the
// substring after the last '.') and trims whitespace. It never fails; empty
// input yields empty output.
func NormalizeToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.LastIndex(raw, "."); idx >= 0 {
		raw = raw[idx+1:]
	}
	return strings.TrimSpace(raw)
}

// statusLabels maps canonical status tokens to staff-facing labels.
var statusLabels = map[EnrollmentStatus]string{
	StatusRegistered:  "Registrado",
	StatusPreEnrolled: "Preinscrito",
	StatusConfirmed:   "Confirmado",
	StatusRejected:    "Rechazado",
	StatusCancelled:   "Cancelado",
}

// Label returns the human label for the status, falling back to the token.
func (s EnrollmentStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseEnrollmentStatus normalizes a raw token (possibly namespaced, e.g.
// "EstadoMatricula.registered") into an EnrollmentStatus.
func ParseEnrollmentStatus(raw string) EnrollmentStatus {
	return EnrollmentStatus(strings.ToLower(NormalizeToken(raw)))
}

// ParseEnrollmentKind normalizes a raw token into an EnrollmentKind.
func ParseEnrollmentKind(raw string) EnrollmentKind {
	return EnrollmentKind(strings.ToLower(NormalizeToken(raw)))
}
