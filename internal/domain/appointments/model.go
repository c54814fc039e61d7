package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the type of visit.
type Kind string

const (
	KindConsultation Kind = "consultation"
	KindCallback     Kind = "callback"
	KindFollowUp     Kind = "follow_up"
)

var validKinds = map[Kind]bool{
	KindConsultation: true, KindCallback: true, KindFollowUp: true,
}

// Status tracks an appointment through its lifecycle.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Appointment is a booked visit between a patient and a provider,
// optionally hosted at a partner location.
type Appointment struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProviderID         uuid.UUID  `db:"provider_id" json:"provider_id"`
	PartnerID          *uuid.UUID `db:"partner_id" json:"partner_id,omitempty"`
	TriageSubmissionID *uuid.UUID `db:"triage_submission_id" json:"triage_submission_id,omitempty"`
	Kind               Kind       `db:"kind" json:"kind"`
	Status             Status     `db:"status" json:"status"`
	ScheduledAt        time.Time  `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes    int        `db:"duration_minutes" json:"duration_minutes"`
	Notes              string     `db:"notes" json:"notes"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}
