package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// RefillStatus is a refill request's position in the approval workflow.
type RefillStatus string

const (
	RefillPending   RefillStatus = "pending"
	RefillApproved  RefillStatus = "approved"
	RefillRejected  RefillStatus = "rejected"
	RefillCompleted RefillStatus = "completed"
)

// Medication is a prescription on a patient's record.
type Medication struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	Name             string     `db:"name" json:"name"`
	Dosage           string     `db:"dosage" json:"dosage"`
	Instructions     string     `db:"instructions" json:"instructions"`
	RefillsRemaining int        `db:"refills_remaining" json:"refills_remaining"`
	LastFilled       *time.Time `db:"last_filled" json:"last_filled,omitempty"`
	Active           bool       `db:"active" json:"active"`
	PrescribedBy     uuid.UUID  `db:"prescribed_by" json:"prescribed_by"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// RefillRequest is a patient's ask to refill one medication.
type RefillRequest struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	MedicationID   uuid.UUID    `db:"medication_id" json:"medication_id"`
	PatientID      uuid.UUID    `db:"patient_id" json:"patient_id"`
	PharmacyID     *uuid.UUID   `db:"pharmacy_id" json:"pharmacy_id,omitempty"`
	Status         RefillStatus `db:"status" json:"status"`
	Notes          string       `db:"notes" json:"notes"`
	DecisionReason *string      `db:"decision_reason" json:"decision_reason,omitempty"`
	DecidedBy      *uuid.UUID   `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt      *time.Time   `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}
