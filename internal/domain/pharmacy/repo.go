package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
}

type RefillRepository interface {
	Create(ctx context.Context, r *RefillRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*RefillRequest, error)
	Update(ctx context.Context, r *RefillRequest) error
	List(ctx context.Context, status RefillStatus, limit, offset int) ([]*RefillRequest, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*RefillRequest, int, error)
}
