package pharmacy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TxRunner runs fn atomically. The production runner wraps fn in a
// database transaction; tests pass PassthroughTx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn directly, with no transaction.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	medications MedicationRepository
	refills     RefillRepository
	inTx        TxRunner
	now         func() time.Time
}

func NewService(medications MedicationRepository, refills RefillRepository, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = PassthroughTx
	}
	return &Service{
		medications: medications,
		refills:     refills,
		inTx:        inTx,
		now:         time.Now,
	}
}

func (s *Service) CreateMedication(ctx context.Context, m *Medication) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if m.RefillsRemaining < 0 {
		return fmt.Errorf("refills_remaining must not be negative")
	}
	return s.medications.Create(ctx, m)
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.medications.GetByID(ctx, id)
}

func (s *Service) ListMedications(ctx context.Context, patientID uuid.UUID) ([]*Medication, error) {
	return s.medications.ListByPatient(ctx, patientID)
}

func (s *Service) UpdateMedication(ctx context.Context, m *Medication) error {
	if m.RefillsRemaining < 0 {
		return fmt.Errorf("refills_remaining must not be negative")
	}
	return s.medications.Update(ctx, m)
}

func (s *Service) RequestRefill(ctx context.Context, r *RefillRequest) error {
	if r.MedicationID == uuid.Nil {
		return fmt.Errorf("medication_id is required")
	}
	med, err := s.medications.GetByID(ctx, r.MedicationID)
	if err != nil {
		return fmt.Errorf("medication not found")
	}
	if !med.Active {
		return fmt.Errorf("medication is inactive")
	}
	r.PatientID = med.PatientID
	r.Status = RefillPending
	return s.refills.Create(ctx, r)
}

// Approve grants a pending refill: the request moves to approved and the
// medication consumes one refill. Both writes land in one transaction.
func (s *Service) Approve(ctx context.Context, id, deciderID uuid.UUID) (*RefillRequest, error) {
	var out *RefillRequest
	err := s.inTx(ctx, func(ctx context.Context) error {
		req, err := s.refills.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := Decide(req.Status, RefillApproved)
		if err != nil {
			return err
		}
		med, err := s.medications.GetByID(ctx, req.MedicationID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		updated := ApplyApproval(*med, now)
		if err := s.medications.Update(ctx, &updated); err != nil {
			return fmt.Errorf("update medication: %w", err)
		}

		req.Status = next
		req.DecidedBy = &deciderID
		req.DecidedAt = &now
		if err := s.refills.Update(ctx, req); err != nil {
			return fmt.Errorf("update refill request: %w", err)
		}
		out = req
		return nil
	})
	return out, err
}

// Reject closes a pending refill. Rejection is a negative terminal
// decision, so the reason is mandatory.
func (s *Service) Reject(ctx context.Context, id, deciderID uuid.UUID, reason string) (*RefillRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	req, err := s.refills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Decide(req.Status, RefillRejected)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	req.Status = next
	req.DecisionReason = &reason
	req.DecidedBy = &deciderID
	req.DecidedAt = &now
	if err := s.refills.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update refill request: %w", err)
	}
	return req, nil
}

// Complete marks an approved refill as dispensed by the pharmacy.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*RefillRequest, error) {
	req, err := s.refills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Decide(req.Status, RefillCompleted)
	if err != nil {
		return nil, err
	}
	req.Status = next
	if err := s.refills.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update refill request: %w", err)
	}
	return req, nil
}

func (s *Service) GetRefill(ctx context.Context, id uuid.UUID) (*RefillRequest, error) {
	return s.refills.GetByID(ctx, id)
}

func (s *Service) ListRefills(ctx context.Context, status RefillStatus, limit, offset int) ([]*RefillRequest, int, error) {
	return s.refills.List(ctx, status, limit, offset)
}

func (s *Service) ListRefillsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*RefillRequest, int, error) {
	return s.refills.ListByPatient(ctx, patientID, limit, offset)
}
