package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultCallbackMinutes = 15

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.Kind == "" {
		a.Kind = KindConsultation
	}
	if !validKinds[a.Kind] {
		return fmt.Errorf("invalid kind: %s", a.Kind)
	}
	if a.DurationMinutes <= 0 {
		a.DurationMinutes = 30
	}
	a.Status = StatusBooked
	return s.repo.Create(ctx, a)
}

// ScheduleCallback books the follow-up call promised by a triage
// "schedule" decision. Satisfies the triage service's scheduler hook.
func (s *Service) ScheduleCallback(ctx context.Context, patientID, submissionID, providerID uuid.UUID, at time.Time) error {
	a := &Appointment{
		PatientID:          patientID,
		ProviderID:         providerID,
		TriageSubmissionID: &submissionID,
		Kind:               KindCallback,
		ScheduledAt:        at,
		DurationMinutes:    defaultCallbackMinutes,
	}
	return s.Book(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusConfirmed)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusNoShow)
}

// Cancel ends an appointment. Cancellation is a terminal decision, so
// the reason is mandatory.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Transition(a.Status, StatusCancelled)
	if err != nil {
		return nil, err
	}
	a.Status = next
	a.CancellationReason = &reason
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return a, nil
}

func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, at time.Time) (*Appointment, error) {
	if at.IsZero() {
		return nil, fmt.Errorf("scheduled_at is required")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if IsTerminal(a.Status) {
		return nil, fmt.Errorf("%w: cannot reschedule a %s appointment", ErrInvalidTransition, a.Status)
	}
	a.ScheduledAt = at
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return a, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Transition(a.Status, to)
	if err != nil {
		return nil, err
	}
	a.Status = next
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, status, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPartner(ctx, partnerID, limit, offset)
}
