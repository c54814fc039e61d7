package appointments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	items map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.items[a.ID]; !ok {
		return fmt.Errorf("appointment not found")
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context, status Status, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.items {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.items {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPartner(_ context.Context, partnerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.items {
		if a.PartnerID != nil && *a.PartnerID == partnerID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func seedBooked(t *testing.T, svc *Service) *Appointment {
	t.Helper()
	a := &Appointment{
		PatientID:   uuid.New(),
		ProviderID:  uuid.New(),
		ScheduledAt: time.Now().Add(48 * time.Hour),
	}
	if err := svc.Book(context.Background(), a); err != nil {
		t.Fatalf("Book: %v", err)
	}
	return a
}

func TestBookDefaults(t *testing.T) {
	svc := NewService(newMockRepo())
	a := seedBooked(t, svc)
	if a.Status != StatusBooked {
		t.Errorf("status = %s, want booked", a.Status)
	}
	if a.Kind != KindConsultation {
		t.Errorf("kind = %s, want consultation default", a.Kind)
	}
	if a.DurationMinutes != 30 {
		t.Errorf("duration = %d, want 30 default", a.DurationMinutes)
	}
}

func TestBookValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	base := Appointment{PatientID: uuid.New(), ProviderID: uuid.New(), ScheduledAt: time.Now()}

	missing := base
	missing.PatientID = uuid.Nil
	if err := svc.Book(ctx, &missing); err == nil {
		t.Error("expected error for missing patient")
	}

	badKind := base
	badKind.Kind = "house_call"
	if err := svc.Book(ctx, &badKind); err == nil {
		t.Error("expected error for invalid kind")
	}

	noTime := base
	noTime.ScheduledAt = time.Time{}
	if err := svc.Book(ctx, &noTime); err == nil {
		t.Error("expected error for missing time")
	}
}

func TestLifecycle(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	a := seedBooked(t, svc)

	// Completing a booked appointment skips confirmation.
	if _, err := svc.Complete(ctx, a.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := svc.Confirm(ctx, a.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("status = %s, want confirmed", got.Status)
	}

	got, err = svc.Complete(ctx, a.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}

	// Completed is final.
	if _, err := svc.Cancel(ctx, a.ID, "patient request"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after completion, got %v", err)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	a := seedBooked(t, svc)

	if _, err := svc.Cancel(ctx, a.ID, "  "); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	got, err := svc.Cancel(ctx, a.ID, "provider unavailable")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	if got.CancellationReason == nil || *got.CancellationReason != "provider unavailable" {
		t.Error("cancellation reason not stored")
	}
}

func TestRescheduleRejectsTerminal(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	a := seedBooked(t, svc)
	svc.Cancel(ctx, a.ID, "duplicate booking")

	if _, err := svc.Reschedule(ctx, a.ID, time.Now().Add(time.Hour)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestScheduleCallback(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	patient, submission, provider := uuid.New(), uuid.New(), uuid.New()
	at := time.Now().Add(24 * time.Hour)
	if err := svc.ScheduleCallback(ctx, patient, submission, provider, at); err != nil {
		t.Fatalf("ScheduleCallback: %v", err)
	}

	items, _, _ := repo.ListByPatient(ctx, patient, 20, 0)
	if len(items) != 1 {
		t.Fatalf("appointments = %d, want 1", len(items))
	}
	got := items[0]
	if got.Kind != KindCallback {
		t.Errorf("kind = %s, want callback", got.Kind)
	}
	if got.TriageSubmissionID == nil || *got.TriageSubmissionID != submission {
		t.Error("triage submission link missing")
	}
	if got.DurationMinutes != defaultCallbackMinutes {
		t.Errorf("duration = %d, want %d", got.DurationMinutes, defaultCallbackMinutes)
	}
}
