package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockMedicationRepo struct {
	items     map[uuid.UUID]*Medication
	updateErr error
}

func newMockMedicationRepo() *mockMedicationRepo {
	return &mockMedicationRepo{items: make(map[uuid.UUID]*Medication)}
}

func (m *mockMedicationRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	m.items[med.ID] = med
	return nil
}

func (m *mockMedicationRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("medication not found")
	}
	cp := *med
	return &cp, nil
}

func (m *mockMedicationRepo) Update(_ context.Context, med *Medication) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[med.ID]; !ok {
		return fmt.Errorf("medication not found")
	}
	cp := *med
	m.items[med.ID] = &cp
	return nil
}

func (m *mockMedicationRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Medication, error) {
	var out []*Medication
	for _, med := range m.items {
		if med.PatientID == patientID {
			out = append(out, med)
		}
	}
	return out, nil
}

type mockRefillRepo struct {
	items map[uuid.UUID]*RefillRequest
}

func newMockRefillRepo() *mockRefillRepo {
	return &mockRefillRepo{items: make(map[uuid.UUID]*RefillRequest)}
}

func (m *mockRefillRepo) Create(_ context.Context, r *RefillRequest) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.items[r.ID] = r
	return nil
}

func (m *mockRefillRepo) GetByID(_ context.Context, id uuid.UUID) (*RefillRequest, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("refill request not found")
	}
	cp := *r
	return &cp, nil
}

func (m *mockRefillRepo) Update(_ context.Context, r *RefillRequest) error {
	if _, ok := m.items[r.ID]; !ok {
		return fmt.Errorf("refill request not found")
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRefillRepo) List(_ context.Context, status RefillStatus, limit, offset int) ([]*RefillRequest, int, error) {
	var out []*RefillRequest
	for _, r := range m.items {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *mockRefillRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*RefillRequest, int, error) {
	var out []*RefillRequest
	for _, r := range m.items {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockMedicationRepo, *mockRefillRepo) {
	meds := newMockMedicationRepo()
	refills := newMockRefillRepo()
	return NewService(meds, refills, nil), meds, refills
}

func seedPending(t *testing.T, svc *Service, meds *mockMedicationRepo, refillsRemaining int) *RefillRequest {
	t.Helper()
	med := &Medication{
		PatientID:        uuid.New(),
		Name:             "Lisinopril",
		Dosage:           "10mg",
		RefillsRemaining: refillsRemaining,
		Active:           true,
		PrescribedBy:     uuid.New(),
	}
	if err := svc.CreateMedication(context.Background(), med); err != nil {
		t.Fatalf("CreateMedication: %v", err)
	}
	req := &RefillRequest{MedicationID: med.ID}
	if err := svc.RequestRefill(context.Background(), req); err != nil {
		t.Fatalf("RequestRefill: %v", err)
	}
	return req
}

func TestRequestRefillRejectsInactiveMedication(t *testing.T) {
	svc, meds, _ := newTestService()
	med := &Medication{
		PatientID:    uuid.New(),
		Name:         "Metformin",
		Active:       false,
		PrescribedBy: uuid.New(),
	}
	meds.Create(context.Background(), med)

	err := svc.RequestRefill(context.Background(), &RefillRequest{MedicationID: med.ID})
	if err == nil {
		t.Fatal("expected error for inactive medication")
	}
}

func TestApproveConsumesRefill(t *testing.T) {
	svc, meds, _ := newTestService()
	req := seedPending(t, svc, meds, 3)

	got, err := svc.Approve(context.Background(), req.ID, uuid.New())
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got.Status != RefillApproved {
		t.Errorf("status = %s, want approved", got.Status)
	}
	if got.DecidedAt == nil || got.DecidedBy == nil {
		t.Error("decision stamp missing")
	}

	med, _ := meds.GetByID(context.Background(), req.MedicationID)
	if med.RefillsRemaining != 2 {
		t.Errorf("refills_remaining = %d, want 2", med.RefillsRemaining)
	}
	if med.LastFilled == nil {
		t.Error("last_filled not stamped")
	}
}

func TestApproveFloorsRefillsAtZero(t *testing.T) {
	svc, meds, _ := newTestService()
	req := seedPending(t, svc, meds, 0)

	if _, err := svc.Approve(context.Background(), req.ID, uuid.New()); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	med, _ := meds.GetByID(context.Background(), req.MedicationID)
	if med.RefillsRemaining != 0 {
		t.Errorf("refills_remaining = %d, must not go negative", med.RefillsRemaining)
	}
}

func TestApproveFailureLeavesRequestPending(t *testing.T) {
	svc, meds, refills := newTestService()
	req := seedPending(t, svc, meds, 2)
	meds.updateErr = errors.New("write failed")

	if _, err := svc.Approve(context.Background(), req.ID, uuid.New()); err == nil {
		t.Fatal("expected error")
	}
	stored, _ := refills.GetByID(context.Background(), req.ID)
	if stored.Status != RefillPending {
		t.Errorf("status = %s, want pending after failed approval", stored.Status)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc, meds, _ := newTestService()
	req := seedPending(t, svc, meds, 2)

	if _, err := svc.Reject(context.Background(), req.ID, uuid.New(), "  "); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	got, err := svc.Reject(context.Background(), req.ID, uuid.New(), "prescription expired, needs renewal visit")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got.Status != RefillRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
	if got.DecisionReason == nil || *got.DecisionReason == "" {
		t.Error("decision reason not stored")
	}
}

func TestRejectDoesNotTouchMedication(t *testing.T) {
	svc, meds, _ := newTestService()
	req := seedPending(t, svc, meds, 2)

	if _, err := svc.Reject(context.Background(), req.ID, uuid.New(), "out of refills policy"); err != nil {
		t.Fatal(err)
	}
	med, _ := meds.GetByID(context.Background(), req.MedicationID)
	if med.RefillsRemaining != 2 {
		t.Errorf("refills_remaining = %d, want unchanged 2", med.RefillsRemaining)
	}
	if med.LastFilled != nil {
		t.Error("last_filled must not be stamped on rejection")
	}
}

func TestCompleteOnlyFromApproved(t *testing.T) {
	svc, meds, _ := newTestService()
	req := seedPending(t, svc, meds, 2)

	if _, err := svc.Complete(context.Background(), req.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from pending, got %v", err)
	}

	if _, err := svc.Approve(context.Background(), req.ID, uuid.New()); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Complete(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Status != RefillCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}

	// Completed is an end state.
	if _, err := svc.Complete(context.Background(), req.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from completed, got %v", err)
	}
}

func TestDecisionIsTerminal(t *testing.T) {
	svc, meds, _ := newTestService()
	req := seedPending(t, svc, meds, 2)

	if _, err := svc.Reject(context.Background(), req.ID, uuid.New(), "duplicate request"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Approve(context.Background(), req.ID, uuid.New()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after rejection, got %v", err)
	}
}
