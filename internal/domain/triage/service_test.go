package triage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/concierge/concierge/internal/platform/notification"
)

type mockSubmissionRepo struct {
	items map[uuid.UUID]*Submission
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{items: make(map[uuid.UUID]*Submission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, s *Submission) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.items[s.ID] = s
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id uuid.UUID) (*Submission, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("submission not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockSubmissionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	s, ok := m.items[id]
	if !ok {
		return fmt.Errorf("submission not found")
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	return nil
}

func (m *mockSubmissionRepo) List(_ context.Context, status Status, urgency Urgency, limit, offset int) ([]*Submission, int, error) {
	var out []*Submission
	for _, s := range m.items {
		if status != "" && s.Status != status {
			continue
		}
		if urgency != "" && s.Urgency != urgency {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockSubmissionRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	var out []*Submission
	for _, s := range m.items {
		if s.PatientID == patientID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

type mockNoteRepo struct{ items []*ProviderNote }

func (m *mockNoteRepo) Append(_ context.Context, n *ProviderNote) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.items = append(m.items, n)
	return nil
}

func (m *mockNoteRepo) ListBySubmission(_ context.Context, id uuid.UUID) ([]*ProviderNote, error) {
	var out []*ProviderNote
	for _, n := range m.items {
		if n.SubmissionID == id {
			out = append(out, n)
		}
	}
	return out, nil
}

type mockReplyRepo struct{ items []*ProviderReply }

func (m *mockReplyRepo) Append(_ context.Context, r *ProviderReply) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.items = append(m.items, r)
	return nil
}

func (m *mockReplyRepo) ListBySubmission(_ context.Context, id uuid.UUID) ([]*ProviderReply, error) {
	var out []*ProviderReply
	for _, r := range m.items {
		if r.SubmissionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockFileRepo struct{ items []*SubmissionFile }

func (m *mockFileRepo) Append(_ context.Context, f *SubmissionFile) error {
	f.ID = uuid.New()
	f.UploadedAt = time.Now()
	m.items = append(m.items, f)
	return nil
}

func (m *mockFileRepo) ListBySubmission(_ context.Context, id uuid.UUID) ([]*SubmissionFile, error) {
	return m.items, nil
}

type mockFeedbackRepo struct{ items []*AIFeedback }

func (m *mockFeedbackRepo) Append(_ context.Context, f *AIFeedback) error {
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	m.items = append(m.items, f)
	return nil
}

func (m *mockFeedbackRepo) ListBySubmission(_ context.Context, id uuid.UUID) ([]*AIFeedback, error) {
	return m.items, nil
}

type mockActivityRepo struct{ items []*ActivityEntry }

func (m *mockActivityRepo) Append(_ context.Context, e *ActivityEntry) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.items = append(m.items, e)
	return nil
}

func (m *mockActivityRepo) ListBySubmission(_ context.Context, id uuid.UUID) ([]*ActivityEntry, error) {
	var out []*ActivityEntry
	for _, e := range m.items {
		if e.SubmissionID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type capturingSender struct {
	alerts []notification.Alert
}

func (c *capturingSender) Send(_ context.Context, a notification.Alert) error {
	c.alerts = append(c.alerts, a)
	return nil
}

type fixture struct {
	svc      *Service
	subs     *mockSubmissionRepo
	notes    *mockNoteRepo
	replies  *mockReplyRepo
	activity *mockActivityRepo
	sender   *capturingSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		subs:     newMockSubmissionRepo(),
		notes:    &mockNoteRepo{},
		replies:  &mockReplyRepo{},
		activity: &mockActivityRepo{},
		sender:   &capturingSender{},
	}
	f.svc = NewService(f.subs, f.notes, f.replies, &mockFileRepo{}, &mockFeedbackRepo{},
		f.activity, notification.NewDispatcher(f.sender, zerolog.Nop()))
	return f
}

func (f *fixture) submit(t *testing.T) *Submission {
	t.Helper()
	sub := &Submission{
		PatientID:    uuid.New(),
		SymptomsText: "persistent cough for two weeks",
		Severity:     4,
	}
	if err := f.svc.CreateSubmission(context.Background(), sub); err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	return sub
}

func TestCreateSubmissionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		sub  Submission
	}{
		{"missing patient", Submission{SymptomsText: "cough", Severity: 3}},
		{"missing symptoms", Submission{PatientID: uuid.New(), Severity: 3}},
		{"severity too high", Submission{PatientID: uuid.New(), SymptomsText: "cough", Severity: 11}},
		{"severity negative", Submission{PatientID: uuid.New(), SymptomsText: "cough", Severity: -1}},
		{"bad urgency", Submission{PatientID: uuid.New(), SymptomsText: "cough", Severity: 3, Urgency: "extreme"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.svc.CreateSubmission(ctx, &tt.sub); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSubmissionDefaults(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t)
	if sub.Status != StatusSubmitted {
		t.Errorf("status = %s, want submitted", sub.Status)
	}
	if sub.Urgency != UrgencyLow {
		t.Errorf("urgency = %s, want low default", sub.Urgency)
	}
}

func TestOpenAdvancesExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.submit(t)
	provider := uuid.New()

	got, err := f.svc.Open(ctx, sub.ID, provider)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Status != StatusUnderReview {
		t.Fatalf("status after first open = %s, want under_review", got.Status)
	}

	// Opening again, any number of times, changes nothing.
	for i := 0; i < 3; i++ {
		got, err = f.svc.Open(ctx, sub.ID, provider)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+2, err)
		}
		if got.Status != StatusUnderReview {
			t.Fatalf("status after repeat open = %s", got.Status)
		}
	}

	entries, _ := f.activity.ListBySubmission(ctx, sub.ID)
	viewed := 0
	for _, e := range entries {
		if e.Action == ActionViewed {
			viewed++
		}
	}
	if viewed != 1 {
		t.Errorf("viewed activity entries = %d, want 1", viewed)
	}
}

func TestSendReplyCompletesReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.submit(t)
	provider := uuid.New()

	if _, err := f.svc.Open(ctx, sub.ID, provider); err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.SendReply(ctx, sub.ID, provider, "rest and fluids, check back in 48h")
	if err != nil {
		t.Fatalf("SendReply: %v", err)
	}
	if got.Status != StatusReviewed {
		t.Errorf("status after reply = %s, want reviewed", got.Status)
	}
	replies, _ := f.replies.ListBySubmission(ctx, sub.ID)
	if len(replies) != 1 {
		t.Errorf("replies = %d, want 1", len(replies))
	}
}

func TestSendReplyRequiresOpenFirst(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t)
	_, err := f.svc.SendReply(context.Background(), sub.ID, uuid.New(), "hello")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSendReplyRejectsEmptyContent(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t)
	if _, err := f.svc.SendReply(context.Background(), sub.ID, uuid.New(), "   "); err == nil {
		t.Fatal("expected error for blank reply")
	}
}

func TestEscalateRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.submit(t)
	provider := uuid.New()
	if _, err := f.svc.Open(ctx, sub.ID, provider); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Escalate(ctx, sub.ID, provider, ""); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	got, err := f.svc.Escalate(ctx, sub.ID, provider, "chest pain with radiating arm numbness")
	if err != nil {
		t.Fatalf("Escalate: %v", err)
	}
	if got.Status != StatusEscalated {
		t.Errorf("status = %s, want escalated", got.Status)
	}
	if len(f.sender.alerts) != 1 {
		t.Fatalf("alerts sent = %d, want 1", len(f.sender.alerts))
	}
	if f.sender.alerts[0].Kind != "escalation" {
		t.Errorf("alert kind = %s", f.sender.alerts[0].Kind)
	}
}

func TestEscalatedIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.submit(t)
	provider := uuid.New()
	f.svc.Open(ctx, sub.ID, provider)
	if _, err := f.svc.Escalate(ctx, sub.ID, provider, "severe symptoms"); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.MarkReviewed(ctx, sub.ID, provider); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of escalated, got %v", err)
	}
	if _, err := f.svc.Schedule(ctx, sub.ID, provider, time.Now().Add(time.Hour)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of escalated, got %v", err)
	}
}

// Escalation does not wait for review: a freshly submitted case can go
// straight to escalated, and a booked callback does not block it either.
func TestEscalateFromSubmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.submit(t)
	provider := uuid.New()

	got, err := f.svc.Escalate(ctx, sub.ID, provider, "crushing chest pain reported at intake")
	if err != nil {
		t.Fatalf("Escalate from submitted: %v", err)
	}
	if got.Status != StatusEscalated {
		t.Errorf("status = %s, want escalated", got.Status)
	}
	if len(f.sender.alerts) != 1 {
		t.Errorf("alerts sent = %d, want 1", len(f.sender.alerts))
	}
}

func TestEscalateAfterScheduling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.submit(t)
	provider := uuid.New()
	f.svc.Open(ctx, sub.ID, provider)
	if _, err := f.svc.Schedule(ctx, sub.ID, provider, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.Escalate(ctx, sub.ID, provider, "symptoms worsened before the callback")
	if err != nil {
		t.Fatalf("Escalate from scheduled: %v", err)
	}
	if got.Status != StatusEscalated {
		t.Errorf("status = %s, want escalated", got.Status)
	}
}

type recordingScheduler struct {
	calls int
	at    time.Time
	err   error
}

func (r *recordingScheduler) ScheduleCallback(_ context.Context, _, _, _ uuid.UUID, at time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.calls++
	r.at = at
	return nil
}

func TestScheduleBooksCallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sched := &recordingScheduler{}
	f.svc.SetScheduler(sched)

	sub := f.submit(t)
	provider := uuid.New()
	f.svc.Open(ctx, sub.ID, provider)

	at := time.Now().Add(24 * time.Hour)
	got, err := f.svc.Schedule(ctx, sub.ID, provider, at)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got.Status != StatusScheduled {
		t.Errorf("status = %s, want scheduled", got.Status)
	}
	if sched.calls != 1 {
		t.Errorf("scheduler calls = %d, want 1", sched.calls)
	}
}

func TestScheduleFailureLeavesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.SetScheduler(&recordingScheduler{err: errors.New("no provider availability")})

	sub := f.submit(t)
	provider := uuid.New()
	f.svc.Open(ctx, sub.ID, provider)

	if _, err := f.svc.Schedule(ctx, sub.ID, provider, time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected booking failure to surface")
	}
	got, err := f.svc.submissions.GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusUnderReview {
		t.Errorf("status = %s, want under_review after failed booking", got.Status)
	}
}

func TestNotesNeverChangeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.submit(t)
	provider := uuid.New()
	f.svc.Open(ctx, sub.ID, provider)

	if _, err := f.svc.AddNote(ctx, sub.ID, provider, "history of asthma, low concern"); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	got, _ := f.subs.GetByID(ctx, sub.ID)
	if got.Status != StatusUnderReview {
		t.Errorf("status after note = %s, want under_review unchanged", got.Status)
	}

	if _, err := f.svc.AddNote(ctx, sub.ID, provider, ""); err == nil {
		t.Fatal("expected error for empty note")
	}
}

func TestSubmitAIFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.submit(t)

	fb := &AIFeedback{SubmissionID: sub.ID, ProviderID: uuid.New(), Helpful: true}
	if err := f.svc.SubmitAIFeedback(ctx, fb); err != nil {
		t.Fatalf("SubmitAIFeedback: %v", err)
	}
	got, _ := f.subs.GetByID(ctx, sub.ID)
	if got.Status != StatusSubmitted {
		t.Errorf("feedback must not touch status, got %s", got.Status)
	}

	if err := f.svc.SubmitAIFeedback(ctx, &AIFeedback{ProviderID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing submission id")
	}
}
