package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/concierge/concierge/internal/platform/middleware"
)

type mockRepo struct {
	items     []*Entry
	appendErr error
}

func (m *mockRepo) Append(_ context.Context, e *Entry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.items = append(m.items, e)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	var out []*Entry
	for _, e := range m.items {
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if f.ResourceType != "" && e.ResourceType != f.ResourceType {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if !f.From.IsZero() && e.RecordedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.RecordedAt.After(f.To) {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func TestRecordHTTP(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())

	svc.RecordHTTP(context.Background(), middleware.AuditEntry{
		UserID:     "user-1",
		UserRoles:  []string{"staff"},
		Resource:   "leads",
		Action:     "create",
		Method:     "POST",
		Path:       "/api/v1/leads",
		StatusCode: 201,
		Timestamp:  time.Now().UTC(),
		RequestID:  "req-1",
	})

	if len(repo.items) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.items))
	}
	e := repo.items[0]
	if e.ActorID != "user-1" || e.ResourceType != "leads" || e.Action != "create" {
		t.Errorf("entry mismatch: %+v", e)
	}

	var d HTTPDetails
	if err := json.Unmarshal(e.Details, &d); err != nil {
		t.Fatalf("details decode: %v", err)
	}
	if d.StatusCode != 201 || d.Path != "/api/v1/leads" {
		t.Errorf("details mismatch: %+v", d)
	}
}

func TestRecordHTTPSwallowsStorageError(t *testing.T) {
	repo := &mockRepo{appendErr: errors.New("disk full")}
	svc := NewService(repo, zerolog.Nop())

	// Must not panic or propagate.
	svc.RecordHTTP(context.Background(), middleware.AuditEntry{UserID: "u", Resource: "r", Action: "read"})
}

func TestRecordStatusChange(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())

	reason := "chest pain"
	svc.RecordStatusChange(context.Background(), "provider-1", "triage-submissions", "sub-1",
		"under_review", "escalated", &reason)

	if len(repo.items) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.items))
	}
	var d StatusChangeDetails
	if err := json.Unmarshal(repo.items[0].Details, &d); err != nil {
		t.Fatalf("details decode: %v", err)
	}
	if d.From != "under_review" || d.To != "escalated" || d.Reason == nil {
		t.Errorf("details mismatch: %+v", d)
	}
}

func TestListFilters(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	now := time.Now().UTC()
	repo.items = []*Entry{
		{ActorID: "a", ResourceType: "leads", Action: "read", RecordedAt: now.Add(-2 * time.Hour)},
		{ActorID: "a", ResourceType: "partners", Action: "create", RecordedAt: now.Add(-time.Hour)},
		{ActorID: "b", ResourceType: "leads", Action: "read", RecordedAt: now},
	}

	items, _, _ := svc.List(ctx, Filter{ActorID: "a"}, 20, 0)
	if len(items) != 2 {
		t.Errorf("actor filter: got %d, want 2", len(items))
	}
	items, _, _ = svc.List(ctx, Filter{ResourceType: "leads"}, 20, 0)
	if len(items) != 2 {
		t.Errorf("resource filter: got %d, want 2", len(items))
	}
	items, _, _ = svc.List(ctx, Filter{From: now.Add(-90 * time.Minute)}, 20, 0)
	if len(items) != 2 {
		t.Errorf("time filter: got %d, want 2", len(items))
	}
}
