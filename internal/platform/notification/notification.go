// Package notification delivers operational alerts raised by the domain
// layer, most importantly triage escalations bound for the urgent-care
// queue. Delivery is best-effort with bounded retry; domain operations
// never fail because an alert could not be sent.
package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Alert is a single outbound notification.
type Alert struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"` // escalation, payout, refill
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Priority  string            `json:"priority"` // low, normal, urgent
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	SentAt    *time.Time        `json:"sent_at,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Sender delivers an alert over some channel (pager queue, email, SMS).
type Sender interface {
	Send(ctx context.Context, alert Alert) error
}

// Notifier is the interface domain services depend on.
type Notifier interface {
	Notify(ctx context.Context, kind, subject, body, priority string, metadata map[string]string)
}

// Dispatcher fans alerts out to a Sender with bounded retry and keeps a
// small in-memory record of recent alerts for the ops endpoints.
type Dispatcher struct {
	sender     Sender
	logger     zerolog.Logger
	maxRetries int

	mu     sync.Mutex
	recent []Alert
}

const recentLimit = 200

func NewDispatcher(sender Sender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, logger: logger, maxRetries: 3}
}

// Notify builds and delivers an alert. Errors are logged, never returned;
// the caller's operation has already committed by the time this runs.
func (d *Dispatcher) Notify(ctx context.Context, kind, subject, body, priority string, metadata map[string]string) {
	alert := Alert{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		Body:      body,
		Priority:  priority,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	var err error
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if err = d.sender.Send(ctx, alert); err == nil {
			now := time.Now().UTC()
			alert.SentAt = &now
			break
		}
	}
	if err != nil {
		alert.Error = err.Error()
		d.logger.Error().Err(err).
			Str("alert_id", alert.ID).
			Str("kind", kind).
			Msg("alert delivery failed")
	}

	d.mu.Lock()
	d.recent = append(d.recent, alert)
	if len(d.recent) > recentLimit {
		d.recent = d.recent[len(d.recent)-recentLimit:]
	}
	d.mu.Unlock()
}

// Recent returns a copy of the most recently dispatched alerts, newest last.
func (d *Dispatcher) Recent() []Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Alert, len(d.recent))
	copy(out, d.recent)
	return out
}

// LogSender writes alerts to the structured log. It is the default sender
// until a real urgent-care queue integration is configured.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(_ context.Context, alert Alert) error {
	s.Logger.Warn().
		Str("alert_id", alert.ID).
		Str("kind", alert.Kind).
		Str("priority", alert.Priority).
		Str("subject", alert.Subject).
		Msg("alert")
	return nil
}

// NopNotifier discards alerts. Useful in tests.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string, string, string, map[string]string) {}

var _ Notifier = (*Dispatcher)(nil)
var _ Notifier = NopNotifier{}

// FailingSender is a Sender that always fails; exported for tests that
// exercise retry behavior.
type FailingSender struct{}

func (FailingSender) Send(context.Context, Alert) error {
	return fmt.Errorf("sender unavailable")
}
