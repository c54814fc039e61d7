package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one row in the audit log.
type Entry struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ActorID      string          `db:"actor_id" json:"actor_id"`
	ActorRoles   []string        `db:"actor_roles" json:"actor_roles"`
	Action       string          `db:"action" json:"action"`
	ResourceType string          `db:"resource_type" json:"resource_type"`
	ResourceID   *string         `db:"resource_id" json:"resource_id,omitempty"`
	Details      json.RawMessage `db:"details" json:"details,omitempty"`
	IPAddress    string          `db:"ip_address" json:"ip_address"`
	RequestID    string          `db:"request_id" json:"request_id"`
	RecordedAt   time.Time       `db:"recorded_at" json:"recorded_at"`
}

// Detail payloads are typed per action. Unknown actions keep whatever
// JSON they were given instead of being dropped.

// HTTPDetails is the payload for entries written by the request
// middleware.
type HTTPDetails struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// StatusChangeDetails is the payload for domain status transitions.
type StatusChangeDetails struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Reason *string `json:"reason,omitempty"`
}

func marshalDetails(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// Filter narrows a listing. Zero values mean no constraint.
type Filter struct {
	ActorID      string
	ResourceType string
	Action       string
	From         time.Time
	To           time.Time
}
