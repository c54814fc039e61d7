package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Direction says who sent the message.
type Direction string

const (
	DirectionInbound  Direction = "inbound"  // member -> care team
	DirectionOutbound Direction = "outbound" // care team -> member
)

// Status tracks a message through its inbox lifecycle.
type Status string

const (
	StatusSent     Status = "sent"
	StatusRead     Status = "read"
	StatusArchived Status = "archived"
)

// Message is one entry in a member/provider conversation thread.
type Message struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ThreadID    uuid.UUID  `db:"thread_id" json:"thread_id"`
	SenderID    uuid.UUID  `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	Direction   Direction  `db:"direction" json:"direction"`
	Subject     string     `db:"subject" json:"subject"`
	Body        string     `db:"body" json:"body"`
	Status      Status     `db:"status" json:"status"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
