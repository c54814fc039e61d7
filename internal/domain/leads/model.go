package leads

import (
	"time"

	"github.com/google/uuid"
)

// Status is a lead's position in the sales funnel.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusClosed    Status = "closed"
)

var validStatuses = map[Status]bool{
	StatusNew: true, StatusContacted: true, StatusQualified: true,
	StatusConverted: true, StatusClosed: true,
}

// Lead is a prospective member captured from an intake form or referral.
type Lead struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Email      string     `db:"email" json:"email"`
	Phone      string     `db:"phone" json:"phone"`
	Source     string     `db:"source" json:"source"`
	Status     Status     `db:"status" json:"status"`
	Notes      string     `db:"notes" json:"notes"`
	AssignedTo *uuid.UUID `db:"assigned_to" json:"assigned_to,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
