package partners

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the category of services a partner organization provides.
type Kind string

const (
	KindPharmacy Kind = "pharmacy"
	KindClinic   Kind = "clinic"
	KindLab      Kind = "lab"
	KindWellness Kind = "wellness"
)

var validKinds = map[Kind]bool{
	KindPharmacy: true, KindClinic: true, KindLab: true, KindWellness: true,
}

// Status is a partner's standing with the concierge network.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

var validStatuses = map[Status]bool{
	StatusPending: true, StatusActive: true, StatusSuspended: true,
}

// Partner is an external organization in the network.
type Partner struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrgName        string    `db:"org_name" json:"org_name"`
	Kind           Kind      `db:"kind" json:"kind"`
	ContactName    string    `db:"contact_name" json:"contact_name"`
	ContactEmail   string    `db:"contact_email" json:"contact_email"`
	ContactPhone   string    `db:"contact_phone" json:"contact_phone"`
	Address        string    `db:"address" json:"address"`
	Status         Status    `db:"status" json:"status"`
	CommissionRate float64   `db:"commission_rate" json:"commission_rate"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
