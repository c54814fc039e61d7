package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role decides what a user can reach. Admin passes every role check.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleProvider Role = "provider"
	RolePartner  Role = "partner"
	RoleMember   Role = "member"
)

var validRoles = map[Role]bool{
	RoleAdmin: true, RoleStaff: true, RoleProvider: true,
	RolePartner: true, RoleMember: true,
}

// Status is a user's account state. Users are disabled, never deleted.
type Status string

const (
	StatusInvited  Status = "invited"
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

type User struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Email     string     `db:"email" json:"email"`
	Name      string     `db:"name" json:"name"`
	Role      Role       `db:"role" json:"role"`
	Status    Status     `db:"status" json:"status"`
	PartnerID *uuid.UUID `db:"partner_id" json:"partner_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
