package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Invite creates a user in the invited state. Partner users must carry
// their partner link.
func (s *Service) Invite(ctx context.Context, u *User) error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email: %s", u.Email)
	}
	if !validRoles[u.Role] {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	if u.Role == RolePartner && u.PartnerID == nil {
		return fmt.Errorf("partner users require a partner_id")
	}
	if existing, err := s.repo.GetByEmail(ctx, u.Email); err == nil && existing != nil {
		return fmt.Errorf("email already in use")
	}
	u.Status = StatusInvited
	return s.repo.Create(ctx, u)
}

// Activate completes an invitation.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status == StatusDisabled {
		return nil, fmt.Errorf("cannot activate a disabled user")
	}
	u.Status = StatusActive
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Disable turns access off without deleting the record; the audit trail
// keeps referring to the user.
func (s *Service) Disable(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Status = StatusDisabled
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangeRole(ctx context.Context, id uuid.UUID, role Role) (*User, error) {
	if !validRoles[role] {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == RolePartner && u.PartnerID == nil {
		return nil, fmt.Errorf("partner users require a partner_id")
	}
	u.Role = role
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, role Role, status Status, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, role, status, limit, offset)
}
