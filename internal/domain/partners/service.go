package partners

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrSuspended means an operation was attempted against a partner that
// is suspended from the network. Payouts check this before paying.
var ErrSuspended = errors.New("partner is suspended")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Partner) error {
	if strings.TrimSpace(p.OrgName) == "" {
		return fmt.Errorf("org_name is required")
	}
	if !validKinds[p.Kind] {
		return fmt.Errorf("invalid kind: %s", p.Kind)
	}
	if p.CommissionRate < 0 || p.CommissionRate > 1 {
		return fmt.Errorf("commission_rate must be between 0 and 1")
	}
	// New partners always enter moderation.
	p.Status = StatusPending
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Partner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Partner) error {
	if !validKinds[p.Kind] {
		return fmt.Errorf("invalid kind: %s", p.Kind)
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	if p.CommissionRate < 0 || p.CommissionRate > 1 {
		return fmt.Errorf("commission_rate must be between 0 and 1")
	}
	return s.repo.Update(ctx, p)
}

// Moderate resolves a pending partner or flips an existing one between
// active and suspended.
func (s *Service) Moderate(ctx context.Context, id uuid.UUID, status Status) (*Partner, error) {
	if status != StatusActive && status != StatusSuspended {
		return nil, fmt.Errorf("moderation status must be active or suspended, got %s", status)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RequireActive loads a partner and fails when it cannot transact.
// Callers in other domains use this as the payment eligibility gate.
func (s *Service) RequireActive(ctx context.Context, id uuid.UUID) (*Partner, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusSuspended {
		return nil, ErrSuspended
	}
	if p.Status != StatusActive {
		return nil, fmt.Errorf("partner is not active: %s", p.Status)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, status Status, kind Kind, limit, offset int) ([]*Partner, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status filter: %s", status)
	}
	if kind != "" && !validKinds[kind] {
		return nil, 0, fmt.Errorf("invalid kind filter: %s", kind)
	}
	return s.repo.List(ctx, status, kind, limit, offset)
}
