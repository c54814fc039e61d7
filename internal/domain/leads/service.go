package leads

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

func (s *Service) Create(ctx context.Context, l *Lead) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(l.Email) == "" && strings.TrimSpace(l.Phone) == "" {
		return fmt.Errorf("email or phone is required")
	}
	if l.Status == "" {
		l.Status = StatusNew
	}
	if !validStatuses[l.Status] {
		return fmt.Errorf("invalid status: %s", l.Status)
	}
	return s.repo.Create(ctx, l)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, l *Lead) error {
	if !validStatuses[l.Status] {
		return fmt.Errorf("invalid status: %s", l.Status)
	}
	return s.repo.Update(ctx, l)
}

// UpdateStatus moves a lead through the funnel. Any listed status is
// reachable from any other; the funnel is advisory, not a state machine.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Lead, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Status = status
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Assign(ctx context.Context, id, staffID uuid.UUID) (*Lead, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.AssignedTo = &staffID
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Lead, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status filter: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}
