package partners

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Partner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	Update(ctx context.Context, p *Partner) error
	List(ctx context.Context, status Status, kind Kind, limit, offset int) ([]*Partner, int, error)
}
