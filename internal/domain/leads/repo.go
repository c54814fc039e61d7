package leads

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, l *Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	Update(ctx context.Context, l *Lead) error
	List(ctx context.Context, status Status, limit, offset int) ([]*Lead, int, error)
}
