package messaging

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	Update(ctx context.Context, m *Message) error
	ListThread(ctx context.Context, threadID uuid.UUID) ([]*Message, error)
	ListInbox(ctx context.Context, recipientID uuid.UUID, status Status, limit, offset int) ([]*Message, int, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
}
