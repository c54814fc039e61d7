package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Send creates a message. A zero thread id starts a new thread keyed by
// the message's own id.
func (s *Service) Send(ctx context.Context, m *Message) error {
	if m.SenderID == uuid.Nil {
		return fmt.Errorf("sender_id is required")
	}
	if m.RecipientID == uuid.Nil {
		return fmt.Errorf("recipient_id is required")
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("body is required")
	}
	if m.Direction != DirectionInbound && m.Direction != DirectionOutbound {
		return fmt.Errorf("invalid direction: %s", m.Direction)
	}
	if m.ThreadID == uuid.Nil {
		m.ThreadID = uuid.New()
	}
	m.Status = StatusSent
	return s.repo.Create(ctx, m)
}

// MarkRead stamps read_at exactly once. Re-reading an already read or
// archived message changes nothing.
func (s *Service) MarkRead(ctx context.Context, id, readerID uuid.UUID) (*Message, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.RecipientID != readerID {
		return nil, fmt.Errorf("only the recipient can mark a message read")
	}
	if m.Status != StatusSent {
		return m, nil
	}
	now := s.now().UTC()
	m.Status = StatusRead
	m.ReadAt = &now
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	return m, nil
}

func (s *Service) Archive(ctx context.Context, id, ownerID uuid.UUID) (*Message, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.RecipientID != ownerID {
		return nil, fmt.Errorf("only the recipient can archive a message")
	}
	m.Status = StatusArchived
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	return m, nil
}

func (s *Service) Thread(ctx context.Context, threadID uuid.UUID) ([]*Message, error) {
	return s.repo.ListThread(ctx, threadID)
}

func (s *Service) Inbox(ctx context.Context, recipientID uuid.UUID, status Status, limit, offset int) ([]*Message, int, error) {
	return s.repo.ListInbox(ctx, recipientID, status, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, recipientID)
}
