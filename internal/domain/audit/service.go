package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/concierge/concierge/internal/platform/middleware"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RecordHTTP persists an entry produced by the request middleware. It
// satisfies middleware.AuditRecorder; a storage failure is logged and
// swallowed because the audited request must not fail.
func (s *Service) RecordHTTP(ctx context.Context, me middleware.AuditEntry) {
	e := &Entry{
		ActorID:      me.UserID,
		ActorRoles:   me.UserRoles,
		Action:       me.Action,
		ResourceType: me.Resource,
		IPAddress:    me.IPAddress,
		RequestID:    me.RequestID,
		RecordedAt:   me.Timestamp,
		Details: marshalDetails(HTTPDetails{
			Method:     me.Method,
			Path:       me.Path,
			StatusCode: me.StatusCode,
			UserAgent:  me.UserAgent,
		}),
	}
	if err := s.repo.Append(ctx, e); err != nil {
		s.logger.Error().Err(err).
			Str("actor", e.ActorID).
			Str("resource", e.ResourceType).
			Msg("audit write failed")
	}
}

// RecordStatusChange persists a domain-level transition entry.
func (s *Service) RecordStatusChange(ctx context.Context, actorID, resourceType, resourceID, from, to string, reason *string) {
	e := &Entry{
		ActorID:      actorID,
		Action:       "status_change",
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		RecordedAt:   time.Now().UTC(),
		Details:      marshalDetails(StatusChangeDetails{From: from, To: to, Reason: reason}),
	}
	if err := s.repo.Append(ctx, e); err != nil {
		s.logger.Error().Err(err).
			Str("actor", actorID).
			Str("resource", resourceType).
			Msg("audit write failed")
	}
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
