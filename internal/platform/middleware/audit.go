package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/concierge/concierge/internal/platform/auth"
)

// AuditEntry captures who accessed what, when, from where, and how.
type AuditEntry struct {
	UserID     string
	UserRoles  []string
	Resource   string
	Action     string // read, create, update, delete, search
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries. Implemented by the audit domain;
// failures must not fail the audited request.
type AuditRecorder interface {
	RecordHTTP(ctx context.Context, entry AuditEntry)
}

// Audit returns middleware that emits a structured audit event for every
// mutating or data-reading API call, and hands it to the recorder when one
// is configured.
func Audit(logger zerolog.Logger, recorder AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// Health and metrics probes are noise, not access.
			if req.URL.Path == "/health" || req.URL.Path == "/health/db" {
				return next(c)
			}

			err := next(c)

			entry := AuditEntry{
				UserID:     auth.UserIDFromContext(req.Context()),
				UserRoles:  auth.RolesFromContext(req.Context()),
				Resource:   resourceFromPath(req.URL.Path),
				Action:     actionFromMethod(req.Method),
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				Path:       req.URL.Path,
				Method:     req.Method,
				Timestamp:  time.Now().UTC(),
				StatusCode: c.Response().Status,
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			logger.Info().
				Str("audit_user", entry.UserID).
				Str("audit_action", entry.Action).
				Str("audit_resource", entry.Resource).
				Str("request_id", entry.RequestID).
				Int("status", entry.StatusCode).
				Str("remote_ip", entry.IPAddress).
				Msg("audit")

			if recorder != nil {
				recorder.RecordHTTP(req.Context(), entry)
			}

			return err
		}
	}
}

// resourceFromPath extracts the resource segment from an API path,
// e.g. /api/v1/points-accounts/123 -> points-accounts.
func resourceFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/v1/")
	if trimmed == path {
		return ""
	}
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		return trimmed[:i]
	}
	return trimmed
}

func actionFromMethod(method string) string {
	switch method {
	case http.MethodGet:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
