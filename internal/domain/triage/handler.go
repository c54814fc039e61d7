package triage

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/concierge/concierge/internal/platform/auth"
	"github.com/concierge/concierge/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	intake := api.Group("", auth.RequireRole("admin", "staff", "member"))
	intake.POST("/triage-submissions", h.CreateSubmission)
	intake.POST("/triage-submissions/:id/files", h.AttachFile)

	review := api.Group("", auth.RequireRole("admin", "provider"))
	review.GET("/triage-submissions", h.ListSubmissions)
	review.GET("/triage-submissions/:id", h.OpenSubmission)
	review.GET("/triage-submissions/:id/notes", h.ListNotes)
	review.GET("/triage-submissions/:id/replies", h.ListReplies)
	review.GET("/triage-submissions/:id/files", h.ListFiles)
	review.GET("/triage-submissions/:id/activity", h.ListActivity)
	review.POST("/triage-submissions/:id/notes", h.AddNote)
	review.POST("/triage-submissions/:id/replies", h.SendReply)
	review.POST("/triage-submissions/:id/review", h.MarkReviewed)
	review.POST("/triage-submissions/:id/schedule", h.Schedule)
	review.POST("/triage-submissions/:id/escalate", h.Escalate)
	review.POST("/triage-submissions/:id/ai-feedback", h.SubmitAIFeedback)

	patient := api.Group("", auth.RequireRole("admin", "staff", "provider", "member"))
	patient.GET("/patients/:patientId/triage-submissions", h.ListByPatient)
}

func (h *Handler) CreateSubmission(c echo.Context) error {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSubmission(c.Request().Context(), &sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

// OpenSubmission returns a submission and, on the first open, moves it
// into review.
func (h *Handler) OpenSubmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	sub, err := h.svc.Open(c.Request().Context(), id, actorID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "submission not found")
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *Handler) ListSubmissions(c echo.Context) error {
	p := pagination.FromContext(c)
	status := Status(c.QueryParam("status"))
	urgency := Urgency(c.QueryParam("urgency"))
	items, total, err := h.svc.List(c.Request().Context(), status, urgency, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

type contentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) AddNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	note, err := h.svc.AddNote(c.Request().Context(), id, actorID(c), req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *Handler) SendReply(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sub, err := h.svc.SendReply(c.Request().Context(), id, actorID(c), req.Content)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *Handler) MarkReviewed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	sub, err := h.svc.MarkReviewed(c.Request().Context(), id, actorID(c))
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *Handler) Schedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	var req struct {
		At time.Time `json:"at"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sub, err := h.svc.Schedule(c.Request().Context(), id, actorID(c), req.At)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *Handler) Escalate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sub, err := h.svc.Escalate(c.Request().Context(), id, actorID(c), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrReasonRequired):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *Handler) SubmitAIFeedback(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	var fb AIFeedback
	if err := c.Bind(&fb); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fb.SubmissionID = id
	fb.ProviderID = actorID(c)
	if err := h.svc.SubmitAIFeedback(c.Request().Context(), &fb); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, fb)
}

func (h *Handler) AttachFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	var f SubmissionFile
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.SubmissionID = id
	if err := h.svc.AttachFile(c.Request().Context(), &f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) ListNotes(c echo.Context) error {
	return h.listChild(c, func(ctx echo.Context, id uuid.UUID) (interface{}, error) {
		return h.svc.Notes(ctx.Request().Context(), id)
	})
}

func (h *Handler) ListReplies(c echo.Context) error {
	return h.listChild(c, func(ctx echo.Context, id uuid.UUID) (interface{}, error) {
		return h.svc.Replies(ctx.Request().Context(), id)
	})
}

func (h *Handler) ListFiles(c echo.Context) error {
	return h.listChild(c, func(ctx echo.Context, id uuid.UUID) (interface{}, error) {
		return h.svc.Files(ctx.Request().Context(), id)
	})
}

func (h *Handler) ListActivity(c echo.Context) error {
	return h.listChild(c, func(ctx echo.Context, id uuid.UUID) (interface{}, error) {
		return h.svc.Activity(ctx.Request().Context(), id)
	})
}

func (h *Handler) listChild(c echo.Context, load func(echo.Context, uuid.UUID) (interface{}, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submission id")
	}
	items, err := load(c, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func actorID(c echo.Context) uuid.UUID {
	id, _ := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	return id
}
