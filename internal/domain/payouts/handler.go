package payouts

import (
	"errors"
	"net/http"

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
	read := api.Group("", auth.RequireRole("admin", "staff", "partner"))
	read.GET("/partners/:partnerId/payout-account", h.GetAccount)
	read.GET("/partners/:partnerId/payout-entries", h.ListEntries)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/payout-entries", h.RecordEntry)
	admin.POST("/payout-entries/:id/mark-paid", h.MarkPaid)
	admin.POST("/partners/:partnerId/payout-account/rebuild", h.RebuildAccount)
}

func (h *Handler) RecordEntry(c echo.Context) error {
	var e PayoutEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.svc.RecordEntry(c.Request().Context(), &e)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientPending):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrInvalidSign):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"entry":   e,
		"account": acct,
	})
}

func (h *Handler) MarkPaid(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entry id")
	}
	if err := h.svc.MarkPaid(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetAccount(c echo.Context) error {
	partnerID, err := uuid.Parse(c.Param("partnerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid partner id")
	}
	acct, err := h.svc.Account(c.Request().Context(), partnerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "payout account not found")
	}
	return c.JSON(http.StatusOK, acct)
}

func (h *Handler) ListEntries(c echo.Context) error {
	partnerID, err := uuid.Parse(c.Param("partnerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid partner id")
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.Entries(c.Request().Context(), partnerID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) RebuildAccount(c echo.Context) error {
	partnerID, err := uuid.Parse(c.Param("partnerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid partner id")
	}
	acct, err := h.svc.RebuildAccount(c.Request().Context(), partnerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, acct)
}
