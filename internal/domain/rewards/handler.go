package rewards

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
	readGroup := api.Group("", auth.RequireRole("admin", "staff", "provider"))
	readGroup.GET("/points-accounts", h.ListAccounts)
	readGroup.GET("/points-accounts/:ownerId", h.GetAccount)
	readGroup.GET("/points-accounts/:ownerId/summary", h.GetSummary)
	readGroup.GET("/points-accounts/:ownerId/transactions", h.ListTransactions)
	readGroup.GET("/reward-tiers", h.ListTiers)
	readGroup.GET("/reward-tiers/:id", h.GetTier)

	writeGroup := api.Group("", auth.RequireRole("admin", "staff"))
	writeGroup.POST("/points-transactions", h.RecordTransaction)
	writeGroup.POST("/points-accounts/:ownerId/rebuild", h.RebuildAccount)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/reward-tiers", h.CreateTier)
	adminGroup.PUT("/reward-tiers/:id", h.UpdateTier)
	adminGroup.DELETE("/reward-tiers/:id", h.DeleteTier)
	adminGroup.POST("/reward-tiers/validate", h.ValidateCatalog)
}

func (h *Handler) RecordTransaction(c echo.Context) error {
	var t PointsTransaction
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.svc.RecordTransaction(c.Request().Context(), &t)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrInvalidSign):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"transaction": t,
		"account":     acct,
	})
}

func (h *Handler) GetAccount(c echo.Context) error {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid owner id")
	}
	acct, err := h.svc.GetAccount(c.Request().Context(), ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "points account not found")
	}
	return c.JSON(http.StatusOK, acct)
}

func (h *Handler) GetSummary(c echo.Context) error {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid owner id")
	}
	summary, err := h.svc.Summary(c.Request().Context(), ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "points account not found")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListAccounts(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAccounts(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListTransactions(c echo.Context) error {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid owner id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListTransactions(c.Request().Context(), ownerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) RebuildAccount(c echo.Context) error {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid owner id")
	}
	acct, err := h.svc.RebuildAccount(c.Request().Context(), ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, acct)
}

// -- Tier administration --

func (h *Handler) CreateTier(c echo.Context) error {
	var t RewardTier
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateTier(c.Request().Context(), &t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTier(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetTier(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "tier not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTier(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var t RewardTier
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	if err := h.svc.UpdateTier(c.Request().Context(), &t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTier(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteTier(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTiers(c echo.Context) error {
	tiers, err := h.svc.ListTiers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tiers)
}

func (h *Handler) ValidateCatalog(c echo.Context) error {
	if err := h.svc.CheckCatalog(c.Request().Context()); err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"valid": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"valid": true})
}
