package pharmacy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_Approve(t *testing.T) {
	svc, meds, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	pending := seedPending(t, svc, meds, 3)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pending.ID.String())

	if err := h.Approve(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var out RefillRequest
	json.Unmarshal(rec.Body.Bytes(), &out)
	if out.Status != RefillApproved {
		t.Errorf("expected approved, got %s", out.Status)
	}
}

func TestHandler_Reject_MissingReason(t *testing.T) {
	svc, meds, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	pending := seedPending(t, svc, meds, 3)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pending.ID.String())

	err := h.Reject(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", he.Code)
	}
}

func TestHandler_Approve_AlreadyDecided(t *testing.T) {
	svc, meds, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	pending := seedPending(t, svc, meds, 3)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pending.ID.String())
	if err := h.Approve(c); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec2)
	c2.SetParamNames("id")
	c2.SetParamValues(pending.ID.String())

	err := h.Approve(c2)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", he.Code)
	}
}
