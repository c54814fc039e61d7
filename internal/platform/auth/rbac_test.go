package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(roles ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	req = req.WithContext(ctx)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRoleAllows(t *testing.T) {
	called := false
	h := RequireRole("staff")(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := h(contextWithRoles("staff")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Error("next handler not called for matching role")
	}
}

func TestRequireRoleAdminBypass(t *testing.T) {
	called := false
	h := RequireRole("provider")(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := h(contextWithRoles("admin")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Error("admin should pass any role check")
	}
}

func TestRequireRoleForbidden(t *testing.T) {
	h := RequireRole("provider")(func(c echo.Context) error { return nil })
	err := h(contextWithRoles("member"))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireRoleNoRoles(t *testing.T) {
	h := RequireRole("staff")(func(c echo.Context) error { return nil })
	if err := h(contextWithRoles()); err == nil {
		t.Fatal("expected error for request without roles")
	}
}
