package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRoles(roles ...string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	return req.WithContext(ctx)
}

func runRBAC(mw echo.MiddlewareFunc, req *http.Request) error {
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRequireRole_Allowed(t *testing.T) {
	if err := runRBAC(RequireRole("scheduler"), requestWithRoles("scheduler")); err != nil {
		t.Errorf("scheduler should pass a scheduler gate: %v", err)
	}
}

func TestRequireRole_AdminAlwaysPasses(t *testing.T) {
	if err := runRBAC(RequireRole("partner"), requestWithRoles("admin")); err != nil {
		t.Errorf("admin should pass every gate: %v", err)
	}
}

func TestRequireRole_AnyOf(t *testing.T) {
	if err := runRBAC(RequireRole("scheduler", "partner"), requestWithRoles("partner")); err != nil {
		t.Errorf("partner should pass a scheduler-or-partner gate: %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	err := runRBAC(RequireRole("admin"), requestWithRoles("partner"))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireRole_NoRoles(t *testing.T) {
	err := runRBAC(RequireRole("scheduler"), httptest.NewRequest(http.MethodGet, "/", nil))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 for request without roles, got %v", err)
	}
}
