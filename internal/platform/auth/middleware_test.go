package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runMiddleware(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, error, echo.Context) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var captured echo.Context
	handler := mw(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, err, captured
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"scheduler"},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err, captured := runMiddleware(JWTMiddleware(JWTConfig{SigningKey: testKey}), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := captured.Request().Context()
	if UserIDFromContext(ctx) != "user-1" {
		t.Errorf("expected user-1 in context, got %q", UserIDFromContext(ctx))
	}
	roles := RolesFromContext(ctx)
	if len(roles) != 1 || roles[0] != "scheduler" {
		t.Errorf("unexpected roles: %v", roles)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err, _ := runMiddleware(JWTMiddleware(JWTConfig{SigningKey: testKey}), req)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte("some-other-key"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	_, err, _ := runMiddleware(JWTMiddleware(JWTConfig{SigningKey: testKey}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong key, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err, _ := runMiddleware(JWTMiddleware(JWTConfig{SigningKey: testKey}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}

func TestJWTMiddleware_WrongIssuer(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err, _ := runMiddleware(JWTMiddleware(JWTConfig{SigningKey: testKey, Issuer: "bookability"}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong issuer, got %v", err)
	}
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	_, err, _ := runMiddleware(JWTMiddleware(JWTConfig{SigningKey: testKey}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for malformed header, got %v", err)
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err, captured := runMiddleware(DevAuthMiddleware(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	roles := RolesFromContext(captured.Request().Context())
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("dev auth should grant admin, got %v", roles)
	}
}
