package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func jwksDocument(t *testing.T, kid string, pub *rsa.PublicKey) []byte {
	t.Helper()
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())
	return []byte(fmt.Sprintf(
		`{"keys":[{"kty":"RSA","kid":%q,"use":"sig","alg":"RS256","n":%q,"e":%q}]}`,
		kid, n, e))
}

// newIssuer stands up a minimal OIDC issuer: a discovery document pointing at
// a JWKS endpoint serving one RSA key.
func newIssuer(t *testing.T, kid string, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	var ts *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"issuer":%q,"jwks_uri":%q}`, ts.URL, ts.URL+"/keys")
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		w.Write(jwksDocument(t, kid, pub))
	})
	ts = httptest.NewServer(mux)
	return ts
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// An issuer-only configuration (no signing key) must authenticate a token the
// issuer actually signed, by discovering and using the issuer's JWKS.
func TestJWTMiddleware_ExternalIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	issuer := newIssuer(t, "k1", &key.PublicKey)
	defer issuer.Close()

	signed := signRS256(t, key, "k1", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ext-user",
			Issuer:    issuer.URL,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"admin"},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	_, err, captured := runMiddleware(JWTMiddleware(JWTConfig{Issuer: issuer.URL}), req)
	if err != nil {
		t.Fatalf("expected external token to authenticate, got %v", err)
	}
	ctx := captured.Request().Context()
	if UserIDFromContext(ctx) != "ext-user" {
		t.Errorf("expected ext-user in context, got %q", UserIDFromContext(ctx))
	}
	roles := RolesFromContext(ctx)
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("unexpected roles: %v", roles)
	}
}

// In JWKS mode an HS256 token must be rejected even if it parses; only the
// issuer's RS256 keys are acceptable.
func TestJWTMiddleware_ExternalIssuerRejectsHS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	issuer := newIssuer(t, "k1", &key.PublicKey)
	defer issuer.Close()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ext-user",
			Issuer:    issuer.URL,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, _ := token.SignedString([]byte("shared-secret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	_, err, _ = runMiddleware(JWTMiddleware(JWTConfig{Issuer: issuer.URL, JWKSURL: issuer.URL + "/keys"}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for HS256 token in JWKS mode, got %v", err)
	}
}

func TestJWTMiddleware_ExternalIssuerUnknownKid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	issuer := newIssuer(t, "k1", &key.PublicKey)
	defer issuer.Close()

	signed := signRS256(t, key, "rotated-away", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ext-user",
			Issuer:    issuer.URL,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	_, err, _ = runMiddleware(JWTMiddleware(JWTConfig{Issuer: issuer.URL, JWKSURL: issuer.URL + "/keys"}), req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown kid, got %v", err)
	}
}

func TestJWKSCache_UnknownKid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	issuer := newIssuer(t, "k1", &key.PublicKey)
	defer issuer.Close()

	cache := NewJWKSCache(issuer.URL+"/keys", time.Minute)
	if _, err := cache.GetKey("k1"); err != nil {
		t.Fatalf("expected k1 to resolve, got %v", err)
	}
	if _, err := cache.GetKey("missing"); err == nil {
		t.Error("expected an error for an unknown kid")
	}
}

func TestDiscoverJWKSURL(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	issuer := newIssuer(t, "k1", &key.PublicKey)
	defer issuer.Close()

	url, err := DiscoverJWKSURL(issuer.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != issuer.URL+"/keys" {
		t.Errorf("expected %s, got %s", issuer.URL+"/keys", url)
	}
}
