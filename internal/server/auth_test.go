package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// sessionIDFromToken verifies a raw token string outside of a request, for
// asserting on server-side state from handler tests.
func sessionIDFromToken(t *testing.T, token string, secret []byte) string {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	sub, _ := claims["sub"].(string)
	return sub
}

func contextWithCookie(value string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: value})
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestSessionCookieRoundTrip(t *testing.T) {
	secret := []byte("round-trip-secret")
	token, err := signSession("sess-42", secret, time.Hour)
	if err != nil {
		t.Fatalf("signSession: %v", err)
	}
	if got := sessionIDFromCookie(contextWithCookie(token), secret); got != "sess-42" {
		t.Fatalf("got %q, want sess-42", got)
	}
}

func TestSessionCookieRejectsTampering(t *testing.T) {
	secret := []byte("round-trip-secret")
	token, err := signSession("sess-42", secret, time.Hour)
	if err != nil {
		t.Fatalf("signSession: %v", err)
	}

	if got := sessionIDFromCookie(contextWithCookie(token+"x"), secret); got != "" {
		t.Fatalf("tampered token accepted: %q", got)
	}
	if got := sessionIDFromCookie(contextWithCookie(token), []byte("other-secret")); got != "" {
		t.Fatalf("wrong secret accepted: %q", got)
	}
}

func TestSessionCookieRejectsExpiredToken(t *testing.T) {
	secret := []byte("round-trip-secret")
	token, err := signSession("sess-42", secret, -time.Minute)
	if err != nil {
		t.Fatalf("signSession: %v", err)
	}
	if got := sessionIDFromCookie(contextWithCookie(token), secret); got != "" {
		t.Fatalf("expired token accepted: %q", got)
	}
}

func TestSessionCookieMissing(t *testing.T) {
	if got := sessionIDFromCookie(contextWithCookie(""), []byte("s")); got != "" {
		t.Fatalf("got %q for missing cookie", got)
	}
}
