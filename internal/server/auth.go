package server

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// sessionCookie names the cookie carrying the signed session id. The cookie
// holds only the id; all state stays server-side.
const sessionCookie = "scout_session"

// signSession issues an HS256 token whose subject is the session id.
func signSession(sessionID string, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": sessionID,
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// sessionIDFromCookie extracts and verifies the session id; empty when the
// cookie is missing, expired, or tampered with.
func sessionIDFromCookie(c echo.Context, secret []byte) string {
	ck, err := c.Cookie(sessionCookie)
	if err != nil || ck.Value == "" {
		return ""
	}
	parsed, err := jwt.Parse(ck.Value, func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

// setSessionCookie writes the signed cookie for the session id.
func setSessionCookie(c echo.Context, sessionID string, secret []byte, ttl time.Duration) error {
	token, err := signSession(sessionID, secret, ttl)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
