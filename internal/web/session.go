package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ebonmoor/questhall/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

const sessionCookieName = "qh_session"

// sessionCodec signs and verifies the session cookie payload.
//
// The cookie carries a compact HS256 JWT with the actor's id, login, and
// role, so the server holds no per-session state.
type sessionCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func newSessionCodec(key []byte, ttl time.Duration) *sessionCodec {
	return &sessionCodec{key: key, ttl: ttl, now: time.Now}
}

// issue returns a signed session token for the authenticated user.
func (c *sessionCodec) issue(user auth.User) (string, error) {
	now := c.now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"login": user.Login,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(c.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// verify parses a session token and returns the actor identity it carries.
func (c *sessionCodec) verify(token string) (auth.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return auth.User{}, fmt.Errorf("parse session token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return auth.User{}, fmt.Errorf("unexpected session claims")
	}

	user := auth.User{}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if login, ok := claims["login"].(string); ok {
		user.Login = login
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = role
	}
	if user.ID == "" {
		return auth.User{}, fmt.Errorf("session token missing subject")
	}
	return user, nil
}

// setSessionCookie writes the signed session cookie to the response.
func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// actorFromRequest reads and verifies the session cookie.
// Returns false when no valid session is present.
func (c *sessionCodec) actorFromRequest(r *http.Request) (auth.User, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return auth.User{}, false
	}
	user, err := c.verify(cookie.Value)
	if err != nil {
		return auth.User{}, false
	}
	return user, true
}
