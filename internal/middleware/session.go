package middleware // declare the middleware package; contains reusable HTTP middleware functions

// session.go implements the anonymous checkout session. There are no user
// accounts: every browser gets an opaque session id, minted on first
// contact and carried in a signed token so one session cannot release or
// finalize another session's holds. The session id is threaded explicitly
// through every hold manager and finalizer call; nothing in the core reads
// ambient session state.

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionTokenHeader carries the session token in both directions: clients
// echo back the value the server minted for them.
const SessionTokenHeader = "X-Session-Token"

// sessionContextKey is where the middleware stores the session id.
const sessionContextKey = "session_id"

// sessionTokenTTL bounds how long a minted token stays valid.  It is far
// longer than any hold TTL; an expired token simply yields a fresh session.
const sessionTokenTTL = 24 * time.Hour

// Session returns an Echo middleware that resolves the caller's anonymous
// session.  A valid token in the request header keeps the existing session
// id; anything else (missing, expired, tampered) mints a fresh id and
// returns its token in the response header.  The middleware never rejects
// a request: an anonymous visitor is always given a session.
func Session(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, ok := parseSessionToken(c.Request().Header.Get(SessionTokenHeader), secret); ok {
				c.Set(sessionContextKey, id)
				return next(c)
			}

			id := uuid.NewString()
			token, err := mintSessionToken(secret, id)
			if err != nil {
				return echo.NewHTTPError(500, "failed to establish session")
			}
			c.Response().Header().Set(SessionTokenHeader, token)
			c.Set(sessionContextKey, id)
			return next(c)
		}
	}
}

// SessionID extracts the session id placed in the context by Session.
// Returns an empty string when the middleware did not run.
func SessionID(c echo.Context) string {
	if v, ok := c.Get(sessionContextKey).(string); ok {
		return v
	}
	return ""
}

// mintSessionToken signs an HS256 JWT whose subject is the session id.
func mintSessionToken(secret, sessionID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": sessionID,
		"exp": now.Add(sessionTokenTTL).Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// parseSessionToken validates a token and recovers its session id.
func parseSessionToken(raw, secret string) (string, bool) {
	if raw == "" {
		return "", false
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// reject any signing method other than HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}
