package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func runSession(t *testing.T, token string) (string, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if token != "" {
        req.Header.Set(SessionTokenHeader, token)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    var got string
    h := Session(testSecret)(func(c echo.Context) error {
        got = SessionID(c)
        return c.NoContent(http.StatusOK)
    })
    if err := h(c); err != nil {
        t.Fatalf("middleware returned error: %v", err)
    }
    return got, rec
}

func TestSessionMintsTokenForNewVisitor(t *testing.T) {
    id, rec := runSession(t, "")
    if id == "" {
        t.Fatal("session id must be set for a fresh visitor")
    }
    if rec.Header().Get(SessionTokenHeader) == "" {
        t.Fatal("response must carry the minted session token")
    }
}

func TestSessionKeepsExistingSession(t *testing.T) {
    token, err := mintSessionToken(testSecret, "sess-keep")
    if err != nil {
        t.Fatalf("mint failed: %v", err)
    }
    id, rec := runSession(t, token)
    if id != "sess-keep" {
        t.Fatalf("session id = %q, want sess-keep", id)
    }
    if rec.Header().Get(SessionTokenHeader) != "" {
        t.Fatal("a valid token must not trigger a re-mint")
    }
}

func TestSessionReplacesTamperedToken(t *testing.T) {
    token, err := mintSessionToken("other-secret", "sess-forged")
    if err != nil {
        t.Fatalf("mint failed: %v", err)
    }
    id, rec := runSession(t, token)
    if id == "sess-forged" {
        t.Fatal("a token signed with the wrong secret must not be honoured")
    }
    if id == "" || rec.Header().Get(SessionTokenHeader) == "" {
        t.Fatal("a tampered token must yield a fresh session and token")
    }
}
