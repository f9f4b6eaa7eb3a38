package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareMintsSessionCookie(t *testing.T) {
	t.Parallel()

	var seen string
	handler := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if seen == "" {
		t.Fatal("expected a session ID in the request context")
	}
	if !isValidSessionID(seen) {
		t.Fatalf("minted session ID %q does not match the expected shape", seen)
	}

	cookies := rec.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			found = c
		}
	}
	if found == nil {
		t.Fatal("expected the session cookie to be set")
	}
	if found.Value != seen {
		t.Fatalf("cookie %q does not match context session %q", found.Value, seen)
	}
	if !found.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
}

func TestMiddlewareKeepsExistingIdentity(t *testing.T) {
	t.Parallel()

	existing, err := generateSessionID()
	if err != nil {
		t.Fatalf("generateSessionID failed: %v", err)
	}

	var seen string
	handler := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: existing})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != existing {
		t.Fatalf("middleware replaced a valid identity: got %q, want %q", seen, existing)
	}
}

func TestMiddlewareRejectsMalformedIdentity(t *testing.T) {
	t.Parallel()

	var seen string
	handler := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sid_<script>"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen == "sid_<script>" {
		t.Fatal("malformed cookie value must be replaced")
	}
	if !isValidSessionID(seen) {
		t.Fatalf("replacement identity %q is malformed", seen)
	}
}

func TestSessionIDFromContextDefault(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SessionIDFromContext(req.Context()); got != "" {
		t.Fatalf("expected empty session outside the middleware, got %q", got)
	}
}
