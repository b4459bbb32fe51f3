package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/cookiejwt"
)

func newStorage(t *testing.T) *cookiejwt.JWTCookieStorage {
	t.Helper()
	cfg := cookiejwt.DefaultConfig()
	cfg.Cookie.Name = "session"
	cfg.Cookie.Secrets = []string{"s3cr3t"}
	cfg.Token.Sign = true
	s, err := cookiejwt.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func sessionCookie(t *testing.T, s *cookiejwt.JWTCookieStorage, data cookiejwt.Data) *http.Cookie {
	t.Helper()
	value, err := s.CommitSession(context.Background(), cookiejwt.NewSession(data, ""))
	if err != nil {
		t.Fatalf("CommitSession failed: %v", err)
	}
	c, err := http.ParseSetCookie(value)
	if err != nil {
		t.Fatalf("ParseSetCookie failed: %v", err)
	}
	return c
}

func TestSessionLoadsIntoContext(t *testing.T) {
	storage := newStorage(t)

	var got any
	h := Session(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			t.Error("expected session in context")
			return
		}
		got, _ = sess.Get("uid")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, storage, cookiejwt.Data{"uid": "u1"}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "u1" {
		t.Fatalf("expected uid u1, got %#v", got)
	}
}

func TestSessionWithoutCookieIsEmpty(t *testing.T) {
	storage := newStorage(t)

	called := false
	h := Session(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		sess, ok := SessionFromContext(r.Context())
		if !ok || sess.Len() != 0 || sess.ID() != "" {
			t.Error("expected empty session")
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("expected handler to run without a cookie")
	}
}

func TestSessionNilStorage(t *testing.T) {
	h := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestCommitWritesSetCookie(t *testing.T) {
	storage := newStorage(t)

	h := Session(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		sess.Set("uid", "u7")
		if err := Commit(w, r, storage); err != nil {
			t.Errorf("Commit failed: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))

	setCookie := rr.Header().Get("Set-Cookie")
	if !strings.HasPrefix(setCookie, "session=") {
		t.Fatalf("expected session Set-Cookie, got %q", setCookie)
	}

	c, err := http.ParseSetCookie(setCookie)
	if err != nil {
		t.Fatalf("ParseSetCookie failed: %v", err)
	}
	loaded, _ := storage.GetSession(context.Background(), c.Name+"="+c.Value)
	if v, _ := loaded.Get("uid"); v != "u7" {
		t.Fatalf("expected committed uid, got %#v", v)
	}
}

func TestCommitWithoutSessionMiddleware(t *testing.T) {
	storage := newStorage(t)
	rr := httptest.NewRecorder()
	err := Commit(rr, httptest.NewRequest(http.MethodGet, "/", nil), storage)
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestCommitOversizeReturnsError(t *testing.T) {
	storage := newStorage(t)

	h := Session(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		sess.Set("pad", strings.Repeat("x", 5000))
		err := Commit(w, r, storage)
		if !errors.Is(err, cookiejwt.ErrCookieTooLarge) {
			t.Errorf("expected ErrCookieTooLarge, got %v", err)
		}
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Header().Get("Set-Cookie") != "" {
		t.Fatal("expected no Set-Cookie on failure")
	}
}

func TestDestroyClearsCookie(t *testing.T) {
	storage := newStorage(t)

	h := Session(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := Destroy(w, r, storage); err != nil {
			t.Errorf("Destroy failed: %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(sessionCookie(t, storage, cookiejwt.Data{"uid": "u1"}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	setCookie := rr.Header().Get("Set-Cookie")
	if !strings.HasPrefix(setCookie, "session=;") || !strings.Contains(setCookie, "Expires=Thu, 01 Jan 1970 00:00:00 GMT") {
		t.Fatalf("expected clearing cookie, got %q", setCookie)
	}
}

func TestRequireToken(t *testing.T) {
	storage := newStorage(t)

	var tok string
	h := RequireToken(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, _ = TokenFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", rr.Code)
	}

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, bad)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rr.Code)
	}

	c := sessionCookie(t, storage, cookiejwt.Data{"uid": "u1"})
	good := httptest.NewRequest(http.MethodGet, "/", nil)
	good.AddCookie(c)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, good)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if tok != c.Value {
		t.Fatalf("expected raw token in context, got %q", tok)
	}
}

func TestRequireKey(t *testing.T) {
	storage := newStorage(t)
	h := Session(storage)(RequireKey("uid")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous session, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, storage, cookiejwt.Data{"uid": "u1"}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	cases := map[string]string{
		"192.0.2.1:1234":    "192.0.2.1",
		"[2001:db8::1]:443": "2001:db8::1",
		"192.0.2.9":         "192.0.2.9",
	}
	for in, want := range cases {
		if got := clientIP(in); got != want {
			t.Fatalf("clientIP(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAuditEventsCarryRemoteAddr(t *testing.T) {
	cfg := cookiejwt.DefaultConfig()
	cfg.Cookie.Name = "session"
	cfg.Cookie.Secrets = []string{"s3cr3t"}
	cfg.Token.Sign = true
	cfg.Audit.Enabled = true
	sink := cookiejwt.NewChannelSink(4)
	storage, err := cookiejwt.New().WithConfig(cfg).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer storage.Close()

	h := Session(storage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	ev := <-sink.Events()
	if ev.EventType != "session_rejected" || ev.IP != "203.0.113.7" {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}
