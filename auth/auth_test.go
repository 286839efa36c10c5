package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/nhalm/routekit"
	"github.com/nhalm/routekit/store"
)

type stubStrategy struct {
	identity *Identity
	err      error
}

func (s *stubStrategy) Authenticate(_ *http.Request) (*Identity, error) {
	return s.identity, s.err
}

func newSessionStore(t *testing.T, id, subject string) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	t.Cleanup(func() { m.Close() })
	if err := m.Set(t.Context(), id, subject, time.Minute); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return m
}

func TestRegistry_RegisterLookupClear(t *testing.T) {
	strategy := &stubStrategy{identity: &Identity{Subject: "user-1"}}

	Register("stub", strategy)
	t.Cleanup(func() { Clear("stub") })

	if got, ok := Lookup("stub"); !ok || got != strategy {
		t.Fatal("expected registered strategy to be returned")
	}

	Clear("stub")
	if _, ok := Lookup("stub"); ok {
		t.Error("expected strategy to be gone after Clear")
	}
}

func TestUse_Success(t *testing.T) {
	Register("stub", &stubStrategy{identity: &Identity{Subject: "user-1", Strategy: "stub"}})
	t.Cleanup(func() { Clear("stub") })

	var got *Identity
	handler := Use("stub")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got == nil || got.Subject != "user-1" {
		t.Errorf("expected identity in context, got %+v", got)
	}
}

func TestUse_FailureWritesNormalized401(t *testing.T) {
	Register("stub", &stubStrategy{err: routekit.NewUnauthorized()})
	t.Cleanup(func() { Clear("stub") })

	handler := Use("stub")(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("handler should not run when authentication fails")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	var reply routekit.Reply
	if err := json.NewDecoder(rec.Body).Decode(&reply); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if reply.Code != http.StatusUnauthorized {
		t.Errorf("expected envelope code 401, got %d", reply.Code)
	}
}

func TestUse_UnknownStrategy(t *testing.T) {
	handler := Use("nope")(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("handler should not run for an unknown strategy")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestSession_Authenticate(t *testing.T) {
	strategy := &Session{Store: newSessionStore(t, "sid-1", "user-42")}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "sid-1"})

	identity, err := strategy.Authenticate(req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if identity.Subject != "user-42" || identity.Strategy != "session" {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestSession_MissingCookie(t *testing.T) {
	strategy := &Session{Store: newSessionStore(t, "sid-1", "user-42")}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	_, err := strategy.Authenticate(req)
	assertUnauthorized(t, err)
}

func TestSession_UnknownSession(t *testing.T) {
	strategy := &Session{Store: newSessionStore(t, "sid-1", "user-42")}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "other"})

	_, err := strategy.Authenticate(req)
	assertUnauthorized(t, err)
}

func TestInternal_Authenticate(t *testing.T) {
	strategy := &Internal{Secret: []byte("shared-secret")}

	now := time.Now()
	req := httptest.NewRequest(http.MethodPost, "/internal/sync", http.NoBody)
	req.Header.Set(HeaderInternalCaller, "billing")
	req.Header.Set(HeaderInternalTimestamp, strconv.FormatInt(now.Unix(), 10))
	req.Header.Set(HeaderInternalSignature, strategy.Sign(http.MethodPost, "/internal/sync", now))

	identity, err := strategy.Authenticate(req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if identity.Subject != "billing" || identity.Strategy != "internal" {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestInternal_BadSignature(t *testing.T) {
	strategy := &Internal{Secret: []byte("shared-secret")}

	req := httptest.NewRequest(http.MethodPost, "/internal/sync", http.NoBody)
	req.Header.Set(HeaderInternalTimestamp, strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set(HeaderInternalSignature, "deadbeef")

	_, err := strategy.Authenticate(req)
	assertUnauthorized(t, err)
}

func TestInternal_StaleTimestamp(t *testing.T) {
	strategy := &Internal{Secret: []byte("shared-secret"), MaxSkew: time.Minute}

	stale := time.Now().Add(-time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/internal/sync", http.NoBody)
	req.Header.Set(HeaderInternalTimestamp, strconv.FormatInt(stale.Unix(), 10))
	req.Header.Set(HeaderInternalSignature, strategy.Sign(http.MethodPost, "/internal/sync", stale))

	_, err := strategy.Authenticate(req)
	assertUnauthorized(t, err)
}

func TestInternal_MissingHeaders(t *testing.T) {
	strategy := &Internal{Secret: []byte("shared-secret")}

	req := httptest.NewRequest(http.MethodPost, "/internal/sync", http.NoBody)

	_, err := strategy.Authenticate(req)
	assertUnauthorized(t, err)
}

func TestHybrid_SessionFirst(t *testing.T) {
	strategy := &Hybrid{
		Session:  &Session{Store: newSessionStore(t, "sid-1", "user-42")},
		Internal: &Internal{Secret: []byte("shared-secret")},
	}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "sid-1"})

	identity, err := strategy.Authenticate(req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if identity.Subject != "user-42" || identity.Strategy != "hybrid" {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestHybrid_FallsBackToInternal(t *testing.T) {
	internal := &Internal{Secret: []byte("shared-secret")}
	strategy := &Hybrid{
		Session:  &Session{Store: newSessionStore(t, "sid-1", "user-42")},
		Internal: internal,
	}

	now := time.Now()
	req := httptest.NewRequest(http.MethodPost, "/internal/sync", http.NoBody)
	req.Header.Set(HeaderInternalCaller, "billing")
	req.Header.Set(HeaderInternalTimestamp, strconv.FormatInt(now.Unix(), 10))
	req.Header.Set(HeaderInternalSignature, internal.Sign(http.MethodPost, "/internal/sync", now))

	identity, err := strategy.Authenticate(req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if identity.Subject != "billing" || identity.Strategy != "hybrid" {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestHybrid_BothFail(t *testing.T) {
	strategy := &Hybrid{
		Session:  &Session{Store: newSessionStore(t, "sid-1", "user-42")},
		Internal: &Internal{Secret: []byte("shared-secret")},
	}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	_, err := strategy.Authenticate(req)
	assertUnauthorized(t, err)
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var serr *routekit.Error
	if !errors.As(err, &serr) || serr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 error, got %v", err)
	}
}
