package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nhalm/routekit"
	"github.com/nhalm/routekit/store"
)

// Header names read by the internal-request strategy.
const (
	HeaderInternalCaller    = "X-Internal-Caller"
	HeaderInternalTimestamp = "X-Internal-Timestamp"
	HeaderInternalSignature = "X-Internal-Signature"
)

// DefaultSessionCookie is the cookie the session strategy reads when no
// name is configured.
const DefaultSessionCookie = "session_id"

// Session authenticates requests by looking a session cookie up in a
// session store.
type Session struct {
	// Cookie is the session cookie name (default: "session_id").
	Cookie string

	// Store resolves session ids to subjects.
	Store store.Sessions
}

func (s *Session) cookieName() string {
	if s.Cookie == "" {
		return DefaultSessionCookie
	}
	return s.Cookie
}

// Authenticate resolves the session cookie to a subject.
func (s *Session) Authenticate(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(s.cookieName())
	if err != nil || cookie.Value == "" {
		return nil, routekit.NewUnauthorized(routekit.WithMessage("missing session"))
	}

	subject, err := s.Store.Get(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, routekit.NewUnauthorized(routekit.WithMessage("invalid session"))
		}
		return nil, routekit.NewInternal(routekit.WithMessage("session lookup failed"))
	}

	return &Identity{Subject: subject, Strategy: "session"}, nil
}

// Internal authenticates signed service-to-service requests.
// The caller signs method, path, and a unix timestamp with a shared
// secret; the signature travels in X-Internal-Signature.
type Internal struct {
	// Secret is the shared HMAC-SHA256 key.
	Secret []byte

	// MaxSkew bounds the accepted timestamp age (default: 5 minutes).
	MaxSkew time.Duration
}

func (s *Internal) maxSkew() time.Duration {
	if s.MaxSkew <= 0 {
		return 5 * time.Minute
	}
	return s.MaxSkew
}

// Sign computes the signature for an outgoing internal request.
// Callers set the result as X-Internal-Signature along with the matching
// X-Internal-Timestamp.
func (s *Internal) Sign(method, path string, ts time.Time) string {
	mac := hmac.New(sha256.New, s.Secret)
	mac.Write([]byte(method))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(path))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(ts.Unix(), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate verifies the request's internal signature and timestamp.
func (s *Internal) Authenticate(r *http.Request) (*Identity, error) {
	signature := r.Header.Get(HeaderInternalSignature)
	timestamp := r.Header.Get(HeaderInternalTimestamp)
	if signature == "" || timestamp == "" {
		return nil, routekit.NewUnauthorized(routekit.WithMessage("missing internal signature"))
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, routekit.NewUnauthorized(routekit.WithMessage("invalid internal timestamp"))
	}
	ts := time.Unix(unix, 0)
	if skew := time.Since(ts).Abs(); skew > s.maxSkew() {
		return nil, routekit.NewUnauthorized(routekit.WithMessage("internal timestamp out of range"))
	}

	expected := s.Sign(r.Method, r.URL.Path, ts)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, routekit.NewUnauthorized(routekit.WithMessage("invalid internal signature"))
	}

	subject := r.Header.Get(HeaderInternalCaller)
	if subject == "" {
		subject = "internal"
	}
	return &Identity{Subject: subject, Strategy: "internal"}, nil
}

// Hybrid tries session authentication first and falls back to the
// internal-request strategy.
type Hybrid struct {
	Session  *Session
	Internal *Internal
}

// Authenticate resolves the identity via session, then internal signature.
func (s *Hybrid) Authenticate(r *http.Request) (*Identity, error) {
	identity, err := s.Session.Authenticate(r)
	if err == nil {
		identity.Strategy = "hybrid"
		return identity, nil
	}

	identity, err = s.Internal.Authenticate(r)
	if err != nil {
		return nil, routekit.NewUnauthorized(routekit.WithMessage("no valid credentials"))
	}
	identity.Strategy = "hybrid"
	return identity, nil
}
