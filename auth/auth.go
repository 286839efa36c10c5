// Package auth provides a named authentication strategy registry and
// middleware for dispatching requests to a registered strategy.
//
// Strategies are registered once at startup and looked up by name per
// request; the registry is not synchronized against writes during traffic.
package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/nhalm/routekit"
)

// Identity is the authenticated principal a strategy resolves.
type Identity struct {
	// Subject identifies the principal (user id, service name).
	Subject string

	// Strategy is the name of the strategy that authenticated the request.
	Strategy string
}

// Strategy authenticates a single request.
// Implementations must be safe for concurrent use.
type Strategy interface {
	// Authenticate resolves the request's identity or returns an error,
	// typically a 401 routekit error.
	Authenticate(r *http.Request) (*Identity, error)
}

type authContextKey string

const identityKey authContextKey = "identity"

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Strategy)
)

// Register binds a strategy to a name, replacing any previous binding.
// Must be called at startup before handling requests.
func Register(name string, strategy Strategy) {
	registryMu.Lock()
	registry[name] = strategy
	registryMu.Unlock()
}

// Clear removes a named strategy.
func Clear(name string) {
	registryMu.Lock()
	delete(registry, name)
	registryMu.Unlock()
}

// Lookup returns the strategy registered under name.
func Lookup(name string) (Strategy, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	strategy, ok := registry[name]
	return strategy, ok
}

// Use returns middleware that authenticates every request with the named
// strategy. Failures are written as normalized 401 responses; an
// unregistered name is a 500 on every request it guards.
// The resolved identity is stored in the request context and can be
// retrieved with IdentityFromContext.
func Use(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			strategy, ok := Lookup(name)
			if !ok {
				routekit.WriteError(w, r, routekit.NewInternal(
					routekit.WithMessage("unknown auth strategy: "+name)))
				return
			}

			identity, err := strategy.Authenticate(r)
			if err != nil {
				routekit.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated identity from the
// request context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}
