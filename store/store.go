// Package store provides session storage backends for the auth strategies.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Sessions defines the interface for session storage backends.
// Implementations must be safe for concurrent use.
type Sessions interface {
	// Get returns the subject bound to the session id.
	// Returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (string, error)

	// Set binds a subject to the session id for the given TTL.
	Set(ctx context.Context, id, subject string, ttl time.Duration) error

	// Delete removes the session.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
