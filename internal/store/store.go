// Package store provides durable session persistence.
package store

import (
	"context"
	"time"

	"github.com/fafsabuddy/server/internal/domain"
)

// Store persists intake sessions keyed by the opaque session identity.
// Semantics are get/set with expiration: Load returns a fresh empty session
// on miss (never an error for absence), Save replaces the whole session and
// resets its TTL. Last writer wins; no compare-and-swap.
type Store interface {
	// Load retrieves the session, or an empty one when none is stored.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Save stores the session and (re)arms its expiration.
	Save(ctx context.Context, sessionID string, session *domain.Session, ttl time.Duration) error

	// Delete removes the session state entirely.
	Delete(ctx context.Context, sessionID string) error

	// Ping verifies backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
