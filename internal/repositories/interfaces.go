// Package repositories defines the storage seams consumed by the service
// layer.
package repositories

import (
	"context"
	"time"

	"github.com/gasonil/storefront/internal/session"
)

// RepositoryError wraps storage failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsUnavailable() bool
}

// SessionRepository stores live visitor sessions. Sessions are never
// persisted beyond process lifetime; implementations are expected to be
// in-memory.
type SessionRepository interface {
	Insert(ctx context.Context, s *session.Session) error
	Find(ctx context.Context, sessionID string) (*session.Session, error)
	Delete(ctx context.Context, sessionID string) error
	// DeleteExpired removes every session past its deadline and reports how
	// many were dropped.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
