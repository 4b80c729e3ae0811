// Package memory provides the in-memory session store backing the API.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gasonil/storefront/internal/session"
)

var (
	errSessionNotFound = errors.New("session not found")
	errEmptySessionID  = errors.New("session id is required")
	errDuplicateID     = errors.New("session id already exists")
)

// storeError implements repositories.RepositoryError.
type storeError struct {
	err      error
	notFound bool
}

func (e *storeError) Error() string       { return fmt.Sprintf("memory store: %v", e.err) }
func (e *storeError) Unwrap() error       { return e.err }
func (e *storeError) IsNotFound() bool    { return e.notFound }
func (e *storeError) IsUnavailable() bool { return false }

// SessionStore is a mutex-guarded map of live sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewSessionStore constructs an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*session.Session)}
}

// Insert adds a new session; the id must be unique.
func (s *SessionStore) Insert(_ context.Context, sess *session.Session) error {
	if sess == nil || strings.TrimSpace(sess.ID()) == "" {
		return &storeError{err: errEmptySessionID}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.ID()]; exists {
		return &storeError{err: errDuplicateID}
	}
	s.sessions[sess.ID()] = sess
	return nil
}

// Find returns the session with the given id.
func (s *SessionStore) Find(_ context.Context, sessionID string) (*session.Session, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, &storeError{err: errEmptySessionID, notFound: true}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, &storeError{err: errSessionNotFound, notFound: true}
	}
	return sess, nil
}

// Delete removes the session with the given id, if present.
func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return &storeError{err: errEmptySessionID, notFound: true}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteExpired drops every session past its deadline.
func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live sessions; used by health reporting.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
