package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gasonil/storefront/internal/repositories"
	"github.com/gasonil/storefront/internal/session"
)

var (
	errSessionRepositoryRequired = errors.New("session service: repository is required")
	errSessionClockRequired      = errors.New("session service: clock is required")
)

// ErrSessionUnavailable indicates the session store cannot fulfil the request.
var ErrSessionUnavailable = errors.New("session service: unavailable")

const defaultSessionTTL = 2 * time.Hour

// SessionServiceDeps wires the store and lifecycle parameters.
type SessionServiceDeps struct {
	Repository repositories.SessionRepository
	Clock      func() time.Time
	TTL        time.Duration
	FocusDelay time.Duration
	// Observer, when set, is attached to every new session.
	Observer    session.Observer
	IDGenerator func() string
}

type sessionService struct {
	repo       repositories.SessionRepository
	now        func() time.Time
	ttl        time.Duration
	focusDelay time.Duration
	observer   session.Observer
	newID      func() string
}

// NewSessionService constructs a SessionService enforcing dependency validation.
func NewSessionService(deps SessionServiceDeps) (SessionService, error) {
	if deps.Repository == nil {
		return nil, errSessionRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errSessionClockRequired
	}

	ttl := deps.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &sessionService{
		repo:       deps.Repository,
		now:        func() time.Time { return deps.Clock().UTC() },
		ttl:        ttl,
		focusDelay: deps.FocusDelay,
		observer:   deps.Observer,
		newID:      idGen,
	}, nil
}

// Create starts a new empty visitor session.
func (s *sessionService) Create(ctx context.Context) (*session.Session, error) {
	sess := session.New(session.Deps{
		ID:         s.newID(),
		Now:        s.now(),
		TTL:        s.ttl,
		FocusDelay: s.focusDelay,
	})
	if s.observer != nil {
		sess.Subscribe(s.observer)
	}
	if err := s.repo.Insert(ctx, sess); err != nil {
		return nil, translateRepoError(err)
	}
	return sess, nil
}

// Get returns the live session, refusing expired ones and extending the
// deadline of active ones.
func (s *sessionService) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	now := s.now()
	if sess.Expired(now) {
		_ = s.repo.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}
	sess.Touch(now, s.ttl)
	return sess, nil
}

// SweepExpired drops every expired session.
func (s *sessionService) SweepExpired(ctx context.Context) (int, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, translateRepoError(err)
	}
	return removed, nil
}

func translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		if repoErr.IsNotFound() {
			return ErrSessionNotFound
		}
		return ErrSessionUnavailable
	}
	return ErrSessionUnavailable
}
