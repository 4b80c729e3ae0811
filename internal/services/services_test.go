package services

import (
	"context"
	"testing"
	"time"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/session"
)

// stubSessions lets each test decide how session resolution behaves.
type stubSessions struct {
	createFn func(ctx context.Context) (*session.Session, error)
	getFn    func(ctx context.Context, sessionID string) (*session.Session, error)
	sweepFn  func(ctx context.Context) (int, error)
}

func (s *stubSessions) Create(ctx context.Context) (*session.Session, error) {
	if s.createFn == nil {
		return nil, ErrSessionNotFound
	}
	return s.createFn(ctx)
}

func (s *stubSessions) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	if s.getFn == nil {
		return nil, ErrSessionNotFound
	}
	return s.getFn(ctx, sessionID)
}

func (s *stubSessions) SweepExpired(ctx context.Context) (int, error) {
	if s.sweepFn == nil {
		return 0, nil
	}
	return s.sweepFn(ctx)
}

func sessionsReturning(sess *session.Session) *stubSessions {
	return &stubSessions{
		getFn: func(context.Context, string) (*session.Session, error) {
			return sess, nil
		},
	}
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New(session.Deps{
		ID:       "sess-test",
		Now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		TTL:      2 * time.Hour,
		Schedule: func(_ time.Duration, fn func()) { fn() },
	})
}

// newGateOpenSession returns a session with a confirmed delivery address so
// cart mutation is permitted.
func newGateOpenSession(t *testing.T) *session.Session {
	t.Helper()
	sess := newTestSession(t)
	sess.SetValidatedAddress(domain.PostalAddress{
		PostalCode: "30140-071",
		Street:     "Avenida do Contorno",
		District:   "Funcionários",
		City:       "Belo Horizonte",
		StateCode:  "MG",
	})
	if _, err := sess.ConfirmDetails("1500", "", ""); err != nil {
		t.Fatalf("confirm details: %v", err)
	}
	return sess
}

func centavos(v int64) *domain.Centavos {
	c := domain.Centavos(v)
	return &c
}
