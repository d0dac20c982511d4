package session

import (
	"context"
	"time"

	"go-user-app/pkg/utils"
)

const (
	DefaultRememberTTL = 14 * 24 * time.Hour
	DefaultIdleTTL     = 20 * time.Minute
)

// Session is the server-side state behind an opaque token. Remember sessions
// keep a fixed expiry; default sessions slide forward on every resolve.
type Session struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Remember  bool      `json:"remember"`
}

type Store interface {
	Put(ctx context.Context, token string, s Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
}

type Manager struct {
	store       Store
	rememberTTL time.Duration
	idleTTL     time.Duration
	now         func() time.Time
}

func NewManager(store Store, rememberTTL, idleTTL time.Duration) *Manager {
	if rememberTTL <= 0 {
		rememberTTL = DefaultRememberTTL
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Manager{store: store, rememberTTL: rememberTTL, idleTTL: idleTTL, now: time.Now}
}

// RememberTTL is the cookie lifetime matching a remember-me session.
func (m *Manager) RememberTTL() time.Duration { return m.rememberTTL }

func (m *Manager) Start(ctx context.Context, userID string, remember bool) (string, error) {
	ttl := m.idleTTL
	if remember {
		ttl = m.rememberTTL
	}
	token := newToken()
	s := Session{UserID: userID, ExpiresAt: m.now().Add(ttl), Remember: remember}
	if err := m.store.Put(ctx, token, s, ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user behind token, if any. Expired sessions are removed.
// A live non-remember session is extended by the idle TTL.
func (m *Manager) Resolve(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	s, ok, err := m.store.Get(ctx, token)
	if err != nil || !ok {
		return "", false, err
	}
	now := m.now()
	if !s.ExpiresAt.After(now) {
		_ = m.store.Delete(ctx, token)
		return "", false, nil
	}
	if !s.Remember {
		s.ExpiresAt = now.Add(m.idleTTL)
		if err := m.store.Put(ctx, token, s, m.idleTTL); err != nil {
			return "", false, err
		}
	}
	return s.UserID, true, nil
}

func (m *Manager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

func newToken() string { return utils.NewID() + utils.NewID() }
