// Package session implements cookie-backed server-side sessions. The cookie
// holds a signed token naming an opaque session id; the user id and username
// live in Redis with a sliding expiry.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"plantid/internal/pkg/jwtutil"
)

var ErrNoSession = errors.New("no active session")

// Session identifies the logged-in user of a request.
type Session struct {
	ID       string
	UserID   uint
	Username string
}

type Manager struct {
	store  *RedisStore
	secret string
	ttl    time.Duration
}

func NewManager(store *RedisStore, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, secret: secret, ttl: ttl}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue starts a session for the user and returns it with its cookie token.
func (m *Manager) Issue(ctx context.Context, userID uint, username string) (*Session, string, error) {
	sess := &Session{ID: uuid.NewString(), UserID: userID, Username: username}
	if err := m.store.Save(ctx, sess.ID, Data{UserID: userID, Username: username}, m.ttl); err != nil {
		return nil, "", err
	}
	token, err := m.Token(sess.ID)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

func (m *Manager) Token(sessionID string) (string, error) {
	return jwtutil.GenerateToken(m.secret, m.ttl, sessionID)
}

// Resolve maps a cookie token to its live session and extends the session's
// lifetime. Unknown, forged and expired tokens all yield ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := jwtutil.ParseToken(m.secret, token)
	if err != nil {
		return nil, ErrNoSession
	}
	data, err := m.store.Touch(ctx, claims.SessionID(), m.ttl)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoSession
	}
	return &Session{ID: claims.SessionID(), UserID: data.UserID, Username: data.Username}, nil
}

// Rename rewrites the username stored in an existing session.
func (m *Manager) Rename(ctx context.Context, sess *Session, username string) error {
	if err := m.store.Save(ctx, sess.ID, Data{UserID: sess.UserID, Username: username}, m.ttl); err != nil {
		return fmt.Errorf("rename session failed: %w", err)
	}
	sess.Username = username
	return nil
}

func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, sessionID)
}
