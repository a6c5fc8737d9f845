package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session ties an opaque token to an authenticated user id.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// SessionManager keeps sessions in process memory. Expired entries are
// dropped lazily on lookup, so no cleanup goroutine is needed.
type SessionManager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Create issues a new session for the user.
func (m *SessionManager) Create(userID int64) Session {
	session := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return session
}

// Lookup resolves a token to a user id. Expired sessions are removed and
// reported as absent.
func (m *SessionManager) Lookup(token string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return 0, false
	}
	if time.Now().After(session.ExpiresAt) {
		delete(m.sessions, token)
		return 0, false
	}
	return session.UserID, true
}

// Revoke drops the session; revoking an unknown token is a no-op.
func (m *SessionManager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
