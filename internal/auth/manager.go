// Package auth issues and validates console session tokens.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/store"
)

// ErrInvalidCredentials is returned for unknown users or wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Session is an authenticated console session.
type Session struct {
	Token     string          `json:"token"`
	UserID    string          `json:"userId"`
	Username  string          `json:"username"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Manager keeps sessions in memory. Tokens are opaque UUIDs; a restart
// logs everyone out, which is acceptable for a single-node console.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	users    store.UserStore
	ttl      time.Duration
}

// NewManager creates a session manager backed by the given user store.
func NewManager(users store.UserStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]*Session),
		users:    users,
		ttl:      ttl,
	}
}

// Login validates credentials and issues a session token.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := m.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so unknown users are not distinguishable.
			bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	session := &Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()

	logger.Info("Auth", "user %q logged in", user.Username)
	return session, nil
}

// Resolve returns the session for a token, refreshing its expiry.
func (m *Manager) Resolve(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		delete(m.sessions, token)
		return nil, false
	}
	session.ExpiresAt = time.Now().Add(m.ttl)
	return session, true
}

// Logout revokes a token.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[token]; ok {
		delete(m.sessions, token)
		logger.Info("Auth", "user %q logged out", session.Username)
	}
}

// RevokeUser drops every session belonging to a user. Called when an
// account is deleted or its password changes.
func (m *Manager) RevokeUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, token)
		}
	}
}

// CleanupExpired removes expired sessions and returns how many were dropped.
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for token, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		logger.Debug("Auth", "dropped %d expired sessions", removed)
	}
	return removed
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
