// Package session owns the credential lifecycle of one application session:
// the bearer token, the logged-in user and their persisted copy.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
	"github.com/alimurrofid/petualangan-cuan/internal/storage"
)

// ErrUnauthenticated is returned by RequireAuth when there is no usable token.
var ErrUnauthenticated = errors.New("not logged in")

// Repository persists the session between process runs.
type Repository interface {
	SaveSession(ctx context.Context, rec storage.SessionRecord) error
	LoadSession(ctx context.Context) (storage.SessionRecord, error)
	ClearSession(ctx context.Context) error
}

type Manager struct {
	mu     sync.RWMutex
	token  string
	user   core.User
	repo   Repository
	logger *log.Logger
	now    func() time.Time
}

// New creates an empty manager. A nil repo keeps the session in memory only.
func New(repo Repository, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentSession),
		now:    time.Now,
	}
}

// Init restores a persisted session. An expired token is discarded.
func (m *Manager) Init(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	rec, err := m.repo.LoadSession(ctx)
	if errors.Is(err, storage.ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	m.mu.Lock()
	m.token = rec.Token
	m.user = rec.User
	m.mu.Unlock()

	if !m.Authenticated() {
		m.logger.InfoContext(ctx, "Discarding expired session", log.FieldUserID, rec.User.ID)
		return m.Clear(ctx)
	}
	m.logger.InfoContext(ctx, "Session restored", log.FieldUserID, rec.User.ID)
	return nil
}

// Set stores the credentials returned by login or register.
func (m *Manager) Set(ctx context.Context, token string, user core.User) error {
	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	if m.repo == nil {
		return nil
	}
	if err := m.repo.SaveSession(ctx, storage.SessionRecord{Token: token, User: user}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// SetUser replaces the cached user, e.g. after a profile fetch.
func (m *Manager) SetUser(ctx context.Context, user core.User) error {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	return m.Set(ctx, token, user)
}

// Clear forgets the credentials in memory and in storage.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = core.User{}
	m.mu.Unlock()

	if m.repo == nil {
		return nil
	}
	if err := m.repo.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) User() (core.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.token != ""
}

// ExpiresAt reads the exp claim without verifying the signature; the
// backend remains the authority on validity.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	token := m.Token()
	if token == "" {
		return time.Time{}, false
	}
	return expiry(token)
}

// Authenticated reports whether a token is present and not known to be expired.
// Tokens without a readable exp claim count as valid.
func (m *Manager) Authenticated() bool {
	if m.Token() == "" {
		return false
	}
	exp, ok := m.ExpiresAt()
	if !ok {
		return true
	}
	return m.now().Before(exp)
}

// RequireAuth is the guard for operations that need a logged-in user.
func (m *Manager) RequireAuth() error {
	if !m.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
