package store

import (
	"context"
	"fmt"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

type AuthAPI interface {
	Login(ctx context.Context, in core.Credentials) (core.AuthResponse, error)
	Register(ctx context.Context, in core.RegisterInput) (core.AuthResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (core.User, error)
}

// Credentials is the part of the session manager the auth store drives.
type Credentials interface {
	Set(ctx context.Context, token string, user core.User) error
	SetUser(ctx context.Context, user core.User) error
	Clear(ctx context.Context) error
}

type AuthStore struct {
	client  AuthAPI
	session Credentials
	logger  *log.Logger
}

func NewAuthStore(client AuthAPI, session Credentials, logger *log.Logger) *AuthStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuthStore{
		client:  client,
		session: session,
		logger:  logger.WithComponent(log.ComponentSession),
	}
}

func (s *AuthStore) Login(ctx context.Context, in core.Credentials) (core.User, error) {
	resp, err := s.client.Login(ctx, in)
	if err != nil {
		return core.User{}, fmt.Errorf("login: %w", err)
	}
	if err := s.session.Set(ctx, resp.Token, resp.User); err != nil {
		return core.User{}, err
	}
	s.logger.InfoContext(ctx, "Logged in", log.FieldUserID, resp.User.ID)
	return resp.User, nil
}

func (s *AuthStore) Register(ctx context.Context, in core.RegisterInput) (core.User, error) {
	resp, err := s.client.Register(ctx, in)
	if err != nil {
		return core.User{}, fmt.Errorf("register: %w", err)
	}
	if err := s.session.Set(ctx, resp.Token, resp.User); err != nil {
		return core.User{}, err
	}
	s.logger.InfoContext(ctx, "Registered", log.FieldUserID, resp.User.ID)
	return resp.User, nil
}

// Logout notifies the backend and clears the local session even when the
// backend cannot be reached.
func (s *AuthStore) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "Backend logout failed", log.FieldOperation, log.OpLogout, log.FieldError, err)
	}
	return s.session.Clear(ctx)
}

// FetchProfile refreshes the cached user.
func (s *AuthStore) FetchProfile(ctx context.Context) (core.User, error) {
	u, err := s.client.Profile(ctx)
	if err != nil {
		return core.User{}, fmt.Errorf("fetch profile: %w", err)
	}
	if err := s.session.SetUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}
