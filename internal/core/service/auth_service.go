package service

import (
	"context"
	"fmt"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// AuthService owns the session lifecycle: hydrate on start, persist on
// login or register, tear down on logout. The API client clears it on 401.
type AuthService struct {
	api      port.AuthAPI
	sessions port.SessionStore
	notify   port.Notifier
}

func NewAuthService(api port.AuthAPI, sessions port.SessionStore, notify port.Notifier) *AuthService {
	return &AuthService{api: api, sessions: sessions, notify: notify}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	sess, err := s.api.Login(ctx, email, password)
	if err != nil {
		notifyErr(ctx, s.notify, messageOr(err, "Login failed"))
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	notifyOK(ctx, s.notify, "Welcome back, "+sess.User.Name)
	return sess, nil
}

func (s *AuthService) Register(ctx context.Context, in port.RegisterInput) (*domain.Session, error) {
	sess, err := s.api.Register(ctx, in)
	if err != nil {
		notifyErr(ctx, s.notify, messageOr(err, "Registration failed"))
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the stored session or ErrNotLoggedIn.
func (s *AuthService) Current(ctx context.Context) (*domain.Session, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return sess, nil
}

// RequireAdmin gates every admin surface.
func (s *AuthService) RequireAdmin(ctx context.Context) (*domain.Session, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return sess, nil
}

// Refresh re-reads the profile so a role change made elsewhere shows up.
func (s *AuthService) Refresh(ctx context.Context) (*domain.Session, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.api.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	sess.User = *u
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}
