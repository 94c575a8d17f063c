package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/catalog-admin/internal/apiclient"
	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	apperrors "github.com/target/catalog-admin/internal/errors"
	"github.com/target/catalog-admin/internal/ports"
	"github.com/target/catalog-admin/internal/session"
	"github.com/target/catalog-admin/internal/validation"
)

// AuthAPI is the subset of the auth endpoints AuthService needs.
type AuthAPI interface {
	Login(ctx context.Context, creds domainauth.Credentials) (*apiclient.LoginResponse, error)
	Register(ctx context.Context, reg domainauth.Registration) (*apiclient.RegisterResponse, error)
	Logout(ctx context.Context) error
	Health(ctx context.Context) (string, error)
}

// SessionManager is the session store surface the services use.
type SessionManager interface {
	SetAuthenticated(ctx context.Context, accessToken, refreshToken string, identity domainauth.Identity) error
	UpdateIdentity(ctx context.Context, identity domainauth.Identity) error
	Clear(ctx context.Context, reason domainauth.ClearReason) error
	Snapshot() domainauth.Session
	Role() domainauth.Role
	IsAdmin() bool
	HasRole(name string) bool
}

var _ ports.Authenticator = (*AuthService)(nil)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	API      AuthAPI
	Sessions SessionManager
	Logger   *slog.Logger
}

// AuthService orchestrates login, registration and logout by coordinating
// the auth endpoints with the session store.
type AuthService struct {
	api      AuthAPI
	sessions SessionManager
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		api:      opts.API,
		sessions: opts.Sessions,
		logger:   logger.With("component", "auth_service"),
	}
}

// Login validates credentials, authenticates against the API and
// establishes the session. Rejections leave any existing session untouched.
func (s *AuthService) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error) {
	if errs := validation.Login(creds); len(errs) > 0 {
		return domainauth.Session{}, apperrors.ValidationFields(errs)
	}

	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return domainauth.Session{}, rejection(err, "Login failed")
	}
	if resp.AccessToken == "" {
		return domainauth.Session{}, apperrors.Authentication("Login failed")
	}

	if err := s.sessions.SetAuthenticated(ctx, resp.AccessToken, resp.RefreshToken, resp.Identity()); err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Could not save the session.")
	}
	s.logger.InfoContext(ctx, "logged in", "username", resp.Username)
	return s.sessions.Snapshot(), nil
}

// Register creates an account. It never logs in.
func (s *AuthService) Register(ctx context.Context, reg domainauth.Registration) error {
	if errs := validation.Register(reg); len(errs) > 0 {
		return apperrors.ValidationFields(errs)
	}
	if _, err := s.api.Register(ctx, reg); err != nil {
		return rejection(err, "Registration failed")
	}
	s.logger.InfoContext(ctx, "registered account", "username", reg.Username)
	return nil
}

// Logout ends the session. The API call is best effort; the local session
// is cleared regardless.
func (s *AuthService) Logout(ctx context.Context) error {
	if !s.sessions.Snapshot().IsAuthenticated() {
		return s.sessions.Clear(ctx, domainauth.ClearLogout)
	}
	if err := s.api.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "logout request failed", "error", err)
	}
	if err := s.sessions.Clear(ctx, domainauth.ClearLogout); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// UpdateIdentity replaces the cached identity after a profile change.
func (s *AuthService) UpdateIdentity(ctx context.Context, identity domainauth.Identity) error {
	if err := s.sessions.UpdateIdentity(ctx, identity); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return apperrors.Wrap(err, apperrors.ErrCodeAuthentication, "You are not logged in.")
		}
		return fmt.Errorf("update identity: %w", err)
	}
	return nil
}

// Health reports the auth service's health message.
func (s *AuthService) Health(ctx context.Context) (string, error) {
	return s.api.Health(ctx)
}

// Role returns the client role of the current identity.
func (s *AuthService) Role() domainauth.Role { return s.sessions.Role() }

// IsAdmin reports whether the current identity has an admin role.
func (s *AuthService) IsAdmin() bool { return s.sessions.IsAdmin() }

// HasRole reports whether the current identity holds the server role name.
func (s *AuthService) HasRole(name string) bool { return s.sessions.HasRole(name) }

// CurrentSession returns a copy of the session.
func (s *AuthService) CurrentSession() domainauth.Session { return s.sessions.Snapshot() }

// rejection turns a client-side API failure into an authentication error
// carrying the server's message. Transport failures pass through.
func rejection(err error, fallback string) error {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeTimeout, apperrors.ErrCodeCanceled, apperrors.ErrCodeInternal:
		return err
	}
	appErr := apperrors.Wrap(err, apperrors.ErrCodeAuthentication, apperrors.UserMessage(err, fallback))
	appErr.Fields = apperrors.GetFields(err)
	return appErr
}
