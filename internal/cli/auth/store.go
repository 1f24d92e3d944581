// Package auth implements the login, registration and logout actions on top
// of a session and the API client.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eventmgmt/eventctl/internal/cli/client"
	"github.com/eventmgmt/eventctl/internal/cli/session"
)

// API is the subset of the API client the store needs.
// This allows us to mock the server in tests.
type API interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) error
	UpdateCredentials(ctx context.Context, req client.UpdateCredentialsRequest) (*client.LoginResponse, error)
}

// ErrNotLoggedIn is returned by actions that need an existing session
var ErrNotLoggedIn = errors.New("not logged in")

// Store exposes the session predicates plus the network-backed actions
type Store struct {
	*session.Session

	api    API
	logger zerolog.Logger
}

// NewStore creates an auth store over an existing session
func NewStore(sess *session.Session, api API, logger zerolog.Logger) *Store {
	return &Store{
		Session: sess,
		api:     api,
		logger:  logger.With().Str("component", "auth").Logger(),
	}
}

// Logout clears the session. Safe to call when already logged out.
func (s *Store) Logout() error {
	if err := s.Session.Clear(); err != nil {
		s.logger.Error().Err(err).Msg("Logout failed")
		return err
	}
	return nil
}

// Login authenticates against the API and stores the resulting session
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Login failed")
		return err
	}

	user := s.buildUser(resp, email)
	if err := s.SetAuth(resp.Token, user); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Login failed")
		return err
	}

	return nil
}

// Register creates the account and then logs in with the same credentials.
// An empty role registers an attendee.
func (s *Store) Register(ctx context.Context, name, email, password string, role session.Role) error {
	if role == "" {
		role = session.RoleAttendee
	}

	err := s.api.Register(ctx, client.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role.String(),
	})
	if err == nil {
		err = s.Login(ctx, email, password)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Registration failed")
		return err
	}

	return nil
}

// UpdateCredentials changes the current user's email and/or password and
// swaps in the token the server issues for the new credentials. An empty
// argument leaves that field unchanged.
func (s *Store) UpdateCredentials(ctx context.Context, email, password string) error {
	current := s.User()
	if current == nil || !s.IsAuthenticated() {
		return ErrNotLoggedIn
	}

	resp, err := s.api.UpdateCredentials(ctx, client.UpdateCredentialsRequest{Email: email, Password: password})
	if err != nil {
		s.logger.Error().Err(err).Str("email", current.Email).Msg("Credentials update failed")
		return err
	}

	if email != "" {
		current.Email = email
	}
	if resp.Role != nil {
		current.Role = session.Role(*resp.Role)
	}
	if err := s.SetAuth(resp.Token, current); err != nil {
		s.logger.Error().Err(err).Str("email", current.Email).Msg("Credentials update failed")
		return err
	}

	s.logger.Info().Str("email", current.Email).Msg("Credentials updated")
	return nil
}

func (s *Store) buildUser(resp *client.LoginResponse, email string) *session.User {
	switch {
	case resp.User != nil && resp.User.Role != nil:
		s.logger.Debug().Msg("Role taken from nested user object")
	case resp.Role != nil:
		s.logger.Debug().Msg("Role taken from top-level response field")
	default:
		s.logger.Warn().Str("email", email).Msg("Login response carried no role")
	}
	return BuildUser(resp, email)
}

// BuildUser turns a login response into a session user. Fields the server
// omitted fall back to: id = nil, name = local part of email, email = the
// email used to log in, role = top-level role.
func BuildUser(resp *client.LoginResponse, email string) *session.User {
	name, _, _ := strings.Cut(email, "@")

	user := &session.User{
		Name:  name,
		Email: email,
	}

	if resp.Role != nil {
		user.Role = session.Role(*resp.Role)
	}

	if p := resp.User; p != nil {
		if p.ID != nil {
			id := *p.ID
			user.ID = &id
		}
		if p.Name != nil {
			user.Name = *p.Name
		}
		if p.Email != nil {
			user.Email = *p.Email
		}
		if p.Role != nil {
			user.Role = session.Role(*p.Role)
		}
	}

	return user
}
