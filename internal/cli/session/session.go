// Package session holds the logged-in user's token and profile.
//
// A Session is created once per process and passed by pointer to the HTTP
// client (which reads the token) and to the navigation guard (which reads
// the role). Writes go through SetAuth and Clear, and are mirrored
// synchronously to two storage keys.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eventmgmt/eventctl/internal/cli/storage"
)

// Storage keys
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Session is the current authentication state
type Session struct {
	mu      sync.RWMutex
	token   string
	user    *User
	storage storage.Storage
	logger  zerolog.Logger
}

// New loads the session persisted in store.
// A malformed user entry is logged, removed, and treated as logged-out.
func New(store storage.Storage, logger zerolog.Logger) (*Session, error) {
	s := &Session{
		storage: store,
		logger:  logger.With().Str("component", "session").Logger(),
	}

	token, _, err := store.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	s.token = token

	user, err := s.loadUser()
	if err != nil {
		return nil, err
	}
	s.user = user

	return s, nil
}

func (s *Session) loadUser() (*User, error) {
	raw, ok, err := s.storage.Get(UserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var user *User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to parse persisted user, discarding it")
		if rmErr := s.storage.Remove(UserKey); rmErr != nil {
			s.logger.Warn().Err(rmErr).Msg("Failed to remove invalid user entry")
		}
		return nil, nil
	}

	return user, nil
}

// SetAuth persists token and user, then makes them current. The token is
// not validated. On a storage error the previous session stays in effect.
func (s *Session) SetAuth(token string, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(TokenKey, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.Set(UserKey, string(data)); err != nil {
		s.restoreToken(s.token)
		return fmt.Errorf("failed to persist user: %w", err)
	}

	s.token = token
	s.user = user.clone()
	return nil
}

// restoreToken puts the previous token back after a failed SetAuth.
// Callers hold mu.
func (s *Session) restoreToken(prev string) {
	var err error
	if prev == "" {
		err = s.storage.Remove(TokenKey)
	} else {
		err = s.storage.Set(TokenKey, prev)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to roll back persisted token")
	}
}

// Clear drops the session from memory and storage. Safe to call repeatedly.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Remove(TokenKey); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	if err := s.storage.Remove(UserKey); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}

	return nil
}

// Token returns the bearer token, or "" when there is none
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.clone()
}

// IsAuthenticated is true iff both a token and a user are present
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Role returns the current user's role, or "" when there is no user
func (s *Session) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *Session) IsAdmin() bool     { return s.Role() == RoleAdmin }
func (s *Session) IsOrganizer() bool { return s.Role() == RoleOrganizer }
func (s *Session) IsAttendee() bool  { return s.Role() == RoleAttendee }

// HasAnyRole reports whether the current role is one of roles
func (s *Session) HasAnyRole(roles ...Role) bool {
	role := s.Role()
	if role == "" {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
