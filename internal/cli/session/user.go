package session

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the authorization role of a user
type Role string

const (
	RoleAttendee  Role = "ATTENDEE"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

var ErrInvalidRole = errors.New("invalid role")

// Roles returns every known role
func Roles() []Role {
	return []Role{RoleAttendee, RoleOrganizer, RoleAdmin}
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAttendee, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole parses a role name, case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w '%s', must be one of: ATTENDEE, ORGANIZER, ADMIN", ErrInvalidRole, s)
	}
	return r, nil
}

// User is the profile of the logged-in user.
// ID is nil when the server did not report one.
type User struct {
	ID    *int64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.ID != nil {
		id := *u.ID
		c.ID = &id
	}
	return &c
}
