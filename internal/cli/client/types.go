package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserPayload is the optional user object of a login response.
// Every field may be absent.
type UserPayload struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// LoginResponse represents the login response.
// The server may report the role nested under user, at the top level, or both.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserPayload `json:"user,omitempty"`
	Role  *string      `json:"role,omitempty"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=ATTENDEE ORGANIZER ADMIN"`
}

// Event represents an event listed by the API
type Event struct {
	ID           int64     `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	CreationDate Timestamp `json:"creationDate" yaml:"creationDate"`
	Date         Timestamp `json:"date" yaml:"date"`
	Location     string    `json:"location" yaml:"location"`
	Description  string    `json:"description" yaml:"description"`
	ImageURL     string    `json:"imageUrl" yaml:"imageUrl"`
	MaxAttendees *int      `json:"maxAttendees" yaml:"maxAttendees"`
}

// AttendRequest is the body of a request to attend an event
type AttendRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
}

// Attendee represents an attendance request/registration
type Attendee struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Timestamp decodes dates sent either as epoch milliseconds or as strings
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000+00:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("unsupported timestamp format: %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// MarshalYAML renders the timestamp as RFC3339, or null when unset
func (t Timestamp) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time.Format(time.RFC3339), nil
}

// String renders the timestamp for tables
func (t Timestamp) String() string {
	if t.IsZero() {
		return "-"
	}
	return t.Time.Format("2006-01-02 15:04")
}

// EventInput is the body for creating or updating an event
type EventInput struct {
	Name         string    `json:"name" validate:"required,max=255"`
	Date         Timestamp `json:"date"`
	Location     string    `json:"location" validate:"max=255"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty" validate:"omitempty,url"`
	MaxAttendees *int      `json:"maxAttendees,omitempty" validate:"omitempty,min=1"`
}

// EventStats pairs an event with its approved attendee count
type EventStats struct {
	Event         Event `json:"event" yaml:"event"`
	AttendeeCount int64 `json:"attendeeCount" yaml:"attendeeCount"`
}

// UpdateCredentialsRequest changes the logged-in user's email and/or password.
// Empty fields are left unchanged by the server.
type UpdateCredentialsRequest struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// Attendance request states
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)
