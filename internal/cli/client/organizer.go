package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNoChanges is returned by UpdateCredentials when neither field is set
var ErrNoChanges = errors.New("nothing to update")

func (c *Client) validEvent(in *EventInput) error {
	if err := c.validate.Struct(in); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("invalid event: date is required")
	}
	return nil
}

// CreateEvent creates an event owned by the logged-in organizer
func (c *Client) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	if err := c.validEvent(&in); err != nil {
		return nil, err
	}

	var event Event
	if err := c.do(ctx, "failed to create event", http.MethodPost, "/me/events", in, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEventFor creates an event on behalf of another organizer (admins)
func (c *Client) CreateEventFor(ctx context.Context, organizerID int64, in EventInput) (*Event, error) {
	if err := c.validEvent(&in); err != nil {
		return nil, err
	}

	path := "/events?" + url.Values{"organizerId": {strconv.FormatInt(organizerID, 10)}}.Encode()
	var event Event
	if err := c.do(ctx, "failed to create event", http.MethodPost, path, in, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent replaces an event's editable fields
func (c *Client) UpdateEvent(ctx context.Context, id int64, in EventInput) (*Event, error) {
	if err := c.validEvent(&in); err != nil {
		return nil, err
	}

	var event Event
	if err := c.do(ctx, "failed to update event", http.MethodPut, fmt.Sprintf("/events/%d", id), in, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event and its attendance requests
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, "failed to delete event", http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil)
}

// EventAttendees lists everyone registered for an event
func (c *Client) EventAttendees(ctx context.Context, eventID int64) ([]Attendee, error) {
	var attendees []Attendee
	path := fmt.Sprintf("/events/%d/attendees", eventID)
	if err := c.do(ctx, "failed to list attendees", http.MethodGet, path, nil, &attendees); err != nil {
		return nil, err
	}
	return attendees, nil
}

// PendingRequests lists attendance requests awaiting a decision
func (c *Client) PendingRequests(ctx context.Context, eventID int64) ([]Attendee, error) {
	var attendees []Attendee
	path := fmt.Sprintf("/events/%d/requests", eventID)
	if err := c.do(ctx, "failed to list pending requests", http.MethodGet, path, nil, &attendees); err != nil {
		return nil, err
	}
	return attendees, nil
}

// ApproveRequest accepts an attendance request
func (c *Client) ApproveRequest(ctx context.Context, eventID, attendeeID int64) (*Attendee, error) {
	return c.decide(ctx, eventID, attendeeID, "approve")
}

// RejectRequest declines an attendance request
func (c *Client) RejectRequest(ctx context.Context, eventID, attendeeID int64) (*Attendee, error) {
	return c.decide(ctx, eventID, attendeeID, "reject")
}

func (c *Client) decide(ctx context.Context, eventID, attendeeID int64, action string) (*Attendee, error) {
	var attendee Attendee
	path := fmt.Sprintf("/events/%d/requests/%d/%s", eventID, attendeeID, action)
	if err := c.do(ctx, "failed to "+action+" request", http.MethodPost, path, nil, &attendee); err != nil {
		return nil, err
	}
	return &attendee, nil
}

// MostAttendedEvents returns events ranked by approved attendees
func (c *Client) MostAttendedEvents(ctx context.Context) ([]EventStats, error) {
	var stats []EventStats
	if err := c.do(ctx, "failed to load event stats", http.MethodGet, "/events/most-attendees", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// UpdateCredentials changes the logged-in user's email and/or password. The
// server answers with a fresh token.
func (c *Client) UpdateCredentials(ctx context.Context, req UpdateCredentialsRequest) (*LoginResponse, error) {
	if req.Email == "" && req.Password == "" {
		return nil, ErrNoChanges
	}
	if err := c.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid credentials update: %w", err)
	}

	var resp LoginResponse
	if err := c.do(ctx, "failed to update credentials", http.MethodPut, "/me/credentials", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("failed to update credentials: response did not include a token")
	}
	return &resp, nil
}
