package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// APIError is returned for any non-2xx response
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Op, e.StatusCode, e.Body)
}

// Client represents an HTTP client for the event management API
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	validate   *validator.Validate
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the overall per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new API client. baseURL includes the API prefix,
// e.g. https://events.example.com/api. tokens may be nil.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		validate: validator.New(),
		logger:   zerolog.Nop(),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient.Transport = c.wrap(http.DefaultTransport)
	return c
}

// SetHTTPClient sets a custom HTTP client. The bearer hook is installed on
// top of its transport.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	hc := *httpClient
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = c.wrap(base)
	c.httpClient = &hc
}

// BaseURL returns the API base address
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) wrap(base http.RoundTripper) http.RoundTripper {
	return &bearerTransport{
		base:   base,
		tokens: c.tokens,
		logger: c.logger.With().Str("component", "api-client").Logger(),
	}
}

// do sends a JSON request and decodes a JSON response into out (if non-nil)
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Login authenticates the user and returns the token (and whatever profile
// fields the server chose to include)
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	reqBody := LoginRequest{
		Email:    email,
		Password: password,
	}
	if err := c.validate.Struct(&reqBody); err != nil {
		return nil, fmt.Errorf("invalid login request: %w", err)
	}

	var loginResp LoginResponse
	if err := c.do(ctx, "login failed", http.MethodPost, "/auth/login", reqBody, &loginResp); err != nil {
		return nil, err
	}

	if loginResp.Token == "" {
		return nil, fmt.Errorf("login failed: response did not include a token")
	}

	return &loginResp, nil
}

// Register creates a new account. Any 2xx response is success.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.validate.Struct(&req); err != nil {
		return fmt.Errorf("invalid registration request: %w", err)
	}

	return c.do(ctx, "registration failed", http.MethodPost, "/auth/register", req, nil)
}

// ListEvents returns all events
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, "failed to list events", http.MethodGet, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent returns a single event by ID
func (c *Client) GetEvent(ctx context.Context, id int64) (*Event, error) {
	var event Event
	if err := c.do(ctx, "failed to get event", http.MethodGet, fmt.Sprintf("/events/%d", id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// MyAttendingEvents returns the events the current user has requested to attend
func (c *Client) MyAttendingEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, "failed to list attending events", http.MethodGet, "/me/attending-events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// MyOrganizedEvents returns the events organized by the current user
func (c *Client) MyOrganizedEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, "failed to list organized events", http.MethodGet, "/me/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// MyRequests returns the current user's attendance requests
func (c *Client) MyRequests(ctx context.Context) ([]Attendee, error) {
	var requests []Attendee
	if err := c.do(ctx, "failed to list requests", http.MethodGet, "/me/requests", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// RequestToAttend asks to join an event
func (c *Client) RequestToAttend(ctx context.Context, eventID int64, req AttendRequest) (*Attendee, error) {
	if err := c.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid attend request: %w", err)
	}

	var attendee Attendee
	path := fmt.Sprintf("/events/%d/requests", eventID)
	if err := c.do(ctx, "failed to request attendance", http.MethodPost, path, req, &attendee); err != nil {
		return nil, err
	}
	return &attendee, nil
}
