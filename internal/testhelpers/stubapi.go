// Package testhelpers provides a fake event-management API for tests.
package testhelpers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// Account is a registered user known to the stub
type Account struct {
	ID       int64
	Name     string
	Email    string
	Password string
	Role     string
}

// RecordedRequest captures what the stub received
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// LoginResponder builds the login response body for an account
type LoginResponder func(acct Account, token string) gin.H

// TokenOnlyWithRole mirrors the backend: {token, role}, no user object
func TokenOnlyWithRole(acct Account, token string) gin.H {
	return gin.H{"token": token, "role": acct.Role}
}

// TokenWithUser returns a full nested user object
func TokenWithUser(acct Account, token string) gin.H {
	return gin.H{
		"token": token,
		"user": gin.H{
			"id":    acct.ID,
			"name":  acct.Name,
			"email": acct.Email,
			"role":  acct.Role,
		},
	}
}

// StubAPI is an in-process fake of the event-management API
type StubAPI struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]Account
	events    []gin.H
	attendees []stubAttendee
	nextID    int64
	requests  []RecordedRequest
	issuer    *TokenIssuer

	// LoginResponse shapes successful login bodies
	LoginResponse LoginResponder
	// FailRegister forces /auth/register to return this status when non-zero
	FailRegister int
}

// NewStubAPI starts a stub server. Its URL + "/api" is the API base address.
func NewStubAPI(t *testing.T) *StubAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &StubAPI{
		accounts:      make(map[string]Account),
		nextID:        1,
		LoginResponse: TokenOnlyWithRole,
	}

	router := gin.New()
	router.Use(s.record)

	api := router.Group("/api")
	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)
	api.GET("/events", s.listEvents)
	api.GET("/events/:id", s.getEvent)

	me := api.Group("/me", s.requireBearer)
	me.GET("/attending-events", s.listEvents)
	me.GET("/events", s.listEvents)
	me.GET("/requests", func(c *gin.Context) { c.JSON(http.StatusOK, []gin.H{}) })

	api.POST("/events/:id/requests", s.requireBearer, s.requestToAttend)
	api.GET("/events/:id/attendees", s.listAttendees)

	me.PUT("/credentials", s.requireAccount(), s.updateCredentials)

	organizer := api.Group("", s.requireAccount("ORGANIZER", "ADMIN"))
	organizer.POST("/me/events", s.createEvent)
	organizer.POST("/events", s.createEvent)
	organizer.PUT("/events/:id", s.updateEvent)
	organizer.DELETE("/events/:id", s.deleteEvent)
	organizer.GET("/events/most-attendees", s.mostAttended)
	organizer.GET("/events/:id/requests", s.pendingRequests)
	organizer.POST("/events/:id/requests/:attendeeId/approve", s.decide("APPROVED"))
	organizer.POST("/events/:id/requests/:attendeeId/reject", s.decide("REJECTED"))

	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Server.Close)

	return s
}

// BaseURL returns the API base address
func (s *StubAPI) BaseURL() string {
	return s.URL + "/api"
}

// AddAccount registers an account directly
func (s *StubAPI) AddAccount(acct Account) Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct.ID == 0 {
		acct.ID = s.nextID
		s.nextID++
	}
	s.accounts[acct.Email] = acct
	return acct
}

// AddEvent adds an event returned by the listing endpoints
func (s *StubAPI) AddEvent(event gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Requests returns a copy of everything the stub has received
func (s *StubAPI) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// UseSignedTokens makes login issue signed JWTs instead of opaque tokens.
// Protected endpoints then require a valid, unexpired signature.
func (s *StubAPI) UseSignedTokens(issuer *TokenIssuer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuer = issuer
}

// TokenFor is the opaque token the stub issues for an email
func TokenFor(email string) string {
	return "token-" + email
}

func (s *StubAPI) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *StubAPI) requireBearer(c *gin.Context) {
	header := c.GetHeader("Authorization")

	s.mu.Lock()
	issuer := s.issuer
	s.mu.Unlock()

	if issuer != nil {
		if _, err := issuer.Validate(strings.TrimPrefix(header, "Bearer ")); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Next()
		return
	}

	if !strings.HasPrefix(header, "Bearer token-") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.Next()
}

func (s *StubAPI) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	responder := s.LoginResponse
	issuer := s.issuer
	s.mu.Unlock()

	if !ok || acct.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := TokenFor(acct.Email)
	if issuer != nil {
		signed, err := issuer.Generate(acct)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		token = signed
	}

	c.JSON(http.StatusOK, responder(acct, token))
}

func (s *StubAPI) register(c *gin.Context) {
	if s.FailRegister != 0 {
		c.JSON(s.FailRegister, gin.H{"error": "registration rejected"})
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	_, exists := s.accounts[req.Email]
	s.mu.Unlock()
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	s.AddAccount(Account{Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role})
	c.Status(http.StatusOK)
}

func (s *StubAPI) listEvents(c *gin.Context) {
	s.mu.Lock()
	events := make([]gin.H, len(s.events))
	copy(events, s.events)
	s.mu.Unlock()
	c.JSON(http.StatusOK, events)
}

func (s *StubAPI) getEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if fmt.Sprint(e["id"]) == strconv.FormatInt(id, 10) {
			c.JSON(http.StatusOK, e)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
}

func (s *StubAPI) requestToAttend(c *gin.Context) {
	eventID, ok := s.eventID(c)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := s.AddAttendee(eventID, req.Name, req.Email, "PENDING")
	c.JSON(http.StatusCreated, gin.H{"id": id, "name": req.Name, "email": req.Email, "status": "PENDING"})
}
