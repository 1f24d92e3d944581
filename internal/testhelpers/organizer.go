package testhelpers

import (
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type stubAttendee struct {
	ID      int64
	EventID int64
	Name    string
	Email   string
	Status  string
}

func (a stubAttendee) json() gin.H {
	return gin.H{"id": a.ID, "name": a.Name, "email": a.Email, "status": a.Status}
}

// AddAttendee records an attendance request and returns its id
func (s *StubAPI) AddAttendee(eventID int64, name, email, status string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.attendees = append(s.attendees, stubAttendee{ID: id, EventID: eventID, Name: name, Email: email, Status: status})
	return id
}

// Account returns the account registered under email
func (s *StubAPI) Account(email string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	return acct, ok
}

// Events returns a copy of the stored events
func (s *StubAPI) Events() []gin.H {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gin.H, len(s.events))
	copy(out, s.events)
	return out
}

// accountFromHeader maps a bearer token back to its account
func (s *StubAPI) accountFromHeader(header string) (Account, bool) {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return Account{}, false
	}

	s.mu.Lock()
	issuer := s.issuer
	s.mu.Unlock()

	var email string
	if issuer != nil {
		claims, err := issuer.Validate(token)
		if err != nil {
			return Account{}, false
		}
		email = claims.Email
	} else {
		var ok bool
		if email, ok = strings.CutPrefix(token, "token-"); !ok {
			return Account{}, false
		}
	}

	return s.Account(email)
}

// requireAccount rejects requests without a known account (401) or, when
// roles are given, with a role outside them (403)
func (s *StubAPI) requireAccount(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct, ok := s.accountFromHeader(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, acct.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Set("account", acct)
		c.Next()
	}
}

func (s *StubAPI) eventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// eventIndex finds an event by id. Callers hold mu.
func (s *StubAPI) eventIndex(id int64) int {
	for i, e := range s.events {
		if fmt.Sprint(e["id"]) == strconv.FormatInt(id, 10) {
			return i
		}
	}
	return -1
}

func bindEvent(c *gin.Context) (gin.H, bool) {
	var body gin.H
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if name, _ := body["name"].(string); name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return nil, false
	}
	return body, true
}

func (s *StubAPI) createEvent(c *gin.Context) {
	if c.FullPath() == "/api/events" && c.Query("organizerId") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organizerId is required"})
		return
	}

	body, ok := bindEvent(c)
	if !ok {
		return
	}

	s.mu.Lock()
	body["id"] = s.nextID
	s.nextID++
	s.events = append(s.events, body)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, body)
}

func (s *StubAPI) updateEvent(c *gin.Context) {
	id, ok := s.eventID(c)
	if !ok {
		return
	}
	body, ok := bindEvent(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.eventIndex(id)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	body["id"] = id
	s.events[i] = body
	c.JSON(http.StatusOK, body)
}

func (s *StubAPI) deleteEvent(c *gin.Context) {
	id, ok := s.eventID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.eventIndex(id)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	s.events = append(s.events[:i], s.events[i+1:]...)

	kept := s.attendees[:0]
	for _, a := range s.attendees {
		if a.EventID != id {
			kept = append(kept, a)
		}
	}
	s.attendees = kept

	c.Status(http.StatusNoContent)
}

// attendeesWhere lists attendees of an event, optionally filtered by status
func (s *StubAPI) attendeesWhere(c *gin.Context, status string) {
	id, ok := s.eventID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []gin.H{}
	for _, a := range s.attendees {
		if a.EventID == id && (status == "" || a.Status == status) {
			out = append(out, a.json())
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *StubAPI) listAttendees(c *gin.Context) {
	s.attendeesWhere(c, "")
}

func (s *StubAPI) pendingRequests(c *gin.Context) {
	s.attendeesWhere(c, "PENDING")
}

func (s *StubAPI) decide(status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := s.eventID(c)
		if !ok {
			return
		}
		attendeeID, err := strconv.ParseInt(c.Param("attendeeId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attendee id"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.attendees {
			a := &s.attendees[i]
			if a.ID == attendeeID && a.EventID == eventID {
				a.Status = status
				c.JSON(http.StatusOK, a.json())
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
	}
}

func (s *StubAPI) mostAttended(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[int64]int64)
	for _, a := range s.attendees {
		if a.Status == "APPROVED" {
			counts[a.EventID]++
		}
	}

	out := make([]gin.H, 0, len(s.events))
	for _, e := range s.events {
		id, _ := strconv.ParseInt(fmt.Sprint(e["id"]), 10, 64)
		out = append(out, gin.H{"event": e, "attendeeCount": counts[id]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i]["attendeeCount"].(int64) > out[j]["attendeeCount"].(int64)
	})
	c.JSON(http.StatusOK, out)
}

func (s *StubAPI) updateCredentials(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct := c.MustGet("account").(Account)

	s.mu.Lock()
	if req.Email != "" && req.Email != acct.Email {
		if _, taken := s.accounts[req.Email]; taken {
			s.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		delete(s.accounts, acct.Email)
		acct.Email = req.Email
	}
	if req.Password != "" {
		acct.Password = req.Password
	}
	s.accounts[acct.Email] = acct
	issuer := s.issuer
	s.mu.Unlock()

	token := TokenFor(acct.Email)
	if issuer != nil {
		signed, err := issuer.Generate(acct)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		token = signed
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": acct.Role})
}
