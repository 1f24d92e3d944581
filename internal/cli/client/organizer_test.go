package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventmgmt/eventctl/internal/testhelpers"
)

func organizerClient(t *testing.T, role string) (*Client, *testhelpers.StubAPI) {
	t.Helper()
	stub := testhelpers.NewStubAPI(t)
	stub.AddAccount(testhelpers.Account{ID: 100, Email: "org@x.io", Password: "pw", Role: role})
	return New(stub.BaseURL(), staticToken(testhelpers.TokenFor("org@x.io"))), stub
}

func sampleInput() EventInput {
	limit := 30
	return EventInput{
		Name:         "Launch Party",
		Date:         Timestamp{Time: time.Date(2026, 11, 5, 19, 0, 0, 0, time.UTC)},
		Location:     "Lisbon",
		MaxAttendees: &limit,
	}
}

func TestCreateUpdateDeleteEvent(t *testing.T) {
	c, stub := organizerClient(t, "ORGANIZER")
	ctx := context.Background()

	created, err := c.CreateEvent(ctx, sampleInput())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Launch Party", created.Name)
	assert.True(t, created.Date.Equal(time.Date(2026, 11, 5, 19, 0, 0, 0, time.UTC)))
	require.NotNil(t, created.MaxAttendees)
	assert.Equal(t, 30, *created.MaxAttendees)

	in := sampleInput()
	in.Location = "Porto"
	updated, err := c.UpdateEvent(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Porto", updated.Location)

	require.NoError(t, c.DeleteEvent(ctx, created.ID))
	assert.Empty(t, stub.Events())

	var apiErr *APIError
	err = c.DeleteEvent(ctx, created.ID)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	reqs := stub.Requests()
	require.Len(t, reqs, 4)
	assert.Equal(t, "/api/me/events", reqs[0].Path)
	assert.Equal(t, http.MethodPut, reqs[1].Method)
	assert.Equal(t, http.MethodDelete, reqs[2].Method)
}

func TestCreateEventFor_SendsOrganizerID(t *testing.T) {
	c, stub := organizerClient(t, "ADMIN")

	_, err := c.CreateEventFor(context.Background(), 7, sampleInput())
	require.NoError(t, err)

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/events", reqs[0].Path)
}

func TestCreateEvent_ValidatesBeforeSending(t *testing.T) {
	c, stub := organizerClient(t, "ORGANIZER")

	tests := []struct {
		name string
		edit func(*EventInput)
	}{
		{name: "missing name", edit: func(in *EventInput) { in.Name = "" }},
		{name: "missing date", edit: func(in *EventInput) { in.Date = Timestamp{} }},
		{name: "bad image url", edit: func(in *EventInput) { in.ImageURL = "not a url" }},
		{name: "zero capacity", edit: func(in *EventInput) { zero := 0; in.MaxAttendees = &zero }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.edit(&in)
			_, err := c.CreateEvent(context.Background(), in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid event")
		})
	}

	assert.Empty(t, stub.Requests())
}

func TestOrganizerEndpoints_RejectAttendees(t *testing.T) {
	c, _ := organizerClient(t, "ATTENDEE")

	_, err := c.CreateEvent(context.Background(), sampleInput())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestAttendanceDecisions(t *testing.T) {
	c, stub := organizerClient(t, "ORGANIZER")
	ctx := context.Background()
	stub.AddEvent(gin.H{"id": 1, "name": "Go Meetup"})
	stub.AddEvent(gin.H{"id": 2, "name": "Rust Night"})

	ann := stub.AddAttendee(1, "Ann", "ann@x.io", StatusPending)
	bob := stub.AddAttendee(1, "Bob", "bob@x.io", StatusPending)
	stub.AddAttendee(2, "Cy", "cy@x.io", StatusPending)

	pending, err := c.PendingRequests(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	approved, err := c.ApproveRequest(ctx, 1, ann)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "ann@x.io", approved.Email)

	rejected, err := c.RejectRequest(ctx, 1, bob)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)

	pending, err = c.PendingRequests(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := c.EventAttendees(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// a request belongs to exactly one event
	_, err = c.ApproveRequest(ctx, 2, ann)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	stats, err := c.MostAttendedEvents(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Go Meetup", stats[0].Event.Name)
	assert.Equal(t, int64(1), stats[0].AttendeeCount)
	assert.Equal(t, int64(0), stats[1].AttendeeCount)
}

func TestRequestToAttend_ShowsUpAsPending(t *testing.T) {
	c, stub := organizerClient(t, "ORGANIZER")
	ctx := context.Background()
	stub.AddEvent(gin.H{"id": 1, "name": "Go Meetup"})

	_, err := c.RequestToAttend(ctx, 1, AttendRequest{Name: "Dee", Email: "dee@x.io"})
	require.NoError(t, err)

	pending, err := c.PendingRequests(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "dee@x.io", pending[0].Email)
}

func TestUpdateCredentials(t *testing.T) {
	c, stub := organizerClient(t, "ORGANIZER")
	ctx := context.Background()

	_, err := c.UpdateCredentials(ctx, UpdateCredentialsRequest{})
	assert.ErrorIs(t, err, ErrNoChanges)

	_, err = c.UpdateCredentials(ctx, UpdateCredentialsRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials update")
	assert.Empty(t, stub.Requests())

	resp, err := c.UpdateCredentials(ctx, UpdateCredentialsRequest{Email: "new@x.io", Password: "longer-pw"})
	require.NoError(t, err)
	assert.Equal(t, testhelpers.TokenFor("new@x.io"), resp.Token)
	require.NotNil(t, resp.Role)
	assert.Equal(t, "ORGANIZER", *resp.Role)

	acct, ok := stub.Account("new@x.io")
	require.True(t, ok)
	assert.Equal(t, "longer-pw", acct.Password)
	_, ok = stub.Account("org@x.io")
	assert.False(t, ok)
}
