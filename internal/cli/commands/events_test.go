package commands

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/eventmgmt/eventctl/internal/cli/client"
	"github.com/eventmgmt/eventctl/internal/testhelpers"
)

func addSampleEvents(env *testEnv) {
	env.api.AddEvent(gin.H{
		"id": 1, "name": "Go Meetup", "location": "Berlin",
		"date": int64(1767225600000), "maxAttendees": 50,
		"description": "Monthly meetup",
	})
	env.api.AddEvent(gin.H{"id": 2, "name": "Rust Night", "location": "Paris", "date": "2026-02-01T18:00:00Z"})
}

func TestEventsList_Table(t *testing.T) {
	env := newTestEnv(t)
	addSampleEvents(env)

	if err := runEventList(context.Background(), formatTable, (*client.Client).ListEvents, env.opts()...); err != nil {
		t.Fatalf("events ls failed: %v", err)
	}

	out := env.output()
	for _, want := range []string{"Go Meetup", "Berlin", "Rust Night", "Paris"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEventsList_Empty(t *testing.T) {
	env := newTestEnv(t)

	if err := runEventList(context.Background(), formatTable, (*client.Client).ListEvents, env.opts()...); err != nil {
		t.Fatalf("events ls failed: %v", err)
	}
	if out := env.output(); !strings.Contains(out, "No events found.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestEventsList_JSON(t *testing.T) {
	env := newTestEnv(t)
	addSampleEvents(env)

	if err := runEventList(context.Background(), formatJSON, (*client.Client).ListEvents, env.opts()...); err != nil {
		t.Fatalf("events ls failed: %v", err)
	}

	var events []map[string]interface{}
	if err := json.Unmarshal(env.out.Bytes(), &events); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0]["name"] != "Go Meetup" {
		t.Errorf("unexpected first event: %v", events[0])
	}
}

func TestEventsAttending_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	err := runEventList(context.Background(), formatTable, (*client.Client).MyAttendingEvents, env.opts()...)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 without a session, got %v", err)
	}

	reqs := env.api.Requests()
	if len(reqs) != 1 || reqs[0].Authorization != "" {
		t.Errorf("expected one anonymous request, got %+v", reqs)
	}
}

func TestEventsAttending_SendsBearerToken(t *testing.T) {
	env := newTestEnv(t)
	addSampleEvents(env)
	loginAs(t, env, "a@b.com", "ATTENDEE")

	if err := runEventList(context.Background(), formatTable, (*client.Client).MyAttendingEvents, env.opts()...); err != nil {
		t.Fatalf("events attending failed: %v", err)
	}

	reqs := env.api.Requests()
	last := reqs[len(reqs)-1]
	if last.Path != "/api/me/attending-events" {
		t.Fatalf("unexpected path %s", last.Path)
	}
	if last.Authorization != "Bearer "+testhelpers.TokenFor("a@b.com") {
		t.Errorf("unexpected Authorization header %q", last.Authorization)
	}
	if last.RequestID == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestEventShow(t *testing.T) {
	env := newTestEnv(t)
	addSampleEvents(env)

	if err := runEventShow(context.Background(), 1, formatTable, env.opts()...); err != nil {
		t.Fatalf("events show failed: %v", err)
	}

	out := env.output()
	for _, want := range []string{"Go Meetup (#1)", "Where:    Berlin", "Capacity: 50", "Monthly meetup"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEventShow_NotFound(t *testing.T) {
	env := newTestEnv(t)

	err := runEventShow(context.Background(), 99, formatTable, env.opts()...)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestEventRequest(t *testing.T) {
	env := newTestEnv(t)
	addSampleEvents(env)

	err := runEventRequest(context.Background(), 1, env.opts()...)
	if err == nil || !strings.Contains(err.Error(), "not authenticated") {
		t.Fatalf("expected not authenticated error, got %v", err)
	}

	loginAs(t, env, "a@b.com", "ATTENDEE")

	if err := runEventRequest(context.Background(), 1, env.opts()...); err != nil {
		t.Fatalf("events request failed: %v", err)
	}

	out := env.output()
	if !strings.Contains(out, "✓ Requested to attend event #1") {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "Status: PENDING") {
		t.Errorf("expected status in output: %s", out)
	}
}

func TestMyRequests_Empty(t *testing.T) {
	env := newTestEnv(t)
	loginAs(t, env, "a@b.com", "ATTENDEE")

	if err := runMyRequests(context.Background(), formatTable, env.opts()...); err != nil {
		t.Fatalf("events requests failed: %v", err)
	}
	if out := env.output(); !strings.Contains(out, "No attendance requests found.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestParseEventID(t *testing.T) {
	if id, err := parseEventID("42"); err != nil || id != 42 {
		t.Errorf("expected 42, got %d (%v)", id, err)
	}
	for _, raw := range []string{"", "abc", "0", "-3"} {
		if _, err := parseEventID(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}
