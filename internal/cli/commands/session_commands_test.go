package commands

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eventmgmt/eventctl/internal/testhelpers"
)

func loginAs(t *testing.T, env *testEnv, email, role string) {
	t.Helper()
	env.api.AddAccount(testhelpers.Account{Email: email, Password: "pw", Role: role})
	if err := runLogin(context.Background(), email, "pw", env.opts()...); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	env.output()
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	loginAs(t, env, "a@b.com", "ADMIN")

	if err := runLogout(env.opts()...); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if out := env.output(); !strings.Contains(out, "✓ Logged out of test") {
		t.Errorf("unexpected output: %s", out)
	}
	if env.store.Len() != 0 {
		t.Errorf("expected storage to be empty, got %d entries", env.store.Len())
	}

	// Logging out again is harmless
	if err := runLogout(env.opts()...); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
	if out := env.output(); !strings.Contains(out, "Not logged in to test") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestWhoami_LoggedOut(t *testing.T) {
	env := newTestEnv(t)

	if err := runWhoami(formatTable, env.opts()...); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if out := env.output(); !strings.Contains(out, "Not logged in to test") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestWhoami_Table(t *testing.T) {
	env := newTestEnv(t)
	loginAs(t, env, "dana@example.com", "ORGANIZER")

	if err := runWhoami(formatTable, env.opts()...); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}

	out := env.output()
	for _, want := range []string{"User:        dana (dana@example.com)", "Role:        ORGANIZER"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWhoami_JSON(t *testing.T) {
	env := newTestEnv(t)
	loginAs(t, env, "a@b.com", "ADMIN")

	if err := runWhoami(formatJSON, env.opts()...); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}

	var view struct {
		Environment   string `json:"environment"`
		Authenticated bool   `json:"authenticated"`
		User          struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.out.Bytes(), &view); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	if view.Environment != "test" || !view.Authenticated {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.User.Email != "a@b.com" || view.User.Role != "ADMIN" {
		t.Errorf("unexpected user: %+v", view.User)
	}
}

func TestWhoami_YAML(t *testing.T) {
	env := newTestEnv(t)

	if err := runWhoami(formatYAML, env.opts()...); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}

	var view map[string]interface{}
	if err := yaml.Unmarshal(env.out.Bytes(), &view); err != nil {
		t.Fatalf("invalid YAML output: %v", err)
	}
	if view["authenticated"] != false {
		t.Errorf("expected authenticated: false, got %v", view["authenticated"])
	}
}

func TestWhoami_InvalidFormat(t *testing.T) {
	env := newTestEnv(t)

	err := runWhoami("xml", env.opts()...)
	if err == nil || !strings.Contains(err.Error(), "invalid output format") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
}

func TestWhoami_SignedTokenExpiry(t *testing.T) {
	env := newTestEnv(t)
	env.api.UseSignedTokens(testhelpers.NewTokenIssuer("test-secret", time.Hour))
	loginAs(t, env, "a@b.com", "ADMIN")

	if err := runWhoami(formatTable, env.opts()...); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}

	out := env.output()
	if !strings.Contains(out, "Token:       expires") || !strings.Contains(out, "(valid)") {
		t.Errorf("expected token expiry line:\n%s", out)
	}

	// Signed tokens are still accepted by protected endpoints
	if err := runMyRequests(context.Background(), formatTable, env.opts()...); err != nil {
		t.Fatalf("events requests failed: %v", err)
	}
}

func TestWhoami_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.api.UseSignedTokens(testhelpers.NewTokenIssuer("test-secret", -time.Minute))
	loginAs(t, env, "a@b.com", "ATTENDEE")

	if err := runWhoami(formatJSON, env.opts()...); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}

	var view struct {
		Token struct {
			Role      string     `json:"role"`
			ExpiresAt *time.Time `json:"expiresAt"`
		} `json:"token"`
	}
	if err := json.Unmarshal(env.out.Bytes(), &view); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if view.Token.Role != "ATTENDEE" {
		t.Errorf("expected role claim ATTENDEE, got %q", view.Token.Role)
	}
	if view.Token.ExpiresAt == nil || !view.Token.ExpiresAt.Before(time.Now()) {
		t.Errorf("expected an expiry in the past, got %v", view.Token.ExpiresAt)
	}
	env.output()

	// The server rejects it
	err := runMyRequests(context.Background(), formatTable, env.opts()...)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 for an expired token, got %v", err)
	}
}
