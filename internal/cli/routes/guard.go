package routes

import (
	"net/url"

	"github.com/eventmgmt/eventctl/internal/cli/session"
)

// Outcome of a navigation check
type Outcome string

const (
	Allow         Outcome = "allow"
	RedirectLogin Outcome = "redirect-login"
	RedirectHome  Outcome = "redirect-home"
	Forbidden     Outcome = "forbidden"
	NotFound      Outcome = "not-found"
)

// Decision says whether navigation proceeds and, if not, where to go instead
type Decision struct {
	Outcome  Outcome `json:"outcome" yaml:"outcome"`
	Redirect string  `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Reason   string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Allowed reports whether navigation may proceed
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Viewer is the session state the guard consults
type Viewer interface {
	IsAuthenticated() bool
	Role() session.Role
}

// Guard enforces route metadata against a session
type Guard struct {
	table  *Table
	viewer Viewer
}

// NewGuard creates a guard for table that reads viewer on every check
func NewGuard(table *Table, viewer Viewer) *Guard {
	return &Guard{table: table, viewer: viewer}
}

// Check decides whether the viewer may visit route. requested is the path
// the user asked for and is carried in the login redirect.
// A route with roles implies authentication even without RequiresAuth.
func (g *Guard) Check(route Route, requested string) Decision {
	meta := route.Meta
	authenticated := g.viewer.IsAuthenticated()

	if (meta.RequiresAuth || len(meta.Roles) > 0) && !authenticated {
		return Decision{
			Outcome:  RedirectLogin,
			Redirect: g.pathFor("login", "/login") + "?redirect=" + url.QueryEscape(requested),
			Reason:   "authentication required",
		}
	}

	if len(meta.Roles) > 0 && !hasRole(meta.Roles, g.viewer.Role()) {
		return Decision{
			Outcome:  Forbidden,
			Redirect: g.pathFor("forbidden", "/forbidden"),
			Reason:   "role " + roleLabel(g.viewer.Role()) + " is not permitted",
		}
	}

	if meta.GuestOnly && authenticated {
		return Decision{
			Outcome:  RedirectHome,
			Redirect: g.pathFor("home", "/"),
			Reason:   "already logged in",
		}
	}

	return Decision{Outcome: Allow}
}

// Navigate resolves path and checks it in one step
func (g *Guard) Navigate(path string) (Match, Decision) {
	match, ok := g.table.Resolve(path)
	if !ok {
		return match, Decision{Outcome: NotFound, Reason: "no route matches " + match.Path}
	}
	return match, g.Check(match.Route, match.Path)
}

func (g *Guard) pathFor(name, fallback string) string {
	if r, ok := g.table.ByName(name); ok {
		return r.Path
	}
	return fallback
}

func hasRole(roles []session.Role, role session.Role) bool {
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

func roleLabel(r session.Role) string {
	if r == "" {
		return "(none)"
	}
	return string(r)
}
