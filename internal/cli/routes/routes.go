// Package routes declares the application's pages and their access rules.
//
// The table is plain data. Resolving a path to a route and deciding whether
// the current session may visit it are separate steps (Table.Resolve and
// Guard.Check).
package routes

import (
	"errors"
	"fmt"
	"net/http"
	pathpkg "path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eventmgmt/eventctl/internal/cli/session"
)

// CatchAllPath matches any path no other route matches
const CatchAllPath = "/*"

var (
	ErrCatchAllNotLast = errors.New("catch-all route must be the last route")
	ErrDuplicateName   = errors.New("duplicate route name")
	ErrDuplicatePath   = errors.New("duplicate route path")
)

// Meta is the access metadata of a route
type Meta struct {
	RequiresAuth bool           `json:"requiresAuth,omitempty" yaml:"requiresAuth,omitempty"`
	GuestOnly    bool           `json:"guestOnly,omitempty" yaml:"guestOnly,omitempty"`
	Roles        []session.Role `json:"roles,omitempty" yaml:"roles,omitempty"`
}

// Route maps a path pattern to a page. Path parameters use {name}.
type Route struct {
	Path      string `json:"path" yaml:"path"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Component string `json:"component" yaml:"component"`
	Meta      Meta   `json:"meta" yaml:"meta"`
}

// IsCatchAll reports whether r is the not-found route
func (r Route) IsCatchAll() bool {
	return r.Path == CatchAllPath
}

// Match is the result of resolving a path
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Param returns a path parameter, or "" if absent
func (m Match) Param(key string) string {
	return m.Params[key]
}

// Table is an ordered, immutable route list
type Table struct {
	routes []Route
	byName map[string]int
	byPath map[string]int
	mux    *chi.Mux
}

// NewTable validates routes and builds the matcher. If a catch-all route is
// present it must be the last entry.
func NewTable(routes []Route) (*Table, error) {
	t := &Table{
		routes: make([]Route, len(routes)),
		byName: make(map[string]int),
		byPath: make(map[string]int),
		mux:    chi.NewRouter(),
	}
	copy(t.routes, routes)

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	for i, r := range t.routes {
		if r.IsCatchAll() && i != len(t.routes)-1 {
			return nil, fmt.Errorf("%w: found at position %d of %d", ErrCatchAllNotLast, i+1, len(t.routes))
		}
		if r.Name != "" {
			if _, dup := t.byName[r.Name]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateName, r.Name)
			}
			t.byName[r.Name] = i
		}
		if _, dup := t.byPath[r.Path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, r.Path)
		}
		t.byPath[r.Path] = i

		t.mux.Get(r.Path, noop)
	}

	return t, nil
}

// Routes returns the routes in declaration order
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// ByName looks up a named route
func (t *Table) ByName(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Resolve finds the route for path. Query strings, fragments and a
// trailing slash are ignored. ok is false only when nothing matches, which
// cannot happen for a table ending in a catch-all.
func (t *Table) Resolve(path string) (Match, bool) {
	clean := normalize(path)

	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, clean) || len(rctx.RoutePatterns) == 0 {
		return Match{Path: clean}, false
	}

	pattern := rctx.RoutePatterns[len(rctx.RoutePatterns)-1]
	i, ok := t.byPath[pattern]
	if !ok {
		return Match{Path: clean}, false
	}

	params := make(map[string]string)
	for k, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[k]
	}

	return Match{Route: t.routes[i], Path: clean, Params: params}, true
}

// normalize treats its input as a plain path: "//x" is the path "/x",
// never a host.
func normalize(raw string) string {
	p, _, _ := strings.Cut(raw, "#")
	p, _, _ = strings.Cut(p, "?")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return pathpkg.Clean(p)
}
