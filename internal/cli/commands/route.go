package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eventmgmt/eventctl/internal/cli/routes"
	"github.com/eventmgmt/eventctl/internal/cli/session"
	"github.com/eventmgmt/eventctl/internal/cli/storage"
	"github.com/eventmgmt/eventctl/internal/logger"
)

// NewRouteCmd creates the route command
func NewRouteCmd() *cobra.Command {
	var envName, format string

	cmd := &cobra.Command{
		Use:   "route <path>",
		Short: "Resolve a page path and check whether you may open it",
		Long: `Resolve a page path against the route table and run the navigation
guard against the current session.

Examples:
  $ eventctl route /events/123
  $ eventctl route /admin/dashboard -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(args[0], format, WithEnvName(envName))
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name from eventctl.json")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "Output format: table, json, yaml")

	return cmd
}

// NewRoutesCmd creates the routes command
func NewRoutesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the page route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(format, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "Output format: table, json, yaml")

	return cmd
}

type routeView struct {
	Path     string            `json:"path" yaml:"path"`
	Route    routes.Route      `json:"route" yaml:"route"`
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Decision routes.Decision   `json:"decision" yaml:"decision"`
}

func runRoute(path, format string, opts ...Option) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	viewer, out, release := routeViewer(opts...)
	defer release()

	guard := routes.NewGuard(routes.Default(), viewer)
	match, decision := guard.Navigate(path)

	rt := &runtime{out: out}
	view := routeView{Path: match.Path, Route: match.Route, Params: match.Params, Decision: decision}
	if done, err := writeStructured(rt.out, format, view); done {
		return err
	}

	name := match.Route.Name
	if match.Route.IsCatchAll() {
		name = "(not found)"
	}

	rt.printf("Path:      %s\n", match.Path)
	rt.printf("Route:     %s -> %s\n", name, match.Route.Component)
	if len(match.Params) > 0 {
		keys := make([]string, 0, len(match.Params))
		for k := range match.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, match.Params[k]))
		}
		rt.printf("Params:    %s\n", strings.Join(pairs, ", "))
	}

	if decision.Allowed() {
		rt.println("Access:    ✓ allowed")
		return nil
	}

	rt.printf("Access:    ✗ %s (%s)\n", decision.Outcome, decision.Reason)
	if decision.Redirect != "" {
		rt.printf("Redirect:  %s\n", decision.Redirect)
	}
	return nil
}

// routeViewer returns the current session, or a logged-out one when no
// environment or storage is available. Resolving a path needs neither.
func routeViewer(opts ...Option) (routes.Viewer, io.Writer, func()) {
	rt, err := buildRuntime(opts...)
	if err == nil {
		return rt.session, rt.out, func() { _ = rt.Close() }
	}

	log := logger.GetLogger()
	log.Debug().Err(err).Msg("No session available, checking the route as a logged-out user")

	d := &deps{out: os.Stdout}
	for _, opt := range opts {
		opt(d)
	}
	anon, _ := session.New(storage.NewMemory(), log)
	return anon, d.out, func() {}
}

func runRoutes(format string, opts ...Option) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	d := &deps{out: os.Stdout}
	for _, opt := range opts {
		opt(d)
	}

	all := routes.Default().Routes()
	if done, err := writeStructured(d.out, format, all); done {
		return err
	}

	w := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tCOMPONENT\tACCESS")
	fmt.Fprintln(w, "────\t────\t─────────\t──────")
	for _, r := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Path, r.Name, r.Component, describeMeta(r.Meta))
	}
	return w.Flush()
}

func describeMeta(m routes.Meta) string {
	switch {
	case len(m.Roles) > 0:
		names := make([]string, len(m.Roles))
		for i, r := range m.Roles {
			names[i] = string(r)
		}
		return "auth: " + strings.Join(names, "/")
	case m.RequiresAuth:
		return "auth"
	case m.GuestOnly:
		return "guest only"
	}
	return "public"
}
