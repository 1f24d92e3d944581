package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/eventmgmt/eventctl/internal/cli/auth"
	"github.com/eventmgmt/eventctl/internal/cli/session"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var envName, format string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(format, WithEnvName(envName))
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name from eventctl.json")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "Output format: table, json, yaml")

	return cmd
}

type whoamiView struct {
	Environment   string          `json:"environment" yaml:"environment"`
	Authenticated bool            `json:"authenticated" yaml:"authenticated"`
	User          *session.User   `json:"user" yaml:"user"`
	Token         *auth.TokenInfo `json:"token,omitempty" yaml:"token,omitempty"`
}

func runWhoami(format string, opts ...Option) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	view := whoamiView{
		Environment:   rt.env.Name,
		Authenticated: rt.store.IsAuthenticated(),
		User:          rt.store.User(),
	}
	if token := rt.store.Token(); token != "" {
		// Opaque tokens are fine, there is just nothing to show
		if info, err := auth.InspectToken(token); err == nil {
			view.Token = info
		}
	}

	if done, err := writeStructured(rt.out, format, view); done {
		return err
	}

	if !view.Authenticated {
		rt.printf("Not logged in to %s. Run 'eventctl login' first.\n", rt.env.Name)
		return nil
	}

	rt.printf("Environment: %s (%s)\n", rt.env.Name, rt.env.BaseURL)
	rt.printf("User:        %s (%s)\n", view.User.Name, view.User.Email)
	if view.User.ID != nil {
		rt.printf("ID:          %d\n", *view.User.ID)
	}
	rt.printf("Role:        %s\n", roleOrNone(view.User.Role))

	if view.Token != nil && view.Token.ExpiresAt != nil {
		status := "valid"
		if view.Token.Expired(time.Now()) {
			status = "expired, run 'eventctl login' again"
		}
		rt.printf("Token:       expires %s (%s)\n", view.Token.ExpiresAt.Local().Format(time.RFC1123), status)
	}

	return nil
}

func roleOrNone(r session.Role) string {
	if r == "" {
		return "(none)"
	}
	return string(r)
}
