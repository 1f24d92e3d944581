package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eventmgmt/eventctl/internal/cli/session"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var name, email, password, role, envName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Long: `Create an account and log in with it.

The role defaults to ATTENDEE. When running in a terminal without --role,
an interactive prompt lets you pick one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if role == "" && term.IsTerminal(int(syscall.Stdin)) {
				picked, err := promptRole()
				if err != nil {
					return err
				}
				role = picked.String()
			}
			return runRegister(cmd.Context(), name, email, password, role, WithEnvName(envName))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set EVENTCTL_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set EVENTCTL_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&role, "role", "", "Role: ATTENDEE, ORGANIZER or ADMIN (default ATTENDEE)")
	cmd.Flags().StringVar(&envName, "env", "", "Environment name from eventctl.json")

	return cmd
}

func runRegister(ctx context.Context, name, email, password, roleName string, opts ...Option) error {
	if email == "" {
		email = os.Getenv("EVENTCTL_EMAIL")
	}
	if password == "" {
		password = os.Getenv("EVENTCTL_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or EVENTCTL_EMAIL env var)")
	}

	role := session.RoleAttendee
	if roleName != "" {
		parsed, err := session.ParseRole(roleName)
		if err != nil {
			return err
		}
		role = parsed
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if password == "" {
		password, err = readPassword()
		if err != nil {
			return err
		}
	}

	rt.printf("Registering %s on %s (%s)...\n", email, rt.env.Name, rt.env.BaseURL)

	if err := rt.store.Register(contextOrBackground(ctx), name, email, password, role); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	user := rt.store.User()
	rt.println("✓ Account created and logged in!")
	rt.printf("  User: %s (%s)\n", user.Name, user.Email)
	rt.printf("  Role: %s\n", user.Role)

	return nil
}

// promptRole shows an interactive role picker
func promptRole() (session.Role, error) {
	roles := session.Roles()

	prompt := promptui.Select{
		Label: "Select a role",
		Items: roles,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "{{ . | green }}",
		},
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}

	return roles[index], nil
}
