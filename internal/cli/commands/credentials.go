package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCredentialsCmd creates the credentials command
func NewCredentialsCmd() *cobra.Command {
	var email, password, envName string
	var promptPassword bool

	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Change the email or password of the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if promptPassword && password == "" {
				var err error
				if password, err = readPassword(); err != nil {
					return err
				}
			}
			return runCredentials(cmd.Context(), email, password, WithEnvName(envName))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().BoolVar(&promptPassword, "prompt-password", false, "Prompt for the new password")
	cmd.Flags().StringVar(&envName, "env", "", "Environment name from eventctl.json")

	return cmd
}

func runCredentials(ctx context.Context, email, password string, opts ...Option) error {
	if email == "" && password == "" {
		return fmt.Errorf("nothing to update (use --email, --password or --prompt-password)")
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.store.UpdateCredentials(contextOrBackground(ctx), email, password); err != nil {
		return fmt.Errorf("credentials update failed: %w", err)
	}

	rt.println("✓ Credentials updated")
	rt.printf("  Email: %s\n", rt.store.User().Email)
	if password != "" {
		rt.println("  Password changed")
	}
	return nil
}
