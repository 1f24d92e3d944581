package commands

import (
	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(WithEnvName(envName))
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name from eventctl.json")

	return cmd
}

func runLogout(opts ...Option) error {
	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	wasLoggedIn := rt.store.IsAuthenticated()

	if err := rt.store.Logout(); err != nil {
		return err
	}

	if wasLoggedIn {
		rt.printf("✓ Logged out of %s\n", rt.env.Name)
	} else {
		rt.printf("Not logged in to %s\n", rt.env.Name)
	}
	return nil
}
