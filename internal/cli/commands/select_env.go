package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eventmgmt/eventctl/internal/cli/config"
	"github.com/eventmgmt/eventctl/internal/cli/envselect"
	"github.com/eventmgmt/eventctl/internal/cli/userconfig"
)

// NewSelectEnvCmd creates the select-env command
func NewSelectEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-env [name]",
		Short: "Select the API environment to use for commands",
		Long: `Select the API environment to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ eventctl select-env              # Interactive selection
  $ eventctl select-env staging      # Select by name`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return runSelectEnv(cmd.OutOrStdout(), name)
		},
	}

	return cmd
}

func runSelectEnv(out io.Writer, name string) error {
	// Load project config
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'eventctl init' to create a configuration file", err)
	}

	var env *config.Environment

	if name != "" {
		env, err = cfg.GetEnvironment(name)
		if err != nil {
			return err
		}
	} else {
		// Show interactive selection
		env, err = envselect.PromptEnvironmentSelection(cfg)
		if err != nil {
			return err
		}
	}

	// Save the selected environment
	if err := userconfig.SetSelectedEnvironment(env.Name); err != nil {
		return fmt.Errorf("failed to save selected environment: %w", err)
	}

	fmt.Fprintf(out, "Selected environment: %s (%s)\n", env.Name, env.BaseURL)
	return nil
}
