package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventmgmt/eventctl/internal/cli/commands"
	appconfig "github.com/eventmgmt/eventctl/internal/config"
	"github.com/eventmgmt/eventctl/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "eventctl",
	Short: "eventctl - command line client for the event management platform",
	Long: `eventctl talks to the event management API.

Log in once and the session is kept in your OS keyring (or the storage
backend selected with EVENTCTL_STORAGE) and attached to every request.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load()
		if err != nil {
			return err
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		logger.Logger.Debug().
			Str("command", cmd.CommandPath()).
			Str("storage", cfg.Storage.Backend).
			Msg("Starting command")
		return nil
	},
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("eventctl version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectEnvCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewCredentialsCmd())
	rootCmd.AddCommand(commands.NewEventsCmd())
	rootCmd.AddCommand(commands.NewRouteCmd())
	rootCmd.AddCommand(commands.NewRoutesCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
