package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eventmgmt/eventctl/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [base-url]",
		Short: "Create or extend eventctl.json with an API environment",
		Long: `Create or extend eventctl.json with an API environment.

Without a base URL the local development API (http://localhost:8080/api) is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL := ""
			if len(args) > 0 {
				baseURL = args[0]
			}
			return runInit(cmd.OutOrStdout(), baseURL, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Environment name (default: local, then env-N)")

	return cmd
}

func runInit(out io.Writer, baseURL, name string) error {
	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		// Load existing config
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintf(out, "Found existing %s\n", config.ConfigFileName)
	} else {
		cfg = &config.Config{
			Environments: []config.Environment{},
		}
		isNewConfig = true
	}

	if baseURL == "" {
		baseURL = config.DefaultConfig().Environments[0].BaseURL
	}

	if name == "" {
		if len(cfg.Environments) == 0 {
			name = "local"
		} else {
			name = fmt.Sprintf("env-%d", len(cfg.Environments)+1)
		}
	}

	env := config.Environment{Name: name, BaseURL: baseURL}
	if err := env.Validate(); err != nil {
		return err
	}

	// Check if environment already exists
	for _, existing := range cfg.Environments {
		if existing.BaseURL == env.BaseURL {
			fmt.Fprintf(out, "Environment for %s already exists in %s (%s)\n", env.BaseURL, config.ConfigFileName, existing.Name)
			return nil
		}
		if existing.Name == env.Name {
			return fmt.Errorf("environment '%s' already exists in %s", env.Name, config.ConfigFileName)
		}
	}

	cfg.Environments = append(cfg.Environments, env)

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(out, "✓ Created ./%s with environment %s (%s)\n", config.ConfigFileName, env.Name, env.BaseURL)
	} else {
		fmt.Fprintf(out, "✓ Added environment %s (%s) to ./%s\n", env.Name, env.BaseURL, config.ConfigFileName)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Run 'eventctl register' to create an account, or")
	fmt.Fprintln(out, "  2. Run 'eventctl login' to authenticate")

	return nil
}
