package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password, envName string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the event management API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email, password, WithEnvName(envName))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set EVENTCTL_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set EVENTCTL_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&envName, "env", "", "Environment name from eventctl.json")

	return cmd
}

func runLogin(ctx context.Context, email, password string, opts ...Option) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("EVENTCTL_EMAIL")
	}
	if password == "" {
		password = os.Getenv("EVENTCTL_PASSWORD")
	}

	// Validate email
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or EVENTCTL_EMAIL env var)")
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Prompt for password if not provided via flag or env var
	if password == "" {
		password, err = readPassword()
		if err != nil {
			return err
		}
	}

	rt.printf("Logging in to %s (%s)...\n", rt.env.Name, rt.env.BaseURL)

	if err := rt.store.Login(contextOrBackground(ctx), email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	user := rt.store.User()
	rt.println("✓ Login successful!")
	rt.printf("  User: %s (%s)\n", user.Name, user.Email)
	if user.Role != "" {
		rt.printf("  Role: %s\n", user.Role)
	}

	return nil
}

// readPassword prompts on the terminal without echo
func readPassword() (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or EVENTCTL_PASSWORD env var)")
	}

	fmt.Print("Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
