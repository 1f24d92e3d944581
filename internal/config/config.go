package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTimeout applies when EVENTCTL_HTTP_TIMEOUT is unset
const DefaultTimeout = 30 * time.Second

// Storage backends
const (
	StorageKeyring = "keyring"
	StorageFile    = "file"
	StorageSQLite  = "sqlite"
)

// Config holds all runtime configuration for the CLI
type Config struct {
	// API Configuration
	API APIConfig

	// Session storage Configuration
	Storage StorageConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds API client configuration
type APIConfig struct {
	// BaseURL overrides the environment selected from eventctl.json when set
	BaseURL string
	Timeout time.Duration
}

// StorageConfig holds session persistence configuration
type StorageConfig struct {
	Backend  string // keyring, file, sqlite
	StateDir string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout := DefaultTimeout
	if raw := os.Getenv("EVENTCTL_HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid EVENTCTL_HTTP_TIMEOUT %q: %w", raw, err)
		}
		timeout = d
	}

	backend := strings.ToLower(os.Getenv("EVENTCTL_STORAGE"))
	switch backend {
	case "":
		backend = StorageKeyring
	case StorageKeyring, StorageFile, StorageSQLite:
	default:
		return nil, fmt.Errorf("invalid EVENTCTL_STORAGE %q, must be one of: keyring, file, sqlite", backend)
	}

	stateDir := os.Getenv("EVENTCTL_STATE_DIR")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".config", "eventctl")
	}

	// Logging configuration - a CLI stays quiet unless asked
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	return &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(os.Getenv("EVENTCTL_API_BASE_URL"), "/"),
			Timeout: timeout,
		},
		Storage: StorageConfig{
			Backend:  backend,
			StateDir: stateDir,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
