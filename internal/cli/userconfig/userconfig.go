// Package userconfig keeps per-user CLI state that does not belong in the
// project's eventctl.json, currently the selected environment.
package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EVENTCTL_STATE_DIR overrides the default ~/.config/eventctl
const stateDirEnv = "EVENTCTL_STATE_DIR"

// UserConfig is the content of <state dir>/config.json
type UserConfig struct {
	SelectedEnvironment string `json:"selected_environment"`
}

// GetConfigPath returns where the user config lives
func GetConfigPath() (string, error) {
	dir := os.Getenv(stateDirEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, ".config", "eventctl")
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the user config. A missing file is an empty config.
func Load() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &UserConfig{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save replaces the user config file. The write goes to a temp file first so
// a crash never leaves half a file behind.
func Save(cfg *UserConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace user config file: %w", err)
	}
	return nil
}

// SetSelectedEnvironment records name as the active environment; "" clears it
func SetSelectedEnvironment(name string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.SelectedEnvironment = name
	return Save(cfg)
}

// GetSelectedEnvironment returns the active environment name, or ""
func GetSelectedEnvironment() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.SelectedEnvironment, nil
}
