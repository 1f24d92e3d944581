// Package config reads and writes eventctl.json, the per-project list of API
// environments. It is looked up from the working directory upwards.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const ConfigFileName = "eventctl.json"

// ErrNotFound means no eventctl.json exists at or above the working directory
var ErrNotFound = errors.New(ConfigFileName + " not found")

// Environment is an API deployment the CLI can talk to
type Environment struct {
	Name    string `json:"name"`
	BaseURL string `json:"baseUrl"`
}

// Validate checks the environment has a usable base address
func (e *Environment) Validate() error {
	if e.BaseURL == "" {
		return fmt.Errorf("environment '%s' has an empty baseUrl. Please edit %s and add the API address", e.Name, ConfigFileName)
	}
	u, err := url.Parse(e.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("environment '%s' has an invalid baseUrl '%s'", e.Name, e.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("environment '%s' baseUrl must use http or https", e.Name)
	}
	return nil
}

// Config is the content of eventctl.json
type Config struct {
	Environments []Environment `json:"environments"`
}

// DefaultConfig points at an API running locally
func DefaultConfig() *Config {
	return &Config{Environments: []Environment{{Name: "local", BaseURL: "http://localhost:8080/api"}}}
}

// FindConfigFile returns the nearest eventctl.json at or above the working directory
func FindConfigFile() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	for dir := start; ; {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, start)
		}
		dir = parent
	}
}

// Load parses path. Base URLs lose their trailing slash and environment
// names must be unique.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(cfg.Environments))
	for i := range cfg.Environments {
		env := &cfg.Environments[i]
		env.BaseURL = strings.TrimRight(env.BaseURL, "/")
		if seen[env.Name] {
			return nil, fmt.Errorf("duplicate environment '%s' in %s", env.Name, path)
		}
		seen[env.Name] = true
	}

	return cfg, nil
}

// LoadFromCurrentDir finds and loads the nearest eventctl.json
func LoadFromCurrentDir() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes cfg to path as indented JSON
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetEnvironment returns the environment called name
func (c *Config) GetEnvironment(name string) (*Environment, error) {
	names := make([]string, 0, len(c.Environments))
	for i := range c.Environments {
		if c.Environments[i].Name == name {
			return &c.Environments[i], nil
		}
		names = append(names, c.Environments[i].Name)
	}
	return nil, fmt.Errorf("environment '%s' not found (available: %s)", name, strings.Join(names, ", "))
}

// GetDefaultEnvironment returns the first environment
func (c *Config) GetDefaultEnvironment() (*Environment, error) {
	if len(c.Environments) == 0 {
		return nil, fmt.Errorf("no environments configured in %s", ConfigFileName)
	}
	return &c.Environments[0], nil
}
