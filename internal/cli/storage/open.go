package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/eventmgmt/eventctl/internal/config"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Open returns the storage backend selected in cfg, namespaced per environment
func Open(cfg config.StorageConfig, namespace string) (Storage, error) {
	if namespace == "" {
		namespace = "default"
	}

	switch cfg.Backend {
	case config.StorageKeyring, "":
		return NewKeyring(namespace), nil
	case config.StorageFile:
		name := unsafeNameChars.ReplaceAllString(namespace, "_") + ".json"
		return NewFile(filepath.Join(cfg.StateDir, "sessions", name)), nil
	case config.StorageSQLite:
		if err := os.MkdirAll(cfg.StateDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		return OpenSQLite(filepath.Join(cfg.StateDir, "sessions.sqlite"), namespace)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
