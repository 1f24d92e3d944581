package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File stores values as a flat JSON object on disk.
// Every Set/Remove rewrites the whole file; the file is small.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed storage at path. The file is created lazily.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path
func (f *File) Path() string {
	return f.path
}

func (f *File) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse storage file %s: %w", f.path, err)
	}

	return values, nil
}

func (f *File) save(values map[string]string) error {
	// Create state directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage file: %w", err)
	}

	// Tokens live here, keep it private to the user
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}

	return nil
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}
