package storage

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "eventctl-cli"
)

// Keyring stores values in the OS keychain/credential manager.
// Keys are namespaced per environment so logging into staging does not
// clobber a production session.
type Keyring struct {
	namespace string
}

// NewKeyring creates a keyring storage for the given environment namespace
func NewKeyring(namespace string) *Keyring {
	return &Keyring{namespace: namespace}
}

// keyringKey returns a unique key per environment
func (k *Keyring) keyringKey(key string) string {
	return fmt.Sprintf("%s-%s", k.namespace, key)
}

func (k *Keyring) Get(key string) (string, bool, error) {
	value, err := keyring.Get(keyringService, k.keyringKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s from keyring: %w", key, err)
	}
	return value, true, nil
}

func (k *Keyring) Set(key, value string) error {
	if err := keyring.Set(keyringService, k.keyringKey(key), value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", key, err)
	}
	return nil
}

func (k *Keyring) Remove(key string) error {
	if err := keyring.Delete(keyringService, k.keyringKey(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
