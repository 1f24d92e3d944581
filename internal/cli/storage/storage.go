// Package storage persists small string values for the CLI session.
//
// It plays the role browser local storage plays for a web client: a flat
// key-value namespace with synchronous reads and writes. Values written to
// one key are independent of other keys; there is no transaction spanning
// two keys.
package storage

// Storage is a synchronous key-value store.
// Remove on a missing key is not an error.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
