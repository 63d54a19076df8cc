// Package tokenstore is the durable key/value storage the session layer mirrors
// credential tokens into, so a restart can pick a token back up.
package tokenstore

import "errors"

var ErrNotFound = errors.New("token not found")

// Store defines the storage operations for persisted tokens.
type Store interface {
	// Get returns the value for key, or ErrNotFound
	Get(key string) (string, error)

	// Set creates or replaces the value for key
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
