// Package credentials persists the client's bearer token. The token is the
// only durable state the SDK owns; clearing it fully de-authenticates the
// client.
package credentials

import "errors"

// Common errors for credential storage.
var (
	// ErrNoToken is returned by Load when no token is persisted.
	ErrNoToken = errors.New("no token stored")
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("credential store is closed")
)

// Store abstracts bearer-token persistence.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load retrieves the persisted token.
	// Returns ErrNoToken if none is stored.
	Load() (string, error)

	// Save persists the token, replacing any previous one.
	Save(token string) error

	// Clear removes the persisted token. Clearing an empty store is a no-op.
	Clear() error

	// Close releases any resources held by the store.
	Close() error
}
