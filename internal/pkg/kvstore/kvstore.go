// Package kvstore defines the port (interface) for the durable string key-value
// store used for client-side persistence: the cart snapshot and the session token.
//
// The storefront depends on this abstraction, not on a concrete engine, so the
// backing store can be swapped between a local SQLite file (single-user desktop
// sessions), Redis (shared deployments), or in-memory (tests and ephemeral runs).
package kvstore

import "context"

// Store is a string-keyed, string-valued durable store.
type Store interface {
	// Get returns the value for key. The second return value reports whether
	// the key was present; a missing key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes the value for key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
