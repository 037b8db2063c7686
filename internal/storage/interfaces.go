package storage

import (
	"context"
)

// Store is a key-value cache whose entries expire after a TTL fixed at construction.
// Implementations must be safe for concurrent use; a racing Set is last-writer-wins.
type Store[V any] interface {
	// Get returns the live value for key, or false when absent or expired
	Get(ctx context.Context, key string) (V, bool)

	// Set stores value under key with the store's TTL
	Set(ctx context.Context, key string, value V)

	// Has reports whether a live entry exists for key
	Has(ctx context.Context, key string) bool
}
