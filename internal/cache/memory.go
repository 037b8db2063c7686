package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/storage"
)

// MemoryStore is an in-process LRU cache with per-entry TTL.
type MemoryStore[V any] struct {
	lru *expirable.LRU[string, V]
}

var _ storage.Store[int] = (*MemoryStore[int])(nil)

// NewMemoryStore creates a store holding at most capacity entries for ttl each.
// When full, the least recently used entry is evicted.
func NewMemoryStore[V any](capacity int, ttl time.Duration) *MemoryStore[V] {
	return &MemoryStore[V]{
		lru: expirable.NewLRU[string, V](capacity, nil, ttl),
	}
}

func (m *MemoryStore[V]) Get(_ context.Context, key string) (V, bool) {
	return m.lru.Get(key)
}

func (m *MemoryStore[V]) Set(_ context.Context, key string, value V) {
	m.lru.Add(key, value)
}

func (m *MemoryStore[V]) Has(_ context.Context, key string) bool {
	// Contains ignores expiry; Peek does not.
	_, ok := m.lru.Peek(key)
	return ok
}
