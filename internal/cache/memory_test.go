package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_SetGetHas(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string](10, time.Minute)

	_, ok := s.Get(ctx, "missing")
	assert.False(t, ok)
	assert.False(t, s.Has(ctx, "missing"))

	s.Set(ctx, "k", "v")
	v, ok := s.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.True(t, s.Has(ctx, "k"))

	s.Set(ctx, "k", "v2")
	v, _ = s.Get(ctx, "k")
	assert.Equal(t, "v2", v)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int](10, 30*time.Millisecond)

	s.Set(ctx, "k", 1)
	assert.True(t, s.Has(ctx, "k"))

	time.Sleep(80 * time.Millisecond)

	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, s.Has(ctx, "k"))
}

func TestMemoryStore_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int](2, time.Minute)

	s.Set(ctx, "a", 1)
	s.Set(ctx, "b", 2)
	_, _ = s.Get(ctx, "a") // a is now most recent
	s.Set(ctx, "c", 3)

	assert.True(t, s.Has(ctx, "a"))
	assert.False(t, s.Has(ctx, "b"))
	assert.True(t, s.Has(ctx, "c"))
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int](1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("k.%d.%d", id, j)
				s.Set(ctx, key, j)
				v, ok := s.Get(ctx, key)
				assert.True(t, ok)
				assert.Equal(t, j, v)
			}
		}(i)
	}
	wg.Wait()
	assert.True(t, s.Has(ctx, "k.0.0"))
	assert.True(t, s.Has(ctx, "k.9.49"))
}
