package cachexmem

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/cachex"
)

// MemoryCache is an in-process cache backed by ristretto.
type MemoryCache struct {
	cache *ristretto.Cache
}

var _ cachex.Cache = (*MemoryCache)(nil)

// New creates a cache bounded to maxBytes of stored values.
func New(maxBytes int64) (*MemoryCache, error) {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &MemoryCache{cache: c}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

// Set stores value and waits for the write buffer to drain so a following
// Get observes it.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.cache.SetWithTTL(key, value, int64(len(value)), ttl)
	m.cache.Wait()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.cache.Del(k)
	}
	return nil
}

func (m *MemoryCache) Close() error {
	m.cache.Close()
	return nil
}
