package memoryinfra

import (
	"context"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/cachex"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
)

// CachedClient decorates a memory.Client with a read-through cache for
// GetMemory. Writes that touch a memory invalidate its entry. Cache
// failures are logged and never surface to callers.
type CachedClient struct {
	memory.Client
	cache cachex.Cache
	ttl   time.Duration
}

var (
	_ memory.Client                = (*CachedClient)(nil)
	_ memory.SingleAttemptSearcher = (*CachedClient)(nil)
)

func NewCachedClient(inner memory.Client, cache cachex.Cache, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedClient{Client: inner, cache: cache, ttl: ttl}
}

func memoryKey(id string) string {
	return "memory:" + id
}

func (c *CachedClient) GetMemory(ctx context.Context, id string) restx.Envelope[memory.MemoryEntry] {
	var cached memory.MemoryEntry
	hit, err := cachex.GetJSON(ctx, c.cache, memoryKey(id), &cached)
	if err != nil {
		logx.Warnf("memory cache read failed for %s: %v", id, err)
	}
	if hit {
		return restx.Envelope[memory.MemoryEntry]{Data: &cached, Meta: restx.Meta{RequestID: restx.NewRequestID()}}
	}

	env := c.Client.GetMemory(ctx, id)
	if env.Data != nil {
		c.store(ctx, env.Data)
	}
	return env
}

// SearchMemoriesOnce forwards to the inner client, falling back to a normal
// search when it cannot skip retries.
func (c *CachedClient) SearchMemoriesOnce(ctx context.Context, req memory.SearchMemoryRequest) restx.Envelope[memory.SearchResponse] {
	if s, ok := c.Client.(memory.SingleAttemptSearcher); ok {
		return s.SearchMemoriesOnce(ctx, req)
	}
	return c.Client.SearchMemories(ctx, req)
}

func (c *CachedClient) CreateMemory(ctx context.Context, req memory.CreateMemoryRequest) restx.Envelope[memory.MemoryEntry] {
	env := c.Client.CreateMemory(ctx, req)
	if env.Data != nil {
		c.store(ctx, env.Data)
	}
	return env
}

func (c *CachedClient) UpdateMemory(ctx context.Context, id string, req memory.UpdateMemoryRequest) restx.Envelope[memory.MemoryEntry] {
	c.invalidate(ctx, id)
	env := c.Client.UpdateMemory(ctx, id, req)
	if env.Data != nil {
		c.store(ctx, env.Data)
	}
	return env
}

func (c *CachedClient) DeleteMemory(ctx context.Context, id string) restx.Envelope[memory.DeleteResult] {
	c.invalidate(ctx, id)
	return c.Client.DeleteMemory(ctx, id)
}

func (c *CachedClient) BulkDeleteMemories(ctx context.Context, ids []string) restx.Envelope[memory.BulkDeleteResult] {
	c.invalidate(ctx, ids...)
	return c.Client.BulkDeleteMemories(ctx, ids)
}

func (c *CachedClient) store(ctx context.Context, m *memory.MemoryEntry) {
	if m.ID == "" {
		return
	}
	if err := cachex.SetJSON(ctx, c.cache, memoryKey(m.ID), m, c.ttl); err != nil {
		logx.Warnf("memory cache write failed for %s: %v", m.ID, err)
	}
}

func (c *CachedClient) invalidate(ctx context.Context, ids ...string) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, memoryKey(id))
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		logx.Warnf("memory cache invalidation failed: %v", err)
	}
}
