package memoryinfra

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
)

const defaultBulkConcurrency = 5

// HTTPClient implements memory.Client on top of the request pipeline.
// Every method validates first and only then touches the network.
type HTTPClient struct {
	rest            *restx.Client
	bulkConcurrency int
}

var (
	_ memory.Client                = (*HTTPClient)(nil)
	_ memory.SingleAttemptSearcher = (*HTTPClient)(nil)
)

type HTTPClientOption func(*HTTPClient)

// WithBulkConcurrency bounds the number of in-flight deletes in
// BulkDeleteMemories.
func WithBulkConcurrency(n int) HTTPClientOption {
	return func(c *HTTPClient) {
		if n > 0 {
			c.bulkConcurrency = n
		}
	}
}

func NewHTTPClient(rest *restx.Client, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{rest: rest, bulkConcurrency: defaultBulkConcurrency}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rest exposes the underlying pipeline client, mainly for credential changes.
func (c *HTTPClient) Rest() *restx.Client {
	return c.rest
}

func (c *HTTPClient) SetAuthToken(token string) { c.rest.SetAuthToken(token) }
func (c *HTTPClient) SetAPIKey(key string)      { c.rest.SetAPIKey(key) }
func (c *HTTPClient) ClearAuth()                { c.rest.ClearAuth() }

// ============================================================================
// Memories
// ============================================================================

func (c *HTTPClient) CreateMemory(ctx context.Context, req memory.CreateMemoryRequest) restx.Envelope[memory.MemoryEntry] {
	valid, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.MemoryEntry](err)
	}
	return restx.Do[memory.MemoryEntry](ctx, c.rest, "/memory", restx.RequestOptions{
		Method: http.MethodPost,
		Body:   valid,
	})
}

func (c *HTTPClient) GetMemory(ctx context.Context, id string) restx.Envelope[memory.MemoryEntry] {
	if err := requireID(id); err != nil {
		return restx.Failed[memory.MemoryEntry](err)
	}
	return restx.Do[memory.MemoryEntry](ctx, c.rest, "/memory/"+url.PathEscape(id), restx.RequestOptions{})
}

func (c *HTTPClient) UpdateMemory(ctx context.Context, id string, req memory.UpdateMemoryRequest) restx.Envelope[memory.MemoryEntry] {
	if err := requireID(id); err != nil {
		return restx.Failed[memory.MemoryEntry](err)
	}
	valid, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.MemoryEntry](err)
	}
	return restx.Do[memory.MemoryEntry](ctx, c.rest, "/memory/"+url.PathEscape(id), restx.RequestOptions{
		Method: http.MethodPut,
		Body:   valid,
	})
}

func (c *HTTPClient) DeleteMemory(ctx context.Context, id string) restx.Envelope[memory.DeleteResult] {
	if err := requireID(id); err != nil {
		return restx.Failed[memory.DeleteResult](err)
	}
	env := restx.Do[memory.DeleteResult](ctx, c.rest, "/memory/"+url.PathEscape(id), restx.RequestOptions{
		Method: http.MethodDelete,
	})
	if env.Data != nil {
		env.Data.Success = true
	}
	return env
}

func (c *HTTPClient) ListMemories(ctx context.Context, req memory.ListMemoriesRequest) restx.Envelope[memory.MemoryList] {
	valid, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.MemoryList](err)
	}
	return restx.Do[memory.MemoryList](ctx, c.rest, "/memory", restx.RequestOptions{
		Query: valid.Query(),
	})
}

func (c *HTTPClient) SearchMemories(ctx context.Context, req memory.SearchMemoryRequest) restx.Envelope[memory.SearchResponse] {
	return c.search(ctx, req, nil)
}

// SearchMemoriesOnce is SearchMemories with retries disabled.
func (c *HTTPClient) SearchMemoriesOnce(ctx context.Context, req memory.SearchMemoryRequest) restx.Envelope[memory.SearchResponse] {
	zero := 0
	return c.search(ctx, req, &zero)
}

func (c *HTTPClient) search(ctx context.Context, req memory.SearchMemoryRequest, maxRetries *int) restx.Envelope[memory.SearchResponse] {
	valid, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.SearchResponse](err)
	}
	return restx.Do[memory.SearchResponse](ctx, c.rest, "/memory/search", restx.RequestOptions{
		Method:     http.MethodPost,
		Body:       valid,
		MaxRetries: maxRetries,
	})
}

func (c *HTTPClient) EnhancedSearch(ctx context.Context, req memory.EnhancedSearchRequest) restx.Envelope[memory.SearchResponse] {
	valid, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.SearchResponse](err)
	}
	return restx.Do[memory.SearchResponse](ctx, c.rest, "/memory/search/enhanced", restx.RequestOptions{
		Method: http.MethodPost,
		Body:   valid,
	})
}

// BulkDeleteMemories deletes ids concurrently, bounded by the configured
// concurrency. Per-id failures are collected; the envelope itself only
// fails when the input is invalid.
func (c *HTTPClient) BulkDeleteMemories(ctx context.Context, ids []string) restx.Envelope[memory.BulkDeleteResult] {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return restx.Failed[memory.BulkDeleteResult](
			errx.Validation("no ids to delete", errx.FieldError{Field: "ids", Message: "must contain at least 1 items"}))
	}

	result := memory.BulkDeleteResult{Deleted: []string{}, Errors: map[string]*errx.Error{}}
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, c.bulkConcurrency)
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				result.Failed++
				result.Errors[id] = errx.From(ctx.Err())
				mu.Unlock()
				return
			}

			env := c.deleteIsolated(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if env.Error != nil {
				result.Failed++
				result.Errors[id] = env.Error
				return
			}
			result.Succeeded++
			result.Deleted = append(result.Deleted, id)
		}(id)
	}
	wg.Wait()

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return restx.Envelope[memory.BulkDeleteResult]{Data: &result, Meta: restx.Meta{RequestID: restx.NewRequestID()}}
}

func (c *HTTPClient) deleteIsolated(ctx context.Context, id string) (env restx.Envelope[memory.DeleteResult]) {
	defer func() {
		if r := recover(); r != nil {
			env = restx.Failed[memory.DeleteResult](errx.Newf(errx.CodeAPI, "delete %s failed: %v", id, r))
		}
	}()
	return c.DeleteMemory(ctx, id)
}

// ============================================================================
// Topics
// ============================================================================

func (c *HTTPClient) CreateTopic(ctx context.Context, req memory.CreateTopicRequest) restx.Envelope[memory.MemoryTopic] {
	valid, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.MemoryTopic](err)
	}
	return restx.Do[memory.MemoryTopic](ctx, c.rest, "/topics", restx.RequestOptions{
		Method: http.MethodPost,
		Body:   valid,
	})
}

func (c *HTTPClient) GetTopics(ctx context.Context) restx.Envelope[[]memory.MemoryTopic] {
	return restx.Do[[]memory.MemoryTopic](ctx, c.rest, "/topics", restx.RequestOptions{})
}

func (c *HTTPClient) GetTopic(ctx context.Context, id string) restx.Envelope[memory.MemoryTopic] {
	if err := requireID(id); err != nil {
		return restx.Failed[memory.MemoryTopic](err)
	}
	return restx.Do[memory.MemoryTopic](ctx, c.rest, "/topics/"+url.PathEscape(id), restx.RequestOptions{})
}

func (c *HTTPClient) UpdateTopic(ctx context.Context, id string, req memory.UpdateTopicRequest) restx.Envelope[memory.MemoryTopic] {
	if err := requireID(id); err != nil {
		return restx.Failed[memory.MemoryTopic](err)
	}
	valid, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.MemoryTopic](err)
	}
	return restx.Do[memory.MemoryTopic](ctx, c.rest, "/topics/"+url.PathEscape(id), restx.RequestOptions{
		Method: http.MethodPut,
		Body:   valid,
	})
}

func (c *HTTPClient) DeleteTopic(ctx context.Context, id string) restx.Envelope[memory.DeleteResult] {
	if err := requireID(id); err != nil {
		return restx.Failed[memory.DeleteResult](err)
	}
	return restx.Do[memory.DeleteResult](ctx, c.rest, "/topics/"+url.PathEscape(id), restx.RequestOptions{
		Method: http.MethodDelete,
	})
}

// ============================================================================
// Stats, analytics, health
// ============================================================================

func (c *HTTPClient) GetMemoryStats(ctx context.Context) restx.Envelope[memory.MemoryStats] {
	return restx.Do[memory.MemoryStats](ctx, c.rest, "/memory/stats", restx.RequestOptions{})
}

func (c *HTTPClient) GetUsageAnalytics(ctx context.Context, req memory.AnalyticsRangeRequest) restx.Envelope[memory.UsageAnalytics] {
	valid, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.UsageAnalytics](err)
	}
	return restx.Do[memory.UsageAnalytics](ctx, c.rest, "/analytics/usage", restx.RequestOptions{
		Query: valid.Query(),
	})
}

func (c *HTTPClient) HealthCheck(ctx context.Context) restx.Envelope[memory.HealthStatus] {
	zero := 0
	return restx.Do[memory.HealthStatus](ctx, c.rest, "/health", restx.RequestOptions{MaxRetries: &zero})
}

// ============================================================================
// Helpers
// ============================================================================

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errx.Validation("id is required", errx.FieldError{Field: "id", Message: "is required"})
	}
	return nil
}

func dedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
