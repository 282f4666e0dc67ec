package memoryinfra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/cachex/cachexmem"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/retryx"
)

func newClient(t *testing.T, h http.Handler, tenancy restx.TenancyResolver) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rest := restx.NewClient(restx.Config{
		BaseURL: srv.URL + "/api/v1",
		Timeout: 2 * time.Second,
		Retry:   retryx.Policy{MaxRetries: 2, Base: time.Millisecond},
		Tenancy: tenancy,
		Sleep:   func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
	})
	return NewHTTPClient(rest, WithBulkConcurrency(2))
}

func TestCreateMemory_SendsDefaultedBody(t *testing.T) {
	var body map[string]any
	var path, method string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"mem_1","title":"Dark mode","memory_type":"context","tags":[]}`))
	}), NewTokenTenancy("org-1", "user-1"))

	env := c.CreateMemory(context.Background(), memory.CreateMemoryRequest{Title: "Dark mode", Content: "I prefer dark mode"})
	if env.Error != nil {
		t.Fatalf("unexpected error: %v", env.Error)
	}
	if method != http.MethodPost || path != "/api/v1/memory" {
		t.Errorf("request = %s %s", method, path)
	}
	if body["memory_type"] != "context" {
		t.Errorf("memory_type = %v", body["memory_type"])
	}
	if tags, ok := body["tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("tags = %#v, want []", body["tags"])
	}
	if body["organization_id"] != "org-1" || body["user_id"] != "user-1" {
		t.Errorf("tenancy not injected: %v", body)
	}
}

func TestCreateMemory_InvalidNeverHitsNetwork(t *testing.T) {
	var calls int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}), nil)

	env := c.CreateMemory(context.Background(), memory.CreateMemoryRequest{Content: "no title"})
	if env.Error == nil || env.Error.Code != errx.CodeValidation {
		t.Fatalf("error = %v", env.Error)
	}
	if env.Data != nil {
		t.Error("data set on validation failure")
	}
	if calls != 0 {
		t.Errorf("server called %d times", calls)
	}
}

func TestSearchMemoriesOnce_SkipsRetries(t *testing.T) {
	var calls int32
	inner := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), nil)
	cache, err := cachexmem.New(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCachedClient(inner, cache, time.Minute)

	env := c.SearchMemoriesOnce(context.Background(), memory.SearchMemoryRequest{Query: "x"})
	if env.Error == nil || env.Meta.Retries != 0 {
		t.Fatalf("env = %+v", env)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}

	atomic.StoreInt32(&calls, 0)
	_ = c.SearchMemories(context.Background(), memory.SearchMemoryRequest{Query: "x"})
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("retried requests = %d, want 3", got)
	}
}

func TestSearchMemories_Defaults(t *testing.T) {
	var body map[string]any
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/memory/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_, _ = w.Write([]byte(`{"results":[{"id":"mem_1","title":"a","similarity_score":0.91}],"total_results":1}`))
	}), nil)

	env := c.SearchMemories(context.Background(), memory.SearchMemoryRequest{Query: "x"})
	if env.Error != nil {
		t.Fatalf("unexpected error: %v", env.Error)
	}
	if body["limit"] != float64(20) || body["threshold"] != 0.7 || body["status"] != "active" {
		t.Errorf("body = %v", body)
	}
	if len(env.Data.Results) != 1 || env.Data.Results[0].SimilarityScore != 0.91 {
		t.Errorf("results = %+v", env.Data.Results)
	}
}

func TestListMemories_Query(t *testing.T) {
	var query string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":[],"pagination":{"page":1,"limit":5,"total":0,"pages":0}}`))
	}), nil)

	limit := 5
	env := c.ListMemories(context.Background(), memory.ListMemoriesRequest{Limit: &limit, MemoryType: memory.TypeProject})
	if env.Error != nil {
		t.Fatalf("unexpected error: %v", env.Error)
	}
	for _, want := range []string{"limit=5", "memory_type=project", "page=1"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
}

func TestGetMemory_NotFound(t *testing.T) {
	var calls int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Memory not found"}`))
	}), nil)

	env := c.GetMemory(context.Background(), "mem_missing")
	if env.Error == nil || env.Error.Code != errx.CodeNotFound {
		t.Fatalf("error = %v", env.Error)
	}
	if calls != 1 {
		t.Errorf("404 retried: %d calls", calls)
	}
}

func TestBulkDelete_IsolatesFailures(t *testing.T) {
	var inFlight, peak int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		if strings.HasSuffix(r.URL.Path, "/bad") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}), nil)

	env := c.BulkDeleteMemories(context.Background(), []string{"a", "b", "bad", "c", "a", " "})
	if env.Error != nil {
		t.Fatalf("unexpected error: %v", env.Error)
	}
	res := env.Data
	if res.Succeeded != 3 || res.Failed != 1 {
		t.Errorf("succeeded=%d failed=%d", res.Succeeded, res.Failed)
	}
	if res.Errors["bad"] == nil || res.Errors["bad"].Code != errx.CodeForbidden {
		t.Errorf("errors = %v", res.Errors)
	}
	if atomic.LoadInt32(&peak) > 2 {
		t.Errorf("peak concurrency %d exceeds bound 2", peak)
	}

	empty := c.BulkDeleteMemories(context.Background(), nil)
	if empty.Error == nil || empty.Error.Code != errx.CodeValidation {
		t.Errorf("empty bulk delete: %v", empty.Error)
	}
}

func TestTokenTenancy(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":             "user-42",
		"organization_id": "org-7",
	}).SignedString([]byte("not-the-server-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got := NewTokenTenancy("", "").Resolve(token)
	if got.UserID != "user-42" || got.OrganizationID != "org-7" {
		t.Errorf("from token = %+v", got)
	}

	got = NewTokenTenancy("org-cfg", "").Resolve(token)
	if got.OrganizationID != "org-cfg" || got.UserID != "user-42" {
		t.Errorf("config should win: %+v", got)
	}

	got = NewTokenTenancy("", "").Resolve("not-a-jwt")
	if got != (restx.Tenancy{}) {
		t.Errorf("garbage token = %+v", got)
	}
}

// countingClient counts GetMemory calls and serves a fixed entry.
type countingClient struct {
	memory.Client
	mu   sync.Mutex
	gets int
}

func (c *countingClient) GetMemory(_ context.Context, id string) restx.Envelope[memory.MemoryEntry] {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return restx.Envelope[memory.MemoryEntry]{Data: &memory.MemoryEntry{ID: id, Title: "cached"}}
}

func (c *countingClient) DeleteMemory(_ context.Context, id string) restx.Envelope[memory.DeleteResult] {
	return restx.Envelope[memory.DeleteResult]{Data: &memory.DeleteResult{Success: true}}
}

func TestCachedClient_ReadThroughAndInvalidate(t *testing.T) {
	cache, err := cachexmem.New(1 << 20)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	defer cache.Close()

	inner := &countingClient{}
	c := NewCachedClient(inner, cache, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		env := c.GetMemory(ctx, "mem_1")
		if env.Data == nil || env.Data.Title != "cached" {
			t.Fatalf("get %d: %+v", i, env)
		}
	}
	if inner.gets != 1 {
		t.Errorf("inner gets = %d, want 1", inner.gets)
	}

	c.DeleteMemory(ctx, "mem_1")
	c.GetMemory(ctx, "mem_1")
	if inner.gets != 2 {
		t.Errorf("inner gets after delete = %d, want 2", inner.gets)
	}
}
