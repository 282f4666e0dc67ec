package memorymcp

import (
	"context"
	"strings"
	"testing"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
	"github.com/mark3labs/mcp-go/mcp"
)

type stubClient struct {
	memory.Client
	created  []memory.CreateMemoryRequest
	searched []memory.SearchMemoryRequest
	updated  []memory.UpdateMemoryRequest
	stored   map[string]memory.MemoryEntry
}

func newStub() *stubClient {
	return &stubClient{stored: map[string]memory.MemoryEntry{
		"mem_1": {ID: "mem_1", Title: "Dark mode", Content: "I prefer dark mode", MemoryType: memory.TypePersonal, Status: memory.StatusActive, Tags: []string{"ui"}},
	}}
}

func (s *stubClient) CreateMemory(_ context.Context, req memory.CreateMemoryRequest) restx.Envelope[memory.MemoryEntry] {
	req, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.MemoryEntry](err)
	}
	s.created = append(s.created, req)
	return restx.Envelope[memory.MemoryEntry]{Data: &memory.MemoryEntry{ID: "mem_new", Title: req.Title, MemoryType: req.MemoryType}}
}

func (s *stubClient) SearchMemories(_ context.Context, req memory.SearchMemoryRequest) restx.Envelope[memory.SearchResponse] {
	s.searched = append(s.searched, req)
	var results []memory.SearchResult
	for _, m := range s.stored {
		if strings.Contains(strings.ToLower(m.Content), strings.ToLower(req.Query)) {
			results = append(results, memory.SearchResult{MemoryEntry: m, SimilarityScore: 0.91})
		}
	}
	return restx.Envelope[memory.SearchResponse]{Data: &memory.SearchResponse{Results: results, TotalResults: len(results)}}
}

func (s *stubClient) GetMemory(_ context.Context, id string) restx.Envelope[memory.MemoryEntry] {
	m, ok := s.stored[id]
	if !ok {
		return restx.Failed[memory.MemoryEntry](errx.FromStatus(404, "memory not found"))
	}
	return restx.Envelope[memory.MemoryEntry]{Data: &m}
}

func (s *stubClient) UpdateMemory(_ context.Context, id string, req memory.UpdateMemoryRequest) restx.Envelope[memory.MemoryEntry] {
	req, err := req.Validated()
	if err != nil {
		return restx.Failed[memory.MemoryEntry](err)
	}
	s.updated = append(s.updated, req)
	m := s.stored[id]
	if req.Title != nil {
		m.Title = *req.Title
	}
	return restx.Envelope[memory.MemoryEntry]{Data: &m}
}

func (s *stubClient) DeleteMemory(_ context.Context, id string) restx.Envelope[memory.DeleteResult] {
	if _, ok := s.stored[id]; !ok {
		return restx.Failed[memory.DeleteResult](errx.FromStatus(404, "memory not found"))
	}
	delete(s.stored, id)
	return restx.Envelope[memory.DeleteResult]{Data: &memory.DeleteResult{Success: true}}
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if r == nil || len(r.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", r.Content[0])
	}
	return tc.Text
}

func TestDefinitions(t *testing.T) {
	tools := NewTools(newStub())
	tests := []struct {
		def      mcp.Tool
		name     string
		required []string
	}{
		{tools.CreateDefinition(), "memory_create", []string{"title", "content"}},
		{tools.SearchDefinition(), "memory_search", []string{"query"}},
		{tools.ListDefinition(), "memory_list", nil},
		{tools.GetDefinition(), "memory_get", []string{"id"}},
		{tools.UpdateDefinition(), "memory_update", []string{"id"}},
		{tools.DeleteDefinition(), "memory_delete", []string{"id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.def.Name != tt.name {
				t.Errorf("name = %s", tt.def.Name)
			}
			if len(tt.def.InputSchema.Required) != len(tt.required) {
				t.Fatalf("required = %v, want %v", tt.def.InputSchema.Required, tt.required)
			}
			for i, r := range tt.required {
				if tt.def.InputSchema.Required[i] != r {
					t.Errorf("required[%d] = %s, want %s", i, tt.def.InputSchema.Required[i], r)
				}
			}
		})
	}
	if _, ok := tools.SearchDefinition().InputSchema.Properties["threshold"]; !ok {
		t.Error("memory_search lacks threshold")
	}
}

func TestHandleCreate(t *testing.T) {
	stub := newStub()
	tools := NewTools(stub)

	res, err := tools.HandleCreate(context.Background(), makeReq(map[string]any{
		"title":   "  Deploy steps ",
		"content": "run make deploy",
		"tags":    "ops, Deploy,ops",
	}))
	if err != nil {
		t.Fatalf("HandleCreate: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if text := resultText(t, res); !strings.Contains(text, "mem_new") || !strings.Contains(text, "context") {
		t.Errorf("text = %q", text)
	}
	if len(stub.created) != 1 || stub.created[0].Title != "Deploy steps" {
		t.Fatalf("created = %+v", stub.created)
	}
}

func TestHandleCreate_ValidationIsToolError(t *testing.T) {
	tools := NewTools(newStub())
	res, err := tools.HandleCreate(context.Background(), makeReq(map[string]any{"title": "x"}))
	if err != nil {
		t.Fatalf("protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if text := resultText(t, res); !strings.Contains(text, "content") {
		t.Errorf("text = %q", text)
	}
}

func TestHandleSearch_PassesNumbers(t *testing.T) {
	stub := newStub()
	tools := NewTools(stub)
	res, _ := tools.HandleSearch(context.Background(), makeReq(map[string]any{
		"query":     "dark mode",
		"limit":     float64(5),
		"threshold": 0.5,
	}))
	text := resultText(t, res)
	if !strings.Contains(text, "Found 1") || !strings.Contains(text, "91% match") {
		t.Errorf("text = %q", text)
	}
	got := stub.searched[0]
	if got.Limit == nil || *got.Limit != 5 || got.Threshold == nil || *got.Threshold != 0.5 {
		t.Errorf("search = %+v", got)
	}
}

func TestHandleSearch_NoResults(t *testing.T) {
	tools := NewTools(newStub())
	res, _ := tools.HandleSearch(context.Background(), makeReq(map[string]any{"query": "kubernetes"}))
	if text := resultText(t, res); !strings.HasPrefix(text, "No memories found") {
		t.Errorf("text = %q", text)
	}
}

func TestHandleGetAndDelete(t *testing.T) {
	tools := NewTools(newStub())
	ctx := context.Background()

	res, _ := tools.HandleGet(ctx, makeReq(map[string]any{"id": "mem_1"}))
	if text := resultText(t, res); !strings.Contains(text, "I prefer dark mode") || !strings.Contains(text, "Tags: ui") {
		t.Errorf("get text = %q", text)
	}

	res, _ = tools.HandleDelete(ctx, makeReq(map[string]any{"id": "mem_1"}))
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(t, res))
	}

	res, _ = tools.HandleGet(ctx, makeReq(map[string]any{"id": "mem_1"}))
	if !res.IsError {
		t.Fatal("expected not found after delete")
	}
}

func TestHandleUpdate_EmptyRejected(t *testing.T) {
	stub := newStub()
	tools := NewTools(stub)

	res, _ := tools.HandleUpdate(context.Background(), makeReq(map[string]any{"id": "mem_1"}))
	if !res.IsError {
		t.Fatal("expected empty update to be rejected")
	}

	res, _ = tools.HandleUpdate(context.Background(), makeReq(map[string]any{"id": "mem_1", "title": "Theme"}))
	if res.IsError {
		t.Fatalf("update failed: %s", resultText(t, res))
	}
	if len(stub.updated) != 1 || *stub.updated[0].Title != "Theme" || stub.updated[0].Content != nil {
		t.Errorf("updated = %+v", stub.updated)
	}
}

func TestNewServer_RegistersTools(t *testing.T) {
	s := NewServer(newStub(), "test")
	if s == nil {
		t.Fatal("nil server")
	}
}
