// Package memorymcp exposes the memory client as MCP tools so editor agents
// can read and write memories over stdio.
package memorymcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ptrx"
	"github.com/mark3labs/mcp-go/mcp"
)

var memoryTypeEnum = func() []string {
	out := make([]string, 0, len(memory.MemoryTypes()))
	for _, t := range memory.MemoryTypes() {
		out = append(out, string(t))
	}
	return out
}()

// Tools holds the handlers. All of them report failures as tool errors,
// never as protocol errors.
type Tools struct {
	client memory.Client
}

func NewTools(client memory.Client) *Tools {
	return &Tools{client: client}
}

// ─── memory_create ─────────────────────────────────────────────────────────

func (t *Tools) CreateDefinition() mcp.Tool {
	return mcp.NewTool("memory_create",
		mcp.WithDescription("Store a new memory in the LanOnasis memory service."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short, searchable title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full memory content")),
		mcp.WithString("memory_type", mcp.Enum(memoryTypeEnum...), mcp.Description("Memory type (default: context)")),
		mcp.WithString("tags", mcp.Description("Comma separated tags")),
		mcp.WithString("topic_id", mcp.Description("Topic to file the memory under")),
	)
}

func (t *Tools) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env := t.client.CreateMemory(ctx, memory.CreateMemoryRequest{
		Title:      req.GetString("title", ""),
		Content:    req.GetString("content", ""),
		MemoryType: memory.MemoryType(req.GetString("memory_type", "")),
		Tags:       splitTags(req.GetString("tags", "")),
		TopicID:    req.GetString("topic_id", ""),
	})
	if env.Error != nil {
		return failure(env.Error), nil
	}
	m := env.Data
	return mcp.NewToolResultText(fmt.Sprintf("Memory saved: %q (%s)\nID: %s", m.Title, m.MemoryType, m.ID)), nil
}

// ─── memory_search ─────────────────────────────────────────────────────────

func (t *Tools) SearchDefinition() mcp.Tool {
	return mcp.NewTool("memory_search",
		mcp.WithDescription("Semantic search over stored memories."),
		mcp.WithString("query", mcp.Required(), mcp.Description("What to look for")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, 1-100 (default: 20)")),
		mcp.WithNumber("threshold", mcp.Description("Minimum similarity, 0-1 (default: 0.7)")),
		mcp.WithString("memory_type", mcp.Enum(memoryTypeEnum...), mcp.Description("Restrict to one memory type")),
	)
}

func (t *Tools) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	search := memory.SearchMemoryRequest{
		Query:     req.GetString("query", ""),
		Limit:     intArg(req, "limit"),
		Threshold: floatArg(req, "threshold"),
	}
	if mt := req.GetString("memory_type", ""); mt != "" {
		search.MemoryTypes = []memory.MemoryType{memory.MemoryType(mt)}
	}
	env := t.client.SearchMemories(ctx, search)
	if env.Error != nil {
		return failure(env.Error), nil
	}
	if len(env.Data.Results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No memories found for %q.", search.Query)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d memories for %q:\n", len(env.Data.Results), search.Query)
	for i, r := range env.Data.Results {
		fmt.Fprintf(&b, "\n%d. %s [%s] (%.0f%% match)\n   ID: %s\n   %s\n",
			i+1, r.Title, r.MemoryType, r.SimilarityScore*100, r.ID, preview(r.Content, 200))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── memory_list ───────────────────────────────────────────────────────────

func (t *Tools) ListDefinition() mcp.Tool {
	return mcp.NewTool("memory_list",
		mcp.WithDescription("List memories, most recently updated first."),
		mcp.WithNumber("page", mcp.Description("Page number (default: 1)")),
		mcp.WithNumber("limit", mcp.Description("Page size, 1-100 (default: 20)")),
		mcp.WithString("memory_type", mcp.Enum(memoryTypeEnum...), mcp.Description("Restrict to one memory type")),
		mcp.WithString("tags", mcp.Description("Comma separated tags to filter by")),
	)
}

func (t *Tools) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env := t.client.ListMemories(ctx, memory.ListMemoriesRequest{
		Page:       intArg(req, "page"),
		Limit:      intArg(req, "limit"),
		MemoryType: memory.MemoryType(req.GetString("memory_type", "")),
		Tags:       splitTags(req.GetString("tags", "")),
	})
	if env.Error != nil {
		return failure(env.Error), nil
	}
	list := env.Data
	if len(list.Data) == 0 {
		return mcp.NewToolResultText("No memories yet."), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Page %d of %d (%d total):\n", list.Pagination.Page, max(list.Pagination.Pages, 1), list.Pagination.Total)
	for _, m := range list.Data {
		fmt.Fprintf(&b, "- %s [%s] %s\n", m.ID, m.MemoryType, m.Title)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── memory_get ────────────────────────────────────────────────────────────

func (t *Tools) GetDefinition() mcp.Tool {
	return mcp.NewTool("memory_get",
		mcp.WithDescription("Fetch one memory by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id")),
	)
}

func (t *Tools) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env := t.client.GetMemory(ctx, req.GetString("id", ""))
	if env.Error != nil {
		return failure(env.Error), nil
	}
	m := env.Data
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nID: %s\nType: %s\nStatus: %s\n", m.Title, m.ID, m.MemoryType, m.Status)
	if len(m.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(m.Tags, ", "))
	}
	fmt.Fprintf(&b, "\n%s\n", m.Content)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── memory_update ─────────────────────────────────────────────────────────

func (t *Tools) UpdateDefinition() mcp.Tool {
	return mcp.NewTool("memory_update",
		mcp.WithDescription("Change fields of an existing memory. Omitted fields are left alone."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New content")),
		mcp.WithString("memory_type", mcp.Enum(memoryTypeEnum...), mcp.Description("New memory type")),
		mcp.WithString("tags", mcp.Description("Comma separated tags, replaces existing tags")),
	)
}

func (t *Tools) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	upd := memory.UpdateMemoryRequest{
		Title:   ptrx.NonEmpty(req.GetString("title", "")),
		Content: ptrx.NonEmpty(req.GetString("content", "")),
	}
	if mt := req.GetString("memory_type", ""); mt != "" {
		upd.MemoryType = ptrx.Of(memory.MemoryType(mt))
	}
	if tags := req.GetString("tags", ""); tags != "" {
		upd.Tags = splitTags(tags)
	}
	env := t.client.UpdateMemory(ctx, req.GetString("id", ""), upd)
	if env.Error != nil {
		return failure(env.Error), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Memory updated: %q\nID: %s", env.Data.Title, env.Data.ID)), nil
}

// ─── memory_delete ─────────────────────────────────────────────────────────

func (t *Tools) DeleteDefinition() mcp.Tool {
	return mcp.NewTool("memory_delete",
		mcp.WithDescription("Delete a memory permanently."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id")),
	)
}

func (t *Tools) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	env := t.client.DeleteMemory(ctx, id)
	if env.Error != nil {
		return failure(env.Error), nil
	}
	return mcp.NewToolResultText("Memory deleted: " + id), nil
}

// ─── helpers ───────────────────────────────────────────────────────────────

func failure(e *errx.Error) *mcp.CallToolResult {
	return mcp.NewToolResultError(e.UserMessage())
}

func intArg(req mcp.CallToolRequest, key string) *int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return ptrx.Int(int(v))
}

func floatArg(req mcp.CallToolRequest, key string) *float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return ptrx.Float64(v)
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
