package assistant

import (
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm/toolx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
)

const (
	toolCreate   = "create_memory"
	toolUpdate   = "update_memory"
	toolSearch   = "search_memories"
	toolList     = "list_memories"
	toolGet      = "get_memory"
	toolDelete   = "delete_memory"
	toolOptimize = "optimize_prompt"
)

var memoryTypeNames = func() []string {
	out := make([]string, 0, len(memory.MemoryTypes()))
	for _, t := range memory.MemoryTypes() {
		out = append(out, string(t))
	}
	return out
}()

// Tools is the schema offered to the reasoning backend.
func Tools() *toolx.ToolxClient {
	memType := toolx.Param{Name: "memory_type", Type: "string", Enum: memoryTypeNames, Description: "Kind of memory"}
	id := toolx.Param{Name: "id", Type: "string", Required: true, Description: "Memory id, mem_... or a UUID"}
	return toolx.FromToolx(
		toolx.Spec{ToolName: toolCreate, Description: "Store something the user wants remembered.", Params: []toolx.Param{
			{Name: "content", Type: "string", Required: true, Description: "What to remember, in the user's words"},
			{Name: "title", Type: "string", Description: "Short title; derived from content when omitted"},
			memType,
			{Name: "tags", Type: "array", Items: "string", Description: "Short lowercase tags"},
		}},
		toolx.Spec{ToolName: toolUpdate, Description: "Change an existing memory. Requires its id.", Params: []toolx.Param{
			id,
			{Name: "title", Type: "string"},
			{Name: "content", Type: "string"},
			memType,
			{Name: "tags", Type: "array", Items: "string"},
		}},
		toolx.Spec{ToolName: toolSearch, Description: "Semantic search over the user's memories.", Params: []toolx.Param{
			{Name: "query", Type: "string", Required: true},
			memType,
			{Name: "limit", Type: "integer", Description: "1-100"},
		}},
		toolx.Spec{ToolName: toolList, Description: "List recent memories.", Params: []toolx.Param{
			memType,
			{Name: "limit", Type: "integer", Description: "1-100"},
		}},
		toolx.Spec{ToolName: toolGet, Description: "Show one memory by id.", Params: []toolx.Param{id}},
		toolx.Spec{ToolName: toolDelete, Description: "Delete one memory by id.", Params: []toolx.Param{id}},
		toolx.Spec{ToolName: toolOptimize, Description: "Rewrite a prompt using the user's saved context.", Params: []toolx.Param{
			{Name: "prompt", Type: "string", Required: true},
		}},
	)
}

type toolArgs struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	MemoryType memory.MemoryType `json:"memory_type"`
	Tags       []string          `json:"tags"`
	Query      string            `json:"query"`
	Limit      int               `json:"limit"`
	Prompt     string            `json:"prompt"`
}

// actionFromCall decodes a model tool call. Absent required arguments are
// left empty so Missing reports them like it does for rule output.
func actionFromCall(tools *toolx.ToolxClient, call llm.ToolCall) (Action, error) {
	var args toolArgs
	if err := tools.Decode(call, &args); err != nil {
		return nil, err
	}
	trim := strings.TrimSpace
	switch call.Function.Name {
	case toolCreate:
		mt := args.MemoryType
		if mt == "" {
			mt = memory.DefaultMemoryType
		}
		return CreateAction{Title: trim(args.Title), Content: trim(args.Content), MemoryType: mt, Tags: args.Tags}, nil
	case toolUpdate:
		return UpdateAction{ID: trim(args.ID), Title: trim(args.Title), Content: trim(args.Content), MemoryType: args.MemoryType, Tags: args.Tags}, nil
	case toolSearch:
		return SearchAction{Query: trim(args.Query), MemoryType: args.MemoryType, Limit: args.Limit}, nil
	case toolList:
		return ListAction{MemoryType: args.MemoryType, Limit: args.Limit}, nil
	case toolGet:
		return GetAction{ID: trim(args.ID)}, nil
	case toolDelete:
		return DeleteAction{ID: trim(args.ID)}, nil
	default:
		return OptimizePromptAction{Prompt: trim(args.Prompt)}, nil
	}
}
