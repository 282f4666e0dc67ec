// Package assistant turns free text into memory operations. Intent comes
// from a tool-calling model when one is configured and from a fixed rule
// set otherwise; either way the result is one Action, executed once.
package assistant

import (
	"context"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
)

// Action is a resolved intent. The set is closed: only this package can
// add kinds, and every kind has a Visitor method.
type Action interface {
	Kind() string
	// Missing names a required parameter that is absent, or "".
	Missing() string
	Accept(ctx context.Context, v Visitor) Reply
	sealed()
}

// Visitor has one method per action kind.
type Visitor interface {
	VisitCreate(ctx context.Context, a CreateAction) Reply
	VisitUpdate(ctx context.Context, a UpdateAction) Reply
	VisitSearch(ctx context.Context, a SearchAction) Reply
	VisitList(ctx context.Context, a ListAction) Reply
	VisitGet(ctx context.Context, a GetAction) Reply
	VisitDelete(ctx context.Context, a DeleteAction) Reply
	VisitOptimizePrompt(ctx context.Context, a OptimizePromptAction) Reply
}

const (
	KindCreate         = "create"
	KindUpdate         = "update"
	KindSearch         = "search"
	KindList           = "list"
	KindGet            = "get"
	KindDelete         = "delete"
	KindOptimizePrompt = "optimize_prompt"
)

type CreateAction struct {
	Title      string            `json:"title,omitempty"`
	Content    string            `json:"content"`
	MemoryType memory.MemoryType `json:"memory_type,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
}

func (CreateAction) Kind() string { return KindCreate }
func (CreateAction) sealed()      {}

func (a CreateAction) Missing() string {
	if a.Content == "" {
		return "content"
	}
	return ""
}

func (a CreateAction) Accept(ctx context.Context, v Visitor) Reply { return v.VisitCreate(ctx, a) }

type UpdateAction struct {
	ID         string            `json:"id"`
	Title      string            `json:"title,omitempty"`
	Content    string            `json:"content,omitempty"`
	MemoryType memory.MemoryType `json:"memory_type,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
}

func (UpdateAction) Kind() string { return KindUpdate }
func (UpdateAction) sealed()      {}

func (a UpdateAction) Missing() string {
	switch {
	case a.ID == "":
		return "id"
	case a.Title == "" && a.Content == "" && a.MemoryType == "" && len(a.Tags) == 0:
		return "content"
	}
	return ""
}

func (a UpdateAction) Accept(ctx context.Context, v Visitor) Reply { return v.VisitUpdate(ctx, a) }

type SearchAction struct {
	Query      string            `json:"query"`
	MemoryType memory.MemoryType `json:"memory_type,omitempty"`
	Limit      int               `json:"limit,omitempty"`
}

func (SearchAction) Kind() string { return KindSearch }
func (SearchAction) sealed()      {}

func (a SearchAction) Missing() string {
	if a.Query == "" {
		return "query"
	}
	return ""
}

func (a SearchAction) Accept(ctx context.Context, v Visitor) Reply { return v.VisitSearch(ctx, a) }

type ListAction struct {
	MemoryType memory.MemoryType `json:"memory_type,omitempty"`
	Limit      int               `json:"limit,omitempty"`
}

func (ListAction) Kind() string    { return KindList }
func (ListAction) Missing() string { return "" }
func (ListAction) sealed()         {}

func (a ListAction) Accept(ctx context.Context, v Visitor) Reply { return v.VisitList(ctx, a) }

type GetAction struct {
	ID string `json:"id"`
}

func (GetAction) Kind() string { return KindGet }
func (GetAction) sealed()      {}

func (a GetAction) Missing() string {
	if a.ID == "" {
		return "id"
	}
	return ""
}

func (a GetAction) Accept(ctx context.Context, v Visitor) Reply { return v.VisitGet(ctx, a) }

type DeleteAction struct {
	ID string `json:"id"`
}

func (DeleteAction) Kind() string { return KindDelete }
func (DeleteAction) sealed()      {}

func (a DeleteAction) Missing() string {
	if a.ID == "" {
		return "id"
	}
	return ""
}

func (a DeleteAction) Accept(ctx context.Context, v Visitor) Reply { return v.VisitDelete(ctx, a) }

type OptimizePromptAction struct {
	Prompt string `json:"prompt"`
}

func (OptimizePromptAction) Kind() string { return KindOptimizePrompt }
func (OptimizePromptAction) sealed()      {}

func (a OptimizePromptAction) Missing() string {
	if a.Prompt == "" {
		return "prompt"
	}
	return ""
}

func (a OptimizePromptAction) Accept(ctx context.Context, v Visitor) Reply {
	return v.VisitOptimizePrompt(ctx, a)
}

// clarify is the single question asked for a missing parameter, whichever
// resolver produced the action.
func clarify(a Action) string {
	switch a.Missing() {
	case "id":
		return "Which memory do you mean? Give me its id, for example mem_abc123 or a UUID."
	case "content":
		if a.Kind() == KindUpdate {
			return "What should I change in that memory? Tell me the new content or title."
		}
		return "What would you like me to remember?"
	case "query":
		return "What should I search for?"
	case "prompt":
		return "Which prompt should I optimize? Paste it after \"optimize prompt:\"."
	}
	return ""
}
