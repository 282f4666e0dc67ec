package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ptrx"
)

// Reply is what one turn shows the user: the answer first, then any related
// memories in their own block.
type Reply struct {
	Primary string   `json:"primary"`
	Related []string `json:"related,omitempty"`
	Action  string   `json:"action,omitempty"`
	Source  string   `json:"source,omitempty"`
	Failed  bool     `json:"failed,omitempty"`
}

func (r Reply) String() string {
	if len(r.Related) == 0 {
		return r.Primary
	}
	var b strings.Builder
	b.WriteString(r.Primary)
	b.WriteString("\n\nRelated:")
	for _, item := range r.Related {
		b.WriteString("\n  - ")
		b.WriteString(item)
	}
	return b.String()
}

// Rewriter produces text from a conversation with no tools attached.
type Rewriter interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Executor runs actions against the memory client. Every failure becomes a
// reply, never an error.
type Executor struct {
	client           memory.Client
	rewriter         Rewriter
	contextThreshold float64
}

var _ Visitor = (*Executor)(nil)

func NewExecutor(client memory.Client, rewriter Rewriter, contextThreshold float64) *Executor {
	return &Executor{client: client, rewriter: rewriter, contextThreshold: contextThreshold}
}

func (e *Executor) VisitCreate(ctx context.Context, a CreateAction) Reply {
	title := a.Title
	if title == "" {
		title = deriveTitle(a.Content)
	}
	env := e.client.CreateMemory(ctx, memory.CreateMemoryRequest{
		Title:      title,
		Content:    a.Content,
		MemoryType: a.MemoryType,
		Tags:       a.Tags,
	})
	if env.Error != nil {
		return failed("save that", env.Error)
	}
	m := env.Data
	return Reply{Primary: fmt.Sprintf("Saved %q as a %s memory. ID: %s", m.Title, m.MemoryType, m.ID)}
}

func (e *Executor) VisitUpdate(ctx context.Context, a UpdateAction) Reply {
	req := memory.UpdateMemoryRequest{
		Title:   ptrx.NonEmpty(a.Title),
		Content: ptrx.NonEmpty(a.Content),
		Tags:    a.Tags,
	}
	if a.MemoryType != "" {
		req.MemoryType = ptrx.Of(a.MemoryType)
	}
	env := e.client.UpdateMemory(ctx, a.ID, req)
	if env.Error != nil {
		return failed("update "+a.ID, env.Error)
	}
	return Reply{Primary: fmt.Sprintf("Updated %q. ID: %s", env.Data.Title, env.Data.ID)}
}

func (e *Executor) VisitSearch(ctx context.Context, a SearchAction) Reply {
	req := memory.SearchMemoryRequest{Query: a.Query}
	if a.Limit > 0 {
		req.Limit = ptrx.Int(a.Limit)
	}
	if a.MemoryType != "" {
		req.MemoryTypes = []memory.MemoryType{a.MemoryType}
	}
	env := e.client.SearchMemories(ctx, req)
	if env.Error != nil {
		return failed("search", env.Error)
	}
	if len(env.Data.Results) == 0 {
		return Reply{Primary: fmt.Sprintf("Nothing matched %q.", a.Query)}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d for %q:", len(env.Data.Results), a.Query)
	for i, r := range env.Data.Results {
		fmt.Fprintf(&b, "\n%d. %s (%.0f%%) [%s]\n   %s", i+1, r.Title, r.SimilarityScore*100, r.ID, snippet(r.Content, 120))
	}
	return Reply{Primary: b.String()}
}

func (e *Executor) VisitList(ctx context.Context, a ListAction) Reply {
	req := memory.ListMemoriesRequest{MemoryType: a.MemoryType}
	if a.Limit > 0 {
		req.Limit = ptrx.Int(a.Limit)
	}
	env := e.client.ListMemories(ctx, req)
	if env.Error != nil {
		return failed("list memories", env.Error)
	}
	list := env.Data
	if len(list.Data) == 0 {
		return Reply{Primary: "You have no memories yet. Try \"remember ...\"."}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d:", len(list.Data), list.Pagination.Total)
	for _, m := range list.Data {
		fmt.Fprintf(&b, "\n- %s [%s] %s", m.Title, m.MemoryType, m.ID)
	}
	return Reply{Primary: b.String()}
}

func (e *Executor) VisitGet(ctx context.Context, a GetAction) Reply {
	env := e.client.GetMemory(ctx, a.ID)
	if env.Error != nil {
		return failed("load "+a.ID, env.Error)
	}
	m := env.Data
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s, %s]\n", m.Title, m.MemoryType, m.Status)
	if len(m.Tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", strings.Join(m.Tags, ", "))
	}
	b.WriteString(m.Content)
	return Reply{Primary: b.String()}
}

func (e *Executor) VisitDelete(ctx context.Context, a DeleteAction) Reply {
	env := e.client.DeleteMemory(ctx, a.ID)
	if env.Error != nil {
		return failed("delete "+a.ID, env.Error)
	}
	return Reply{Primary: "Deleted " + a.ID + "."}
}

// VisitOptimizePrompt folds related memories into the prompt. With a
// rewriter the model does the rewrite; without one, or when it fails, a
// structured template is used.
func (e *Executor) VisitOptimizePrompt(ctx context.Context, a OptimizePromptAction) Reply {
	var related []memory.SearchResult
	env := e.client.SearchMemories(ctx, memory.SearchMemoryRequest{
		Query:     a.Prompt,
		Limit:     ptrx.Int(5),
		Threshold: ptrx.Float64(e.contextThreshold),
	})
	if env.Error == nil {
		related = env.Data.Results
	}

	if e.rewriter != nil {
		text, err := e.rewriter.Complete(ctx, []llm.Message{
			llm.NewSystemMessage(rewriteInstructions),
			llm.NewUserMessage(promptTemplate(a.Prompt, related)),
		})
		if err == nil {
			return Reply{Primary: text, Related: relatedLines(related)}
		}
	}
	return Reply{Primary: promptTemplate(a.Prompt, related), Related: relatedLines(related)}
}

const rewriteInstructions = "Rewrite the user's prompt so it is specific, self-contained and uses the supplied context where it helps. Reply with the rewritten prompt only."

func promptTemplate(prompt string, related []memory.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", prompt)
	if len(related) > 0 {
		b.WriteString("\nContext from your memories:\n")
		for _, r := range related {
			fmt.Fprintf(&b, "- %s: %s\n", r.Title, snippet(r.Content, 200))
		}
	}
	b.WriteString("\nRequirements:\n- State the expected output format.\n- Use the context above where it applies.\n- Ask for clarification instead of guessing.")
	return b.String()
}

func relatedLines(results []memory.SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, fmt.Sprintf("%s [%s]", r.Title, r.ID))
	}
	return out
}

func failed(what string, e *errx.Error) Reply {
	return Reply{Primary: fmt.Sprintf("Couldn't %s: %s", what, e.UserMessage()), Failed: true}
}

// deriveTitle takes the first sentence or line of content, capped at 80
// characters.
func deriveTitle(content string) string {
	title := strings.TrimSpace(content)
	if i := strings.IndexAny(title, "\n.!?"); i > 0 {
		title = title[:i]
	}
	return snippet(title, 80)
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
