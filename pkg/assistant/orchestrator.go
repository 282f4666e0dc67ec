package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm/agentx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm/memoryx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm/toolx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ptrx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
)

const DefaultSystemPrompt = `You are the LanOnasis memory assistant. You help the user store and retrieve personal knowledge.
Call exactly one tool when the user wants to create, update, search, list, show or delete a memory, or to optimize a prompt.
If a required value such as a memory id is missing, still call the tool and leave it empty.
Answer in plain text only for greetings and general questions. Keep answers short.`

type Options struct {
	SystemPrompt     string
	HistoryLimit     int
	ContextFetch     bool
	ContextThreshold float64
	ContextLimit     int
	// ContextTimeout bounds the best-effort lookup, which is never retried.
	ContextTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		SystemPrompt:     DefaultSystemPrompt,
		HistoryLimit:     memoryx.DefaultMaxTurns,
		ContextFetch:     true,
		ContextThreshold: 0.5,
		ContextLimit:     3,
		ContextTimeout:   2 * time.Second,
	}
}

// Orchestrator runs one conversational turn at a time. It is not safe for
// concurrent Process calls; callers serialize turns per session.
type Orchestrator struct {
	client   memory.Client
	resolver *agentx.Resolver
	backend  string
	tools    *toolx.ToolxClient
	history  *memoryx.Window
	executor *Executor
	opts     Options
}

// New builds an orchestrator. A nil model means rules only.
func New(client memory.Client, model llm.LLM, opts Options) *Orchestrator {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.ContextLimit <= 0 {
		opts.ContextLimit = 3
	}
	if opts.ContextTimeout <= 0 {
		opts.ContextTimeout = 2 * time.Second
	}
	o := &Orchestrator{
		client:  client,
		tools:   Tools(),
		history: memoryx.NewWindow(opts.SystemPrompt, opts.HistoryLimit),
		opts:    opts,
	}
	var rewriter Rewriter
	if model != nil {
		o.resolver = agentx.New(model, o.tools)
		o.backend = model.Name()
		rewriter = o.resolver
	}
	o.executor = NewExecutor(client, rewriter, opts.ContextThreshold)
	return o
}

// Mode describes how intents are resolved.
func (o *Orchestrator) Mode() string {
	if o.resolver == nil {
		return "rules"
	}
	return "reasoning (" + o.backend + ") with rule fallback"
}

// Reset drops the conversation, keeping the system prompt.
func (o *Orchestrator) Reset() {
	o.history.Reset()
}

// HistoryLen counts messages including the system prompt.
func (o *Orchestrator) HistoryLen() int {
	return o.history.Len()
}

// Process handles one line of user input. It never fails: every error,
// including a panic, comes back as a reply.
func (o *Orchestrator) Process(ctx context.Context, input string) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			logx.WithField("input", input).Errorf("assistant turn panicked: %v", r)
			reply = Reply{Primary: "Something went wrong handling that. Please try again.", Failed: true}
		}
	}()

	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{Primary: "Say something like \"remember ...\" or type \"help\"."}
	}

	rules := ResolveByRules(input)
	var related []memory.SearchResult
	if o.wantsContext(rules) {
		related = o.fetchContext(ctx, input)
	}
	res := rules
	if o.resolver != nil {
		res = o.resolve(ctx, input, related, rules)
	}

	switch {
	case res.Action == nil:
		reply = Reply{Primary: res.Text}
	case res.Action.Missing() != "":
		reply = Reply{Primary: clarify(res.Action), Action: res.Action.Kind()}
	default:
		reply = o.execute(ctx, res.Action)
		reply.Action = res.Action.Kind()
		if len(reply.Related) == 0 && showsRelated(res.Action) {
			reply.Related = relatedLines(related)
		}
	}
	reply.Source = res.Source

	_ = o.history.Add(llm.NewUserMessage(input))
	_ = o.history.Add(llm.NewAssistantMessage(reply.Primary))
	return reply
}

func (o *Orchestrator) resolve(ctx context.Context, input string, related []memory.SearchResult, rules Resolution) Resolution {
	res, err := o.resolveViaReasoningBackend(ctx, input, related)
	if err != nil {
		logx.WithFields(logx.Fields{"backend": o.backend}).Warnf("intent resolution fell back to rules: %v", err)
		return rules
	}
	return res
}

// wantsContext reports whether this turn can use retrieved memories. Rules
// alone only show them next to creates and updates. A model also sees them
// for free-form input, but greetings and help never need them.
func (o *Orchestrator) wantsContext(rules Resolution) bool {
	if !o.opts.ContextFetch {
		return false
	}
	if rules.Action == nil {
		return o.resolver != nil && rules.Text == unknownReply
	}
	return o.resolver != nil || showsRelated(rules.Action)
}

// resolveViaReasoningBackend asks the model. Retrieved memories travel as an
// extra system message for this call only and never enter the history.
func (o *Orchestrator) resolveViaReasoningBackend(ctx context.Context, input string, related []memory.SearchResult) (Resolution, error) {
	history, err := o.history.Messages()
	if err != nil {
		return Resolution{}, err
	}
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, history...)
	if len(related) > 0 {
		messages = append(messages, llm.NewSystemMessage(contextMessage(related)))
	}
	messages = append(messages, llm.NewUserMessage(input))

	d, err := o.resolver.Decide(ctx, messages)
	if err != nil {
		return Resolution{}, err
	}
	if d.Call == nil {
		return Resolution{Text: d.Text, Source: SourceReasoning}, nil
	}
	action, err := actionFromCall(o.tools, *d.Call)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Action: action, Source: SourceReasoning}, nil
}

func (o *Orchestrator) execute(ctx context.Context, a Action) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			logx.WithField("action", a.Kind()).Errorf("action panicked: %v", r)
			reply = Reply{Primary: fmt.Sprintf("Couldn't finish the %s request because of an internal error.", a.Kind()), Failed: true}
		}
	}()
	return a.Accept(ctx, o.executor)
}

// fetchContext is best effort: one attempt bounded by ContextTimeout.
// Failures are logged and ignored.
func (o *Orchestrator) fetchContext(ctx context.Context, input string) []memory.SearchResult {
	if len(input) < 3 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, o.opts.ContextTimeout)
	defer cancel()

	req := memory.SearchMemoryRequest{
		Query:     input,
		Limit:     ptrx.Int(o.opts.ContextLimit),
		Threshold: ptrx.Float64(o.opts.ContextThreshold),
	}
	var env restx.Envelope[memory.SearchResponse]
	if s, ok := o.client.(memory.SingleAttemptSearcher); ok {
		env = s.SearchMemoriesOnce(ctx, req)
	} else {
		env = o.client.SearchMemories(ctx, req)
	}
	if env.Error != nil {
		logx.Debugf("context fetch skipped: %v", env.Error)
		return nil
	}
	return env.Data.Results
}

func contextMessage(related []memory.SearchResult) string {
	var b strings.Builder
	b.WriteString("Possibly relevant memories (do not repeat unless asked):")
	for _, r := range related {
		fmt.Fprintf(&b, "\n- [%s] %s: %s", r.ID, r.Title, snippet(r.Content, 160))
	}
	return b.String()
}

// Search, list and get already show memories; repeating them as related
// would duplicate the answer.
func showsRelated(a Action) bool {
	switch a.(type) {
	case CreateAction, UpdateAction:
		return true
	}
	return false
}
