package agentx

import (
	"context"
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm/toolx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
)

// Decision is the model's answer to one turn: either a tool call to run or
// free text to show.
type Decision struct {
	Call     *llm.ToolCall
	Text     string
	Provider string
	Usage    llm.Usage
}

// Resolver asks a model to pick one tool for the latest user message. It
// never runs the tool itself.
type Resolver struct {
	model   llm.LLM
	tools   *toolx.ToolxClient
	options []llm.Option
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithOptions adds LLM options to every call
func WithOptions(options ...llm.Option) ResolverOption {
	return func(r *Resolver) {
		r.options = append(r.options, options...)
	}
}

func New(model llm.LLM, tools *toolx.ToolxClient, opts ...ResolverOption) *Resolver {
	r := &Resolver{model: model, tools: tools}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Decide sends the conversation with the tool schemas attached. Calls to
// tools that were never offered are rejected.
func (r *Resolver) Decide(ctx context.Context, messages []llm.Message) (Decision, error) {
	options := append([]llm.Option{}, r.options...)
	if r.tools != nil {
		if list := r.tools.GetTools(); len(list) > 0 {
			options = append(options, llm.WithTools(list), llm.WithToolChoice(llm.ToolChoiceAuto))
		}
	}

	resp, err := r.model.Chat(ctx, messages, options...)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Provider: resp.Provider, Usage: resp.Usage, Text: strings.TrimSpace(resp.Message.Content)}
	if call, ok := resp.Message.FirstToolCall(); ok {
		if r.tools == nil || !r.tools.Has(call.Function.Name) {
			return Decision{}, errx.Newf(errx.CodeAPI, "model called unknown tool %q", call.Function.Name)
		}
		d.Call = &call
		return d, nil
	}
	if d.Text == "" {
		return Decision{}, errx.New(errx.CodeAPI, "model returned an empty answer")
	}
	return d, nil
}

// Complete asks for plain text with tools disabled.
func (r *Resolver) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	options := append([]llm.Option{}, r.options...)
	resp, err := r.model.Chat(ctx, messages, options...)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return "", errx.New(errx.CodeAPI, "model returned an empty answer")
	}
	return text, nil
}
