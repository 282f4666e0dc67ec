package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
)

// LLM represents a chat model that can answer with text or tool calls
type LLM interface {
	// Chat generates a response based on the conversation history
	Chat(ctx context.Context, messages []Message, opts ...Option) (Response, error)

	// Name identifies the backend in logs and status output
	Name() string
}

// Response contains the model's response and additional metadata
type Response struct {
	Message  Message
	Usage    Usage
	Provider string
}

// Router tries each backend in order and returns the first successful answer.
// A router backed by an OpenAI-compatible gateway is usually first, with one
// named provider behind it.
type Router struct {
	backends []LLM
}

// NewRouter skips nil backends.
func NewRouter(backends ...LLM) *Router {
	r := &Router{}
	for _, b := range backends {
		if b != nil {
			r.backends = append(r.backends, b)
		}
	}
	return r
}

// Len reports how many backends are configured.
func (r *Router) Len() int {
	return len(r.backends)
}

func (r *Router) Name() string {
	names := make([]string, 0, len(r.backends))
	for _, b := range r.backends {
		names = append(names, b.Name())
	}
	return strings.Join(names, " -> ")
}

// Chat falls through the backends. Caller cancellation stops the walk.
func (r *Router) Chat(ctx context.Context, messages []Message, opts ...Option) (Response, error) {
	if len(r.backends) == 0 {
		return Response{}, errx.New(errx.CodeAPI, "no reasoning backend configured")
	}

	var errs []error
	for _, b := range r.backends {
		resp, err := b.Chat(ctx, messages, opts...)
		if err == nil {
			if resp.Provider == "" {
				resp.Provider = b.Name()
			}
			return resp, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		logx.WithField("backend", b.Name()).Warnf("reasoning backend failed: %v", err)
	}
	return Response{}, errx.Wrap(errors.Join(errs...), "all reasoning backends failed", errx.CodeAPI)
}
