package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
)

type fakeLLM struct {
	name  string
	reply string
	err   error
	calls int
	last  *ChatOptions
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) Chat(_ context.Context, _ []Message, opts ...Option) (Response, error) {
	f.calls++
	f.last = Apply(opts...)
	if f.err != nil {
		return Response{}, f.err
	}
	return Response{Message: NewAssistantMessage(f.reply)}, nil
}

func TestRouter_FallsBack(t *testing.T) {
	primary := &fakeLLM{name: "router", err: errors.New("502 bad gateway")}
	named := &fakeLLM{name: "openai", reply: "hello"}
	r := NewRouter(primary, nil, named)

	if r.Len() != 2 || r.Name() != "router -> openai" {
		t.Fatalf("router = %d %q", r.Len(), r.Name())
	}
	resp, err := r.Chat(context.Background(), []Message{NewUserMessage("hi")}, WithModel("m"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Message.Content != "hello" || resp.Provider != "openai" {
		t.Errorf("resp = %+v", resp)
	}
	if primary.calls != 1 || named.calls != 1 || named.last.Model != "m" {
		t.Errorf("calls primary=%d named=%d", primary.calls, named.calls)
	}
}

func TestRouter_AllFail(t *testing.T) {
	r := NewRouter(&fakeLLM{name: "a", err: errors.New("x")}, &fakeLLM{name: "b", err: errors.New("y")})
	_, err := r.Chat(context.Background(), nil)
	if errx.CodeOf(err) != errx.CodeAPI {
		t.Fatalf("err = %v", err)
	}
}

func TestRouter_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	second := &fakeLLM{name: "b", reply: "late"}
	r := NewRouter(&fakeLLM{name: "a", err: context.Canceled}, second)
	if _, err := r.Chat(ctx, nil); err == nil {
		t.Fatal("expected error")
	}
	if second.calls != 0 {
		t.Error("second backend called after cancellation")
	}
}

func TestRouter_Empty(t *testing.T) {
	if _, err := NewRouter().Chat(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestApply_Defaults(t *testing.T) {
	o := Apply(WithTools([]Tool{{Type: "function"}}), WithHeader("X-A", "1"))
	if o.Temperature != 0.2 || o.MaxTokens != 1024 || len(o.Tools) != 1 || o.Headers["X-A"] != "1" {
		t.Errorf("options = %+v", o)
	}
}
