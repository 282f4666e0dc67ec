package agentx

import (
	"context"
	"errors"
	"testing"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm/toolx"
)

type scriptedLLM struct {
	msg  llm.Message
	err  error
	opts *llm.ChatOptions
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Chat(_ context.Context, _ []llm.Message, opts ...llm.Option) (llm.Response, error) {
	s.opts = llm.Apply(opts...)
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Message: s.msg, Provider: "scripted"}, nil
}

var tools = toolx.FromToolx(toolx.Spec{ToolName: "list_memories"})

func TestDecide_ToolCall(t *testing.T) {
	model := &scriptedLLM{msg: llm.Message{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{
		{ID: "c1", Function: llm.FunctionCall{Name: "list_memories", Arguments: "{}"}},
	}}}
	r := New(model, tools, WithOptions(llm.WithModel("m")))

	d, err := r.Decide(context.Background(), []llm.Message{llm.NewUserMessage("show my memories")})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Call == nil || d.Call.ID != "c1" || d.Provider != "scripted" {
		t.Fatalf("decision = %+v", d)
	}
	if len(model.opts.Tools) != 1 || model.opts.ToolChoice != llm.ToolChoiceAuto || model.opts.Model != "m" {
		t.Errorf("options = %+v", model.opts)
	}
}

func TestDecide_Text(t *testing.T) {
	r := New(&scriptedLLM{msg: llm.NewAssistantMessage("  Which memory?  ")}, tools)
	d, err := r.Decide(context.Background(), nil)
	if err != nil || d.Call != nil || d.Text != "Which memory?" {
		t.Fatalf("decision = %+v, %v", d, err)
	}
}

func TestDecide_Errors(t *testing.T) {
	tests := []struct {
		name  string
		model *scriptedLLM
	}{
		{"backend error", &scriptedLLM{err: errors.New("boom")}},
		{"empty answer", &scriptedLLM{msg: llm.NewAssistantMessage("")}},
		{"unknown tool", &scriptedLLM{msg: llm.Message{ToolCalls: []llm.ToolCall{{Function: llm.FunctionCall{Name: "rm_rf"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.model, tools).Decide(context.Background(), nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestComplete_NoTools(t *testing.T) {
	model := &scriptedLLM{msg: llm.NewAssistantMessage("rewritten")}
	text, err := New(model, tools).Complete(context.Background(), nil)
	if err != nil || text != "rewritten" {
		t.Fatalf("Complete = %q, %v", text, err)
	}
	if len(model.opts.Tools) != 0 {
		t.Error("tools sent on Complete")
	}
}
