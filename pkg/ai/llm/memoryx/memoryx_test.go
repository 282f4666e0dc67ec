package memoryx

import (
	"fmt"
	"testing"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
)

func TestWindow_PinsSystemPrompt(t *testing.T) {
	w := NewWindow("be helpful", 4)
	for i := 0; i < 5; i++ {
		_ = w.Add(llm.NewUserMessage(fmt.Sprintf("q%d", i)))
		_ = w.Add(llm.NewAssistantMessage(fmt.Sprintf("a%d", i)))
	}
	msgs, _ := w.Messages()
	if msgs[0].Role != llm.RoleSystem || msgs[0].Content != "be helpful" {
		t.Fatalf("first = %+v", msgs[0])
	}
	if len(msgs) != 5 {
		t.Fatalf("len = %d, want 5", len(msgs))
	}
	if msgs[1].Content != "q3" || msgs[4].Content != "a4" {
		t.Errorf("window = %+v", msgs)
	}
}

func TestWindow_TrimNeverOpensOnReply(t *testing.T) {
	w := NewWindow("sys", 3)
	_ = w.Add(llm.NewUserMessage("q0"))
	_ = w.Add(llm.NewAssistantMessage("a0"))
	_ = w.Add(llm.NewUserMessage("q1"))
	_ = w.Add(llm.NewAssistantMessage("a1"))
	msgs, _ := w.Messages()
	if msgs[1].Role != llm.RoleUser {
		t.Errorf("window opens with %s", msgs[1].Role)
	}
}

func TestWindow_ResetAndSystemRejected(t *testing.T) {
	w := NewWindow("sys", 0)
	_ = w.Add(llm.NewUserMessage("hi"))
	if err := w.Add(llm.NewSystemMessage("override")); err == nil {
		t.Error("system message accepted")
	}
	w.Reset()
	if w.Len() != 1 || w.SystemPrompt() != "sys" {
		t.Errorf("after reset len=%d prompt=%q", w.Len(), w.SystemPrompt())
	}
	_ = w.Add(llm.NewUserMessage("again"))
	if err := w.Clear(); err != nil || w.Len() != 1 {
		t.Errorf("Clear = %v len=%d", err, w.Len())
	}
}
