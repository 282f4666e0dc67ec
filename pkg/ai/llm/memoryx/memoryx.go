package memoryx

import (
	"sync"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
)

const DefaultMaxTurns = 20

// Memory represents a conversation memory with system prompt management
type Memory interface {
	// Messages returns all messages including system prompt
	Messages() ([]llm.Message, error)

	// Add adds a new message to memory
	Add(message llm.Message) error

	// Clear resets the conversation but keeps the system prompt
	Clear() error
}

// Window is an in-process Memory. The system prompt is held apart from the
// turns so no trim or reset can drop it; only the newest maxTurns messages
// are kept.
type Window struct {
	mu       sync.Mutex
	system   llm.Message
	turns    []llm.Message
	maxTurns int
}

var _ Memory = (*Window)(nil)

func NewWindow(systemPrompt string, maxTurns int) *Window {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Window{system: llm.NewSystemMessage(systemPrompt), maxTurns: maxTurns}
}

func (w *Window) Messages() ([]llm.Message, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]llm.Message, 0, len(w.turns)+1)
	out = append(out, w.system)
	return append(out, w.turns...), nil
}

func (w *Window) Add(message llm.Message) error {
	if message.Role == llm.RoleSystem {
		return errx.Validation("system prompt is fixed", errx.FieldError{Field: "role", Message: "system messages cannot be appended"})
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = append(w.turns, message)
	if over := len(w.turns) - w.maxTurns; over > 0 {
		w.turns = w.turns[over:]
	}
	// A window must not open on a reply to something already trimmed.
	for len(w.turns) > 0 && w.turns[0].Role != llm.RoleUser {
		w.turns = w.turns[1:]
	}
	w.turns = append([]llm.Message(nil), w.turns...)
	return nil
}

func (w *Window) Clear() error {
	w.Reset()
	return nil
}

// Reset truncates the history to the system prompt.
func (w *Window) Reset() {
	w.mu.Lock()
	w.turns = nil
	w.mu.Unlock()
}

// Len counts messages including the system prompt.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.turns) + 1
}

func (w *Window) SystemPrompt() string {
	return w.system.Content
}
