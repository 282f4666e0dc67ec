package assistant

import (
	"reflect"
	"testing"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
)

func TestResolveByRules(t *testing.T) {
	uuid := "3f2b8c1e-9d4a-4c7b-8e2f-1a2b3c4d5e6f"
	tests := []struct {
		input string
		want  Action
		text  string
	}{
		{input: "remember that I prefer dark mode", want: CreateAction{Content: "I prefer dark mode", MemoryType: memory.TypeContext}},
		{input: "Save: deploy with make ship as a workflow memory", want: CreateAction{Content: "deploy with make ship", MemoryType: memory.TypeWorkflow}},
		{input: "note down the wifi password is hunter2", want: CreateAction{Content: "the wifi password is hunter2", MemoryType: memory.TypeContext}},
		{input: "remember", want: CreateAction{MemoryType: memory.TypeContext}},
		{input: "optimize prompt: write a release note", want: OptimizePromptAction{Prompt: "write a release note"}},
		{input: "update mem_abc123 to use port 8080", want: UpdateAction{ID: "mem_abc123", Content: "use port 8080"}},
		{input: "update my theme memory", want: UpdateAction{}},
		{input: "delete " + uuid, want: DeleteAction{ID: uuid}},
		{input: "forget it", want: DeleteAction{}},
		{input: "show mem_abc123", want: GetAction{ID: "mem_abc123"}},
		{input: "what is in " + uuid + "?", want: GetAction{ID: uuid}},
		{input: "search for deployment notes", want: SearchAction{Query: "deployment notes"}},
		{input: "what do you know about kubernetes?", want: SearchAction{Query: "kubernetes"}},
		{input: "search", want: SearchAction{}},
		{input: "list my project memories", want: ListAction{MemoryType: memory.TypeProject}},
		{input: "show me all memories", want: ListAction{}},
		{input: "list", want: ListAction{}},
		{input: "List recent.", want: ListAction{}},
		{input: "show all", want: ListAction{}},
		{input: "list everything", want: ListAction{}},
		{input: "show", text: unknownReply},
		{input: "hello!", text: greetingReply},
		{input: "help", text: helpReply},
		{input: "the weather is nice", text: unknownReply},
		{input: "   ", text: unknownReply},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ResolveByRules(tt.input)
			if got.Source != SourceRules {
				t.Errorf("source = %s", got.Source)
			}
			if !reflect.DeepEqual(got.Action, tt.want) {
				t.Errorf("action = %#v, want %#v", got.Action, tt.want)
			}
			if got.Text != tt.text {
				t.Errorf("text = %q, want %q", got.Text, tt.text)
			}
		})
	}
}

func TestResolveByRules_IDRulesFirst(t *testing.T) {
	// "search" would match generically, but an id means get.
	got := ResolveByRules("find mem_42")
	if _, ok := got.Action.(GetAction); !ok {
		t.Fatalf("action = %#v, want GetAction", got.Action)
	}
}

func TestMissingAndClarify(t *testing.T) {
	tests := []struct {
		action  Action
		missing string
	}{
		{CreateAction{}, "content"},
		{CreateAction{Content: "x"}, ""},
		{UpdateAction{}, "id"},
		{UpdateAction{ID: "mem_1"}, "content"},
		{UpdateAction{ID: "mem_1", Title: "t"}, ""},
		{SearchAction{}, "query"},
		{ListAction{}, ""},
		{GetAction{}, "id"},
		{DeleteAction{}, "id"},
		{OptimizePromptAction{}, "prompt"},
	}
	for _, tt := range tests {
		if got := tt.action.Missing(); got != tt.missing {
			t.Errorf("%T.Missing() = %q, want %q", tt.action, got, tt.missing)
		}
		if (clarify(tt.action) == "") != (tt.missing == "") {
			t.Errorf("%T clarify = %q", tt.action, clarify(tt.action))
		}
	}
}

func TestParseLimit(t *testing.T) {
	if got := ResolveByRules("search for the top 5 go tips"); got.Action.(SearchAction).Limit != 5 {
		t.Errorf("limit = %+v", got.Action)
	}
}
