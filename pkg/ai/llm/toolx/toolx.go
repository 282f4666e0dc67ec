package toolx

import (
	"encoding/json"
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
)

type Toolx interface {
	GetTool() llm.Tool
	Name() string
}

// Param is one property of a tool's input schema.
type Param struct {
	Name        string
	Type        string // string, integer, number, boolean, array
	Description string
	Enum        []string
	Items       string // element type for arrays
	Required    bool
}

// Spec declares a tool without behaviour. Execution is left to the caller,
// which switches on the decoded call.
type Spec struct {
	ToolName    string
	Description string
	Params      []Param
}

func (s Spec) Name() string {
	return s.ToolName
}

func (s Spec) GetTool() llm.Tool {
	props := make(map[string]any, len(s.Params))
	required := []string{}
	for _, p := range s.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == "array" {
			items := p.Items
			if items == "" {
				items = "string"
			}
			prop["items"] = map[string]any{"type": items}
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return llm.Tool{
		Type: "function",
		Function: llm.Function{
			Name:        s.ToolName,
			Description: s.Description,
			Parameters: map[string]any{
				"type":       "object",
				"properties": props,
				"required":   required,
			},
		},
	}
}

type ToolxClient struct {
	order []string
	tools map[string]Toolx
}

// FromToolx keeps registration order so schemas are sent deterministically.
func FromToolx(tools ...Toolx) *ToolxClient {
	c := &ToolxClient{tools: make(map[string]Toolx, len(tools))}
	for _, tool := range tools {
		if _, dup := c.tools[tool.Name()]; !dup {
			c.order = append(c.order, tool.Name())
		}
		c.tools[tool.Name()] = tool
	}
	return c
}

func (t *ToolxClient) GetTools() []llm.Tool {
	tools := make([]llm.Tool, 0, len(t.order))
	for _, name := range t.order {
		tools = append(tools, t.tools[name].GetTool())
	}
	return tools
}

func (t *ToolxClient) Has(name string) bool {
	_, ok := t.tools[name]
	return ok
}

// Decode unmarshals a tool call's arguments into v. Unknown tools and
// malformed arguments come back as validation errors.
func (t *ToolxClient) Decode(tc llm.ToolCall, v any) error {
	if !t.Has(tc.Function.Name) {
		return errx.Validation("unknown tool", errx.FieldError{Field: "tool", Message: "no tool named " + tc.Function.Name})
	}
	args := strings.TrimSpace(tc.Function.Arguments)
	if args == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return errx.Wrap(err, "malformed tool arguments", errx.CodeValidation).WithDetail("tool", tc.Function.Name)
	}
	return nil
}
