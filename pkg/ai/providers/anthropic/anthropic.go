package aianthropic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
)

const DefaultModel = "claude-sonnet-4-20250514"

// AnthropicProvider implements llm.LLM over the Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewAnthropicProvider(cfg Config, opts ...option.RequestOption) *AnthropicProvider {
	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	options = append(options, opts...)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client := anthropic.NewClient(options...)
	return &AnthropicProvider{client: &client, model: cfg.Model}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	options := llm.Apply(opts...)
	if options.Model == "" {
		options.Model = p.model
	}

	system, converted, err := convertMessages(messages)
	if err != nil {
		return llm.Response{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(options.Model),
		MaxTokens: int64(options.MaxTokens),
		Messages:  converted,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if options.Temperature != 0 {
		params.Temperature = anthropic.Float(float64(options.Temperature))
	}
	if len(options.Tools) > 0 && options.ToolChoice != llm.ToolChoiceNone {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice == llm.ToolChoiceRequired {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
		}
	}

	var reqOpts []option.RequestOption
	for k, v := range options.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}

	resp, err := p.client.Messages.New(ctx, params, reqOpts...)
	if err != nil {
		return llm.Response{}, err
	}
	return convertResponse(resp), nil
}

// convertMessages lifts system messages into the system prompt and maps
// tool traffic onto tool_use / tool_result blocks.
func convertMessages(messages []llm.Message) (string, []anthropic.MessageParam, error) {
	var system []string
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case llm.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input any = map[string]any{}
				if tc.Function.Arguments != "" {
					input = json.RawMessage(tc.Function.Arguments)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Function.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case llm.RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false)))
		default:
			return "", nil, errors.New("unsupported role: " + msg.Role)
		}
	}
	return strings.Join(system, "\n\n"), out, nil
}

func convertTools(tools []llm.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{Properties: t.Function.Parameters["properties"]}
		if req, ok := t.Function.Parameters["required"].([]string); ok {
			schema.Required = req
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Function.Name,
			Description: anthropic.String(t.Function.Description),
			InputSchema: schema,
		}})
	}
	return out
}

func convertResponse(resp *anthropic.Message) llm.Response {
	msg := llm.Message{Role: llm.RoleAssistant}
	var text []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text = append(text, block.Text)
		case "tool_use":
			args, _ := json.Marshal(block.Input)
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:       block.ID,
				Type:     "function",
				Function: llm.FunctionCall{Name: block.Name, Arguments: string(args)},
			})
		}
	}
	msg.Content = strings.Join(text, "\n")

	in, out := int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens)
	return llm.Response{
		Message:  msg,
		Usage:    llm.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
		Provider: "anthropic",
	}
}
