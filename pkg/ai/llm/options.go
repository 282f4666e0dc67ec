package llm

// Tool choice values understood by every provider.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
)

// ChatOptions contains options for generating chat completions
type ChatOptions struct {
	Model       string            // Model name/identifier
	Temperature float32           // Controls randomness (0.0 to 1.0)
	MaxTokens   int               // Maximum number of tokens to generate
	Tools       []Tool            // Available tools
	ToolChoice  string            // auto, none or required
	User        string            // Identifier representing end-user
	Headers     map[string]string // Custom headers to send with the request
}

// Option is a function type to modify ChatOptions
type Option func(*ChatOptions)

// WithModel sets the model to use
func WithModel(model string) Option {
	return func(o *ChatOptions) {
		o.Model = model
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temp float32) Option {
	return func(o *ChatOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate
func WithMaxTokens(tokens int) Option {
	return func(o *ChatOptions) {
		o.MaxTokens = tokens
	}
}

// WithTools sets the available tools
func WithTools(tools []Tool) Option {
	return func(o *ChatOptions) {
		o.Tools = tools
	}
}

// WithToolChoice controls whether the model must call a tool
func WithToolChoice(toolChoice string) Option {
	return func(o *ChatOptions) {
		o.ToolChoice = toolChoice
	}
}

// WithUser sets the user identifier
func WithUser(user string) Option {
	return func(o *ChatOptions) {
		o.User = user
	}
}

// WithHeader adds a custom header to the request
func WithHeader(key, value string) Option {
	return func(o *ChatOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// DefaultOptions returns the default options. Intent resolution wants
// stable answers, so temperature is low.
func DefaultOptions() *ChatOptions {
	return &ChatOptions{
		Temperature: 0.2,
		MaxTokens:   1024,
	}
}

// Apply builds options from defaults plus opts.
func Apply(opts ...Option) *ChatOptions {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
