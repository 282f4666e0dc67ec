package config

import (
	"fmt"
	"strings"
)

type ReasoningConfig struct {
	Provider string // openai, anthropic or none

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	AnthropicKey   string
	AnthropicModel string

	RouterURL   string
	RouterKey   string
	RouterModel string
}

func loadReasoningConfig() ReasoningConfig {
	return ReasoningConfig{
		Provider:       strings.ToLower(getEnv("REASONING_PROVIDER", "openai")),
		OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		RouterURL:      getEnv("ROUTER_URL", ""),
		RouterKey:      getEnv("ROUTER_API_KEY", ""),
		RouterModel:    getEnv("ROUTER_MODEL", ""),
	}
}

// RouterEnabled reports whether an OpenAI-compatible gateway is configured.
func (r ReasoningConfig) RouterEnabled() bool {
	return r.RouterURL != ""
}

// ProviderEnabled reports whether the named provider has credentials.
func (r ReasoningConfig) ProviderEnabled() bool {
	switch r.Provider {
	case "openai":
		return r.OpenAIKey != ""
	case "anthropic":
		return r.AnthropicKey != ""
	}
	return false
}

func (r ReasoningConfig) validate() error {
	switch r.Provider {
	case "openai", "anthropic", "none":
		return nil
	}
	return fmt.Errorf("REASONING_PROVIDER must be openai, anthropic or none, got %q", r.Provider)
}
