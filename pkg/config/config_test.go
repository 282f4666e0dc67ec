package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/retryx"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LANONASIS_CONFIG", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://api.lanonasis.com" || cfg.API.Timeout != 30*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.API.MaxRetries != 3 || cfg.API.Backoff != retryx.Exponential {
		t.Errorf("retry = %+v", cfg.API.Retry())
	}
	if !cfg.Session.NLMode || cfg.Session.HistoryLimit != 20 || cfg.Session.ContextThreshold != 0.5 {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Cache.Mode != "memory" || cfg.Storage.Mode != "local" || cfg.Bridge.Port != 7777 {
		t.Errorf("cache/storage/bridge = %+v %+v %+v", cfg.Cache, cfg.Storage, cfg.Bridge)
	}
	if !cfg.IsDevelopment() || cfg.File != "" {
		t.Errorf("env = %s file = %q", cfg.Environment, cfg.File)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("LANONASIS_API_URL", "http://localhost:4000/api/v1")
	t.Setenv("LANONASIS_MAX_RETRIES", "0")
	t.Setenv("LANONASIS_BACKOFF", "linear")
	t.Setenv("NL_MODE", "false")
	t.Setenv("CONTEXT_THRESHOLD", "0.8")
	t.Setenv("CONTEXT_TIMEOUT", "500ms")
	t.Setenv("BRIDGE_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.MaxRetries != 0 || cfg.API.Backoff != retryx.Linear {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Session.NLMode || cfg.Session.ContextThreshold != 0.8 || cfg.Session.ContextTimeout != 500*time.Millisecond {
		t.Errorf("session = %+v", cfg.Session)
	}
	if len(cfg.Bridge.CORSOrigins) != 2 || cfg.Bridge.CORSOrigins[1] != "http://b.test" {
		t.Errorf("cors = %v", cfg.Bridge.CORSOrigins)
	}
	if !cfg.IsProd() {
		t.Errorf("environment = %s", cfg.Environment)
	}
}

func TestLoad_YAMLFileWithEnvPrecedence(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
lanonasis_api_url: https://memory.example.com
LANONASIS_TOKEN: file-token
HISTORY_LIMIT: 8
CACHE_MODE: none
BRIDGE_CORS_ORIGINS:
  - http://one.test
  - http://two.test
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LANONASIS_CONFIG", path)
	t.Setenv("HISTORY_LIMIT", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.File != path {
		t.Errorf("file = %q", cfg.File)
	}
	if cfg.API.BaseURL != "https://memory.example.com" || cfg.API.Token != "file-token" {
		t.Errorf("api = %+v", cfg.API)
	}
	if !cfg.API.HasCredentials() {
		t.Error("expected credentials from file")
	}
	if cfg.Session.HistoryLimit != 12 {
		t.Errorf("env should win, history = %d", cfg.Session.HistoryLimit)
	}
	if cfg.Cache.Mode != "none" || strings.Join(cfg.Bridge.CORSOrigins, ",") != "http://one.test,http://two.test" {
		t.Errorf("cache = %q cors = %v", cfg.Cache.Mode, cfg.Bridge.CORSOrigins)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	t.Setenv("LANONASIS_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"relative url", map[string]string{"LANONASIS_API_URL": "api.lanonasis.com"}, "LANONASIS_API_URL"},
		{"too many retries", map[string]string{"LANONASIS_MAX_RETRIES": "11"}, "LANONASIS_MAX_RETRIES"},
		{"bad provider", map[string]string{"REASONING_PROVIDER": "gemini"}, "REASONING_PROVIDER"},
		{"redis without url", map[string]string{"CACHE_MODE": "redis"}, "REDIS_URL"},
		{"s3 without bucket", map[string]string{"STORAGE_MODE": "s3"}, "AWS_BUCKET"},
		{"bad port", map[string]string{"BRIDGE_PORT": "70000"}, "BRIDGE_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestReasoningConfig_ProviderEnabled(t *testing.T) {
	r := ReasoningConfig{Provider: "anthropic", AnthropicKey: "k"}
	if !r.ProviderEnabled() || r.RouterEnabled() {
		t.Errorf("r = %+v", r)
	}
	if (ReasoningConfig{Provider: "openai"}).ProviderEnabled() {
		t.Error("openai without key should be disabled")
	}
}
