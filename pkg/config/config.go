package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API         APIConfig
	Reasoning   ReasoningConfig
	Session     SessionConfig
	Cache       CacheConfig
	Storage     StorageConfig
	Bridge      BridgeConfig
	LogLevel    string
	Environment Environment
	// File is the YAML file that was read, if any.
	File string
}

type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentStaging     Environment = "staging"
	EnvironmentProduction  Environment = "production"
)

func (c Config) IsDevelopment() bool {
	return c.Environment == EnvironmentDevelopment
}
func (c Config) IsProd() bool {
	return c.Environment == EnvironmentProduction
}

func loadEnvironment() Environment {
	env := getEnv("ENVIRONMENT", "development")
	switch strings.ToLower(env) {
	case "production":
		return EnvironmentProduction
	case "staging":
		return EnvironmentStaging
	default:
		return EnvironmentDevelopment
	}
}

// overlay holds values read from the YAML file. Environment variables win.
var overlay = map[string]string{}

// Load reads environment variables, falling back to the YAML file named by
// LANONASIS_CONFIG or ~/.lanonasis/config.yaml.
func Load() (*Config, error) {
	file, err := loadOverlay()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		API:         loadAPIConfig(),
		Reasoning:   loadReasoningConfig(),
		Session:     loadSessionConfig(),
		Cache:       loadCacheConfig(),
		Storage:     loadStorageConfig(),
		Bridge:      loadBridgeConfig(),
		LogLevel:    getEnv("LOG_LEVEL", "warn"),
		Environment: loadEnvironment(),
		File:        file,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.API.validate(); err != nil {
		return err
	}
	if err := c.Reasoning.validate(); err != nil {
		return err
	}
	if err := c.Cache.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	if c.Bridge.Port <= 0 || c.Bridge.Port > 65535 {
		return fmt.Errorf("BRIDGE_PORT must be between 1 and 65535")
	}
	return nil
}

func configPath() string {
	if p := os.Getenv("LANONASIS_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lanonasis", "config.yaml")
}

// loadOverlay reads a flat YAML map keyed by variable name, for example
// "LANONASIS_API_URL: https://..." or "lanonasis_api_url: ...". A missing
// default file is fine; a missing explicit file is not.
func loadOverlay() (string, error) {
	overlay = map[string]string{}
	path := configPath()
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && os.Getenv("LANONASIS_CONFIG") == "" {
			return "", nil
		}
		return "", fmt.Errorf("read config file %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", fmt.Errorf("parse config file %s: %w", path, err)
	}
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			overlay[strings.ToUpper(k)] = strings.Join(parts, ",")
		default:
			overlay[strings.ToUpper(k)] = fmt.Sprint(val)
		}
	}
	return path, nil
}

// Helper functions
func lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return overlay[key]
}

func getEnv(key, defaultValue string) string {
	if value := lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := lookup(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := lookup(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := lookup(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := lookup(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := lookup(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
