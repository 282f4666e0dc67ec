package config

import (
	"fmt"
	"strings"
	"time"
)

type CacheConfig struct {
	Mode     string // none, memory or redis
	RedisURL string
	TTL      time.Duration
	MaxBytes int64
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Mode:     strings.ToLower(getEnv("CACHE_MODE", "memory")),
		RedisURL: getEnv("REDIS_URL", ""),
		TTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		MaxBytes: int64(getEnvInt("CACHE_MAX_BYTES", 32<<20)),
	}
}

func (c CacheConfig) validate() error {
	switch c.Mode {
	case "none", "memory":
		return nil
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_MODE=redis")
		}
		return nil
	}
	return fmt.Errorf("CACHE_MODE must be none, memory or redis, got %q", c.Mode)
}
