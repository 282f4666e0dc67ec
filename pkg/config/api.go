package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/retryx"
)

type APIConfig struct {
	BaseURL        string
	Token          string
	APIKey         string
	OrganizationID string
	UserID         string
	ProjectScope   string
	ClientType     string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	MaxRetryDelay  time.Duration
	Backoff        retryx.Strategy
}

func loadAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:        getEnv("LANONASIS_API_URL", "https://api.lanonasis.com"),
		Token:          getEnv("LANONASIS_TOKEN", ""),
		APIKey:         getEnv("LANONASIS_API_KEY", ""),
		OrganizationID: getEnv("LANONASIS_ORG_ID", ""),
		UserID:         getEnv("LANONASIS_USER_ID", ""),
		ProjectScope:   getEnv("LANONASIS_PROJECT_SCOPE", "lanonasis-maas"),
		ClientType:     getEnv("LANONASIS_CLIENT_TYPE", "cli"),
		Timeout:        getEnvDuration("LANONASIS_TIMEOUT", 30*time.Second),
		MaxRetries:     getEnvInt("LANONASIS_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("LANONASIS_RETRY_DELAY", time.Second),
		MaxRetryDelay:  getEnvDuration("LANONASIS_MAX_RETRY_DELAY", retryx.DefaultMaxDelay),
		Backoff:        retryx.ParseStrategy(getEnv("LANONASIS_BACKOFF", "exponential")),
	}
}

// Retry returns the pipeline's retry policy.
func (a APIConfig) Retry() retryx.Policy {
	return retryx.Policy{
		MaxRetries: a.MaxRetries,
		Base:       a.RetryDelay,
		Strategy:   a.Backoff,
		MaxDelay:   a.MaxRetryDelay,
	}
}

func (a APIConfig) HasCredentials() bool {
	return a.Token != "" || a.APIKey != ""
}

func (a APIConfig) validate() error {
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("LANONASIS_API_URL must be an absolute URL, got %q", a.BaseURL)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("LANONASIS_TIMEOUT must be positive")
	}
	if a.MaxRetries < 0 || a.MaxRetries > 10 {
		return fmt.Errorf("LANONASIS_MAX_RETRIES must be between 0 and 10")
	}
	return nil
}
