package restx

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/retryx"
)

const apiPrefix = "/api/v1"

// Tenancy identifies the organization and user a request acts for.
type Tenancy struct {
	OrganizationID string
	UserID         string
}

func (t Tenancy) empty() bool {
	return t.OrganizationID == "" && t.UserID == ""
}

// TenancyResolver derives tenancy for the current credentials. token is the
// bearer token, or "" when an API key is in use.
type TenancyResolver interface {
	Resolve(token string) Tenancy
}

// RequestInfo is passed to OnRequest before each attempt.
type RequestInfo struct {
	Method    string
	URL       string
	RequestID string
	Attempt   int
}

// ResponseInfo is passed to OnResponse after each attempt that got a response.
type ResponseInfo struct {
	RequestID string
	Status    int
	Duration  time.Duration
	Attempt   int
}

// Hooks observe the pipeline. They must not block; a panicking hook is
// recovered and logged.
type Hooks struct {
	OnRequest  func(RequestInfo)
	OnResponse func(ResponseInfo)
	OnError    func(*errx.Error)
}

type Config struct {
	BaseURL       string
	ClientType    string
	ClientVersion string
	ProjectScope  string
	Timeout       time.Duration
	Retry         retryx.Policy
	Headers       map[string]string
	Tenancy       TenancyResolver
	Hooks         Hooks
	HTTPClient    *http.Client
	Sleep         retryx.Sleeper
	NewRequestID  func() string
}

// Client holds connection settings and credentials shared by every call.
type Client struct {
	cfg     Config
	baseURL string

	mu     sync.RWMutex
	token  string
	apiKey string
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.Base <= 0 {
		cfg.Retry.Base = time.Second
	}
	if cfg.Retry.Strategy == "" {
		cfg.Retry.Strategy = retryx.Exponential
	}
	if cfg.Retry.MaxRetries < 0 {
		cfg.Retry.MaxRetries = 0
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Sleep == nil {
		cfg.Sleep = retryx.Sleep
	}
	if cfg.NewRequestID == nil {
		cfg.NewRequestID = NewRequestID
	}
	if cfg.ClientType == "" {
		cfg.ClientType = "cli"
	}
	return &Client{cfg: cfg, baseURL: NormalizeBaseURL(cfg.BaseURL)}
}

// NormalizeBaseURL strips trailing slashes and any trailing /api/v1 or /api
// segments so the prefix is never doubled.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	for {
		trimmed := strings.TrimRight(u, "/")
		switch {
		case strings.HasSuffix(trimmed, "/api/v1"):
			trimmed = strings.TrimSuffix(trimmed, "/api/v1")
		case strings.HasSuffix(trimmed, "/api"):
			trimmed = strings.TrimSuffix(trimmed, "/api")
		}
		if trimmed == u {
			return u
		}
		u = trimmed
	}
}

// BaseURL is the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins endpoint under the versioned API prefix.
func (c *Client) URL(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + apiPrefix + endpoint
}

// SetAuthToken switches to bearer authentication, dropping any API key.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.apiKey = ""
}

// SetAPIKey switches to API key authentication, dropping any token.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
	c.token = ""
}

func (c *Client) ClearAuth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.apiKey = ""
}

// Authenticated reports whether any credential is set.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != "" || c.apiKey != ""
}

func (c *Client) credentials() (token, apiKey string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.apiKey
}

// headers builds the header set for one request. Per-call overrides win over
// static headers, and exactly one auth header is emitted.
func (c *Client) headers(requestID string, overrides map[string]string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("X-Client-Type", c.cfg.ClientType)
	if c.cfg.ClientVersion != "" {
		h.Set("X-Client-Version", c.cfg.ClientVersion)
	}
	if c.cfg.ProjectScope != "" {
		h.Set("X-Project-Scope", c.cfg.ProjectScope)
	}
	for k, v := range c.cfg.Headers {
		h.Set(k, v)
	}
	for k, v := range overrides {
		h.Set(k, v)
	}
	h.Set("X-Request-ID", requestID)

	token, apiKey := c.credentials()
	h.Del("Authorization")
	h.Del("X-API-Key")
	switch {
	case token != "":
		h.Set("Authorization", "Bearer "+token)
	case apiKey != "":
		h.Set("X-API-Key", apiKey)
	}
	return h
}

func (c *Client) tenancy() Tenancy {
	if c.cfg.Tenancy == nil {
		return Tenancy{}
	}
	token, _ := c.credentials()
	return c.cfg.Tenancy.Resolve(token)
}
