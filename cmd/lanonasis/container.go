package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/llm"
	aianthropic "github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/providers/anthropic"
	aiopenai "github.com/lanonasis/lanonasis-maas-sub005/pkg/ai/providers/openai"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/assistant"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/cachex"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/cachex/cachexmem"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/cachex/cachexredis"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/config"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/fsx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/fsx/fsxlocal"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/fsx/fsxs3"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory/memoryinfra"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory/memorysrv"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Infrastructure
	Rest       *restx.Client
	Cache      cachex.Cache
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Memory service
	HTTPClient *memoryinfra.HTTPClient
	Memory     memory.Client

	// Reasoning; nil means rule-based intent resolution only
	Reasoning llm.LLM
}

// NewContainer wires the memory client and its decorators. Storage is set
// up on first use since only export needs it.
func NewContainer(cfg *config.Config) (*Container, error) {
	logx.Debug("🔧 Initializing dependency container...")

	c := &Container{Config: cfg}

	c.initRest()
	if err := c.initCache(); err != nil {
		return nil, err
	}
	c.initMemoryClient()
	c.initReasoning()

	logx.Debug("✅ Container initialized successfully")
	return c, nil
}

func (c *Container) initRest() {
	api := c.Config.API
	c.Rest = restx.NewClient(restx.Config{
		BaseURL:       api.BaseURL,
		ClientType:    api.ClientType,
		ClientVersion: version,
		ProjectScope:  api.ProjectScope,
		Timeout:       api.Timeout,
		Retry:         api.Retry(),
		Tenancy:       memoryinfra.NewTokenTenancy(api.OrganizationID, api.UserID),
		Hooks: restx.Hooks{
			OnRequest: func(info restx.RequestInfo) {
				logx.WithFields(logx.Fields{
					"request_id": info.RequestID,
					"attempt":    info.Attempt,
				}).Debugf("%s %s", info.Method, info.URL)
			},
			OnResponse: func(info restx.ResponseInfo) {
				logx.WithFields(logx.Fields{
					"request_id": info.RequestID,
					"status":     info.Status,
					"duration":   info.Duration.String(),
				}).Debug("response")
			},
			OnError: func(e *errx.Error) {
				logx.WithFields(logx.Fields{
					"request_id": e.RequestID,
					"code":       e.Code,
				}).Debug(e.Message)
			},
		},
	})
	if api.Token != "" {
		c.Rest.SetAuthToken(api.Token)
	} else if api.APIKey != "" {
		c.Rest.SetAPIKey(api.APIKey)
	}
}

func (c *Container) initCache() error {
	cc := c.Config.Cache
	switch cc.Mode {
	case "redis":
		rc, err := cachexredis.Dial(context.Background(), cc.RedisURL, "lanonasis:")
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		c.Cache = rc
		logx.Debug("✅ Redis cache connected")
	case "memory":
		mc, err := cachexmem.New(cc.MaxBytes)
		if err != nil {
			return fmt.Errorf("create memory cache: %w", err)
		}
		c.Cache = mc
	default:
		c.Cache = cachex.Nop{}
	}
	return nil
}

func (c *Container) initMemoryClient() {
	c.HTTPClient = memoryinfra.NewHTTPClient(c.Rest)
	if _, nop := c.Cache.(cachex.Nop); nop {
		c.Memory = c.HTTPClient
		return
	}
	c.Memory = memoryinfra.NewCachedClient(c.HTTPClient, c.Cache, c.Config.Cache.TTL)
}

// initReasoning builds the backend chain: the OpenAI-compatible router
// first, then the named provider.
func (c *Container) initReasoning() {
	rc := c.Config.Reasoning
	var backends []llm.LLM

	if rc.RouterEnabled() {
		backends = append(backends, aiopenai.NewOpenAIProvider(aiopenai.Config{
			APIKey:  rc.RouterKey,
			BaseURL: rc.RouterURL,
			Model:   rc.RouterModel,
			Name:    "router",
		}))
	}
	if rc.ProviderEnabled() {
		switch rc.Provider {
		case "openai":
			backends = append(backends, aiopenai.NewOpenAIProvider(aiopenai.Config{
				APIKey:  rc.OpenAIKey,
				BaseURL: rc.OpenAIBaseURL,
				Model:   rc.OpenAIModel,
			}))
		case "anthropic":
			backends = append(backends, aianthropic.NewAnthropicProvider(aianthropic.Config{
				APIKey: rc.AnthropicKey,
				Model:  rc.AnthropicModel,
			}))
		}
	}

	if len(backends) == 0 {
		logx.Debug("No reasoning backend configured, using rules")
		return
	}
	router := llm.NewRouter(backends...)
	c.Reasoning = router
	logx.Debugf("Reasoning backends: %s", router.Name())
}

// NewOrchestrator returns a fresh conversation bound to the shared client.
func (c *Container) NewOrchestrator() *assistant.Orchestrator {
	s := c.Config.Session
	opts := assistant.DefaultOptions()
	opts.HistoryLimit = s.HistoryLimit
	opts.ContextFetch = s.ContextFetch
	opts.ContextThreshold = s.ContextThreshold
	opts.ContextTimeout = s.ContextTimeout
	return assistant.New(c.Memory, c.Reasoning, opts)
}

func (c *Container) initFileStorage() error {
	sc := c.Config.Storage

	switch sc.Mode {
	case "s3":
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(sc.AWSRegion))
		if err != nil {
			return fmt.Errorf("load AWS SDK config: %w", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, sc.AWSBucket, sc.S3Prefix)
		logx.Infof("✅ S3 file system configured (bucket: %s, region: %s)", sc.AWSBucket, sc.AWSRegion)

	case "local":
		localFS, err := fsxlocal.NewLocalFileSystem(sc.ExportDir)
		if err != nil {
			return fmt.Errorf("initialize local file system: %w", err)
		}
		c.FileSystem = localFS
		logx.Infof("✅ Local file system configured (path: %s)", localFS.GetBasePath())

	default:
		return fmt.Errorf("unknown STORAGE_MODE: %s (use 'local' or 's3')", sc.Mode)
	}
	return nil
}

// Exporter sets up storage on first call.
func (c *Container) Exporter() (*memorysrv.ExportService, error) {
	if c.FileSystem == nil {
		if err := c.initFileStorage(); err != nil {
			return nil, err
		}
	}
	return memorysrv.NewExportService(c.Memory, c.FileSystem), nil
}

// HistoryFile is where the REPL keeps its line history.
func (c *Container) HistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".lanonasis")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func (c *Container) Cleanup() {
	logx.Debug("🧹 Cleaning up resources...")
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logx.Errorf("Error closing cache: %v", err)
		}
	}
}
