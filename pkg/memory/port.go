package memory

import (
	"context"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
)

// Client is the memory service surface used by every front end. Each call
// returns an envelope with exactly one of data or error set.
type Client interface {
	CreateMemory(ctx context.Context, req CreateMemoryRequest) restx.Envelope[MemoryEntry]
	GetMemory(ctx context.Context, id string) restx.Envelope[MemoryEntry]
	UpdateMemory(ctx context.Context, id string, req UpdateMemoryRequest) restx.Envelope[MemoryEntry]
	DeleteMemory(ctx context.Context, id string) restx.Envelope[DeleteResult]
	ListMemories(ctx context.Context, req ListMemoriesRequest) restx.Envelope[MemoryList]
	SearchMemories(ctx context.Context, req SearchMemoryRequest) restx.Envelope[SearchResponse]
	EnhancedSearch(ctx context.Context, req EnhancedSearchRequest) restx.Envelope[SearchResponse]
	BulkDeleteMemories(ctx context.Context, ids []string) restx.Envelope[BulkDeleteResult]

	CreateTopic(ctx context.Context, req CreateTopicRequest) restx.Envelope[MemoryTopic]
	GetTopics(ctx context.Context) restx.Envelope[[]MemoryTopic]
	GetTopic(ctx context.Context, id string) restx.Envelope[MemoryTopic]
	UpdateTopic(ctx context.Context, id string, req UpdateTopicRequest) restx.Envelope[MemoryTopic]
	DeleteTopic(ctx context.Context, id string) restx.Envelope[DeleteResult]

	GetMemoryStats(ctx context.Context) restx.Envelope[MemoryStats]
	GetUsageAnalytics(ctx context.Context, req AnalyticsRangeRequest) restx.Envelope[UsageAnalytics]
	HealthCheck(ctx context.Context) restx.Envelope[HealthStatus]
}

// SingleAttemptSearcher is implemented by clients that can run a search
// once, skipping the retry policy. Best-effort lookups use it so a degraded
// service costs one failed request instead of a full backoff cycle.
type SingleAttemptSearcher interface {
	SearchMemoriesOnce(ctx context.Context, req SearchMemoryRequest) restx.Envelope[SearchResponse]
}

// BulkDeleteResult aggregates a fan-out delete. One failed id never affects
// the others.
type BulkDeleteResult struct {
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Deleted   []string               `json:"deleted"`
	Errors    map[string]*errx.Error `json:"errors,omitempty"`
}
