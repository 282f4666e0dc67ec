package memory

import (
	"time"
)

// ============================================================================
// Enums
// ============================================================================

type MemoryType string

const (
	TypeContext   MemoryType = "context"
	TypeProject   MemoryType = "project"
	TypeKnowledge MemoryType = "knowledge"
	TypeReference MemoryType = "reference"
	TypePersonal  MemoryType = "personal"
	TypeWorkflow  MemoryType = "workflow"
)

// MemoryTypes lists every memory type in display order.
func MemoryTypes() []MemoryType {
	return []MemoryType{TypeContext, TypeProject, TypeKnowledge, TypeReference, TypePersonal, TypeWorkflow}
}

func (t MemoryType) Valid() bool {
	for _, v := range MemoryTypes() {
		if v == t {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDraft    Status = "draft"
	StatusDeleted  Status = "deleted"
)

type SearchMode string

const (
	SearchVector SearchMode = "vector"
	SearchText   SearchMode = "text"
	SearchHybrid SearchMode = "hybrid"
)

// ============================================================================
// Entities
// ============================================================================

// MemoryEntry is a stored knowledge record. The server is authoritative;
// values held by the client are transient copies.
type MemoryEntry struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Summary        *string        `json:"summary,omitempty"`
	MemoryType     MemoryType     `json:"memory_type"`
	Status         Status         `json:"status"`
	Tags           []string       `json:"tags"`
	TopicID        *string        `json:"topic_id,omitempty"`
	ProjectRef     *string        `json:"project_ref,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	AccessCount    int            `json:"access_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	LastAccessed   *time.Time     `json:"last_accessed,omitempty"`
	UserID         string         `json:"user_id"`
	OrganizationID string         `json:"organization_id"`
}

type MemoryTopic struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	Color          string    `json:"color"`
	Icon           *string   `json:"icon,omitempty"`
	ParentTopicID  *string   `json:"parent_topic_id,omitempty"`
	IsSystem       bool      `json:"is_system"`
	UserID         string    `json:"user_id,omitempty"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ============================================================================
// Responses
// ============================================================================

type SearchResult struct {
	MemoryEntry
	SimilarityScore float64 `json:"similarity_score"`
}

type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	SearchTimeMS int            `json:"search_time_ms"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type MemoryList struct {
	Data       []MemoryEntry `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// HasMore reports whether another page follows this one.
func (l MemoryList) HasMore() bool {
	return l.Pagination.Page < l.Pagination.Pages
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type MemoryStats struct {
	TotalMemories  int                `json:"total_memories"`
	MemoriesByType map[MemoryType]int `json:"memories_by_type"`
	TotalTopics    int                `json:"total_topics"`
	MostAccessed   *MemoryEntry       `json:"most_accessed_memory,omitempty"`
	RecentMemories []MemoryEntry      `json:"recent_memories,omitempty"`
}

type UsagePoint struct {
	Date     string `json:"date"`
	Created  int    `json:"created"`
	Accessed int    `json:"accessed"`
	Searches int    `json:"searches"`
}

type UsageAnalytics struct {
	GroupBy string       `json:"group_by"`
	Series  []UsagePoint `json:"series"`
}

type HealthStatus struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Timestamp    string            `json:"timestamp,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Healthy reports whether the service declared itself usable.
func (h HealthStatus) Healthy() bool {
	return h.Status == "ok" || h.Status == "healthy"
}
