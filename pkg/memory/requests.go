package memory

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ptrx"
)

const (
	DefaultLimit          = 20
	DefaultThreshold      = 0.7
	DefaultMemoryType     = TypeContext
	DefaultStatus         = StatusActive
	DefaultSearchMode     = SearchHybrid
	DefaultAnalyticsGroup = "day"
)

// ============================================================================
// Memories
// ============================================================================

type CreateMemoryRequest struct {
	Title      string         `json:"title" validate:"required,max=500"`
	Content    string         `json:"content" validate:"required,max=50000"`
	Summary    string         `json:"summary,omitempty" validate:"max=1000"`
	MemoryType MemoryType     `json:"memory_type" validate:"required,oneof=context project knowledge reference personal workflow"`
	Tags       []string       `json:"tags" validate:"max=20,dive,min=1,max=50"`
	TopicID    string         `json:"topic_id,omitempty" validate:"max=100"`
	ProjectRef string         `json:"project_ref,omitempty" validate:"max=100"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Validated applies defaults, coerces tags and validates. The returned value
// is what gets sent.
func (r CreateMemoryRequest) Validated() (CreateMemoryRequest, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	if r.MemoryType == "" {
		r.MemoryType = DefaultMemoryType
	}
	r.Tags = NormalizeTags(r.Tags)
	if err := validateStruct(r); err != nil {
		return r, err
	}
	return r, nil
}

type UpdateMemoryRequest struct {
	Title      *string        `json:"title,omitempty" validate:"omitnil,min=1,max=500"`
	Content    *string        `json:"content,omitempty" validate:"omitnil,min=1,max=50000"`
	Summary    *string        `json:"summary,omitempty" validate:"omitnil,max=1000"`
	MemoryType *MemoryType    `json:"memory_type,omitempty" validate:"omitnil,oneof=context project knowledge reference personal workflow"`
	Status     *Status        `json:"status,omitempty" validate:"omitnil,oneof=active archived draft deleted"`
	Tags       []string       `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	TopicID    *string        `json:"topic_id,omitempty" validate:"omitnil,max=100"`
	ProjectRef *string        `json:"project_ref,omitempty" validate:"omitnil,max=100"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func (r UpdateMemoryRequest) empty() bool {
	return r.Title == nil && r.Content == nil && r.Summary == nil && r.MemoryType == nil &&
		r.Status == nil && r.Tags == nil && r.TopicID == nil && r.ProjectRef == nil && r.Metadata == nil
}

func (r UpdateMemoryRequest) Validated() (UpdateMemoryRequest, error) {
	if r.Tags != nil {
		r.Tags = NormalizeTags(r.Tags)
	}
	if r.empty() {
		return r, errx.Validation("nothing to update", errx.FieldError{Field: "body", Message: "must change at least one field"})
	}
	if err := validateStruct(r); err != nil {
		return r, err
	}
	return r, nil
}

type SearchMemoryRequest struct {
	Query       string       `json:"query" validate:"required,max=1000"`
	MemoryTypes []MemoryType `json:"memory_types,omitempty" validate:"omitempty,dive,oneof=context project knowledge reference personal workflow"`
	Tags        []string     `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	TopicID     string       `json:"topic_id,omitempty" validate:"max=100"`
	Status      Status       `json:"status" validate:"required,oneof=active archived draft deleted"`
	Limit       *int         `json:"limit" validate:"required,min=1,max=100"`
	Threshold   *float64     `json:"threshold" validate:"required,min=0,max=1"`
}

func (r SearchMemoryRequest) withDefaults() SearchMemoryRequest {
	r.Query = strings.TrimSpace(r.Query)
	if r.Status == "" {
		r.Status = DefaultStatus
	}
	if r.Limit == nil {
		r.Limit = ptrx.Int(DefaultLimit)
	}
	if r.Threshold == nil {
		r.Threshold = ptrx.Float64(DefaultThreshold)
	}
	if r.Tags != nil {
		r.Tags = NormalizeTags(r.Tags)
	}
	return r
}

func (r SearchMemoryRequest) Validated() (SearchMemoryRequest, error) {
	r = r.withDefaults()
	if err := validateStruct(r); err != nil {
		return r, err
	}
	return r, nil
}

type EnhancedSearchRequest struct {
	SearchMemoryRequest
	SearchMode      SearchMode `json:"search_mode" validate:"required,oneof=vector text hybrid"`
	IncludeMetadata bool       `json:"include_metadata,omitempty"`
	DateFrom        string     `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo          string     `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r EnhancedSearchRequest) Validated() (EnhancedSearchRequest, error) {
	r.SearchMemoryRequest = r.SearchMemoryRequest.withDefaults()
	if r.SearchMode == "" {
		r.SearchMode = DefaultSearchMode
	}
	if err := validateStruct(r); err != nil {
		return r, err
	}
	if err := checkRange(r.DateFrom, r.DateTo, "date_to"); err != nil {
		return r, err
	}
	return r, nil
}

type ListMemoriesRequest struct {
	Page       *int       `json:"page" validate:"required,min=1"`
	Limit      *int       `json:"limit" validate:"required,min=1,max=100"`
	MemoryType MemoryType `json:"memory_type,omitempty" validate:"omitempty,oneof=context project knowledge reference personal workflow"`
	Status     Status     `json:"status,omitempty" validate:"omitempty,oneof=active archived draft deleted"`
	Tags       []string   `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	TopicID    string     `json:"topic_id,omitempty" validate:"max=100"`
	SortBy     string     `json:"sort_by" validate:"required,oneof=created_at updated_at title access_count"`
	SortOrder  string     `json:"sort_order" validate:"required,oneof=asc desc"`
}

func (r ListMemoriesRequest) Validated() (ListMemoriesRequest, error) {
	if r.Page == nil {
		r.Page = ptrx.Int(1)
	}
	if r.Limit == nil {
		r.Limit = ptrx.Int(DefaultLimit)
	}
	if r.SortBy == "" {
		r.SortBy = "updated_at"
	}
	if r.SortOrder == "" {
		r.SortOrder = "desc"
	}
	if r.Tags != nil {
		r.Tags = NormalizeTags(r.Tags)
	}
	if err := validateStruct(r); err != nil {
		return r, err
	}
	return r, nil
}

// Query renders the request as URL parameters. Call it on a validated value.
func (r ListMemoriesRequest) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(ptrx.ValueOr(r.Page, 1)))
	q.Set("limit", strconv.Itoa(ptrx.ValueOr(r.Limit, DefaultLimit)))
	if r.MemoryType != "" {
		q.Set("memory_type", string(r.MemoryType))
	}
	if r.Status != "" {
		q.Set("status", string(r.Status))
	}
	if len(r.Tags) > 0 {
		q.Set("tags", strings.Join(r.Tags, ","))
	}
	if r.TopicID != "" {
		q.Set("topic_id", r.TopicID)
	}
	if r.SortBy != "" {
		q.Set("sort", r.SortBy)
	}
	if r.SortOrder != "" {
		q.Set("order", r.SortOrder)
	}
	return q
}

// ============================================================================
// Topics
// ============================================================================

type CreateTopicRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Description   string `json:"description,omitempty" validate:"max=500"`
	Color         string `json:"color,omitempty" validate:"omitempty,rgbhex"`
	Icon          string `json:"icon,omitempty" validate:"max=50"`
	ParentTopicID string `json:"parent_topic_id,omitempty" validate:"max=100"`
}

func (r CreateTopicRequest) Validated() (CreateTopicRequest, error) {
	r.Name = strings.TrimSpace(r.Name)
	if err := validateStruct(r); err != nil {
		return r, err
	}
	return r, nil
}

type UpdateTopicRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
	Description   *string `json:"description,omitempty" validate:"omitnil,max=500"`
	Color         *string `json:"color,omitempty" validate:"omitnil,rgbhex"`
	Icon          *string `json:"icon,omitempty" validate:"omitnil,max=50"`
	ParentTopicID *string `json:"parent_topic_id,omitempty" validate:"omitnil,max=100"`
}

func (r UpdateTopicRequest) Validated() (UpdateTopicRequest, error) {
	if err := validateStruct(r); err != nil {
		return r, err
	}
	return r, nil
}

// ============================================================================
// Analytics
// ============================================================================

type AnalyticsRangeRequest struct {
	From    string `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To      string `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GroupBy string `json:"group_by" validate:"required,oneof=day week month"`
}

func (r AnalyticsRangeRequest) Validated() (AnalyticsRangeRequest, error) {
	if r.GroupBy == "" {
		r.GroupBy = DefaultAnalyticsGroup
	}
	if err := validateStruct(r); err != nil {
		return r, err
	}
	if err := checkRange(r.From, r.To, "to"); err != nil {
		return r, err
	}
	return r, nil
}

func (r AnalyticsRangeRequest) Query() url.Values {
	q := url.Values{}
	if r.From != "" {
		q.Set("from", r.From)
	}
	if r.To != "" {
		q.Set("to", r.To)
	}
	q.Set("group_by", r.GroupBy)
	return q
}

func checkRange(from, to, field string) error {
	if from == "" || to == "" {
		return nil
	}
	f, err1 := time.Parse(time.DateOnly, from)
	t, err2 := time.Parse(time.DateOnly, to)
	if err1 != nil || err2 != nil {
		return nil
	}
	if t.Before(f) {
		return errx.Validation("invalid date range", errx.FieldError{Field: field, Message: "must not be before the start date"})
	}
	return nil
}

// ============================================================================
// Tags
// ============================================================================

// NormalizeTags trims every tag, drops empties and removes duplicates while
// keeping first-seen order. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
