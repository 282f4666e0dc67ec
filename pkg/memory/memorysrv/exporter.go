package memorysrv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/fsx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ptrx"
)

const exportPageSize = 100

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time            `json:"exported_at"`
	Count      int                  `json:"count"`
	Filter     ExportFilter         `json:"filter"`
	Memories   []memory.MemoryEntry `json:"memories"`
	Topics     []memory.MemoryTopic `json:"topics,omitempty"`
}

type ExportFilter struct {
	MemoryType memory.MemoryType `json:"memory_type,omitempty"`
	Status     memory.Status     `json:"status,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
}

type ExportResult struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
	Pages    int    `json:"pages"`
}

// ExportService pages through every memory matching a filter and writes a
// JSON snapshot to a file system.
type ExportService struct {
	client memory.Client
	fs     fsx.FileSystem
	now    func() time.Time
}

func NewExportService(client memory.Client, fs fsx.FileSystem) *ExportService {
	return &ExportService{client: client, fs: fs, now: time.Now}
}

// Export writes the snapshot to path. An empty path gets a timestamped name.
func (s *ExportService) Export(ctx context.Context, path string, filter ExportFilter, includeTopics bool) (*ExportResult, error) {
	at := s.now().UTC()
	if path == "" {
		path = fmt.Sprintf("memories-%s.json", at.Format("20060102-150405"))
	}

	snap := Snapshot{ExportedAt: at, Filter: filter, Memories: []memory.MemoryEntry{}}
	pages := 0
	for page := 1; ; page++ {
		env := s.client.ListMemories(ctx, memory.ListMemoriesRequest{
			Page:       ptrx.Int(page),
			Limit:      ptrx.Int(exportPageSize),
			MemoryType: filter.MemoryType,
			Status:     filter.Status,
			Tags:       filter.Tags,
			SortBy:     "created_at",
			SortOrder:  "asc",
		})
		if env.Error != nil {
			return nil, errx.Wrap(env.Error, fmt.Sprintf("export failed on page %d", page), errx.CodeAPI)
		}
		pages++
		snap.Memories = append(snap.Memories, env.Data.Data...)
		if !env.Data.HasMore() || len(env.Data.Data) == 0 {
			break
		}
	}
	snap.Count = len(snap.Memories)

	if includeTopics {
		env := s.client.GetTopics(ctx)
		if env.Error != nil {
			logx.Warnf("export: topics skipped: %v", env.Error)
		} else {
			snap.Topics = *env.Data
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, errx.Wrap(err, "could not encode export", errx.CodeAPI)
	}
	if err := s.fs.WriteFile(ctx, path, data); err != nil {
		return nil, errx.Wrap(err, "could not write export", errx.CodeAPI).WithDetail("path", path)
	}

	logx.Infof("exported %d memories to %s", snap.Count, s.fs.Location(path))
	return &ExportResult{Location: s.fs.Location(path), Count: snap.Count, Pages: pages}, nil
}
