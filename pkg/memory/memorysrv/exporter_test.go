package memorysrv

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/fsx/fsxlocal"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
)

type pagedClient struct {
	memory.Client
	total  int
	failOn int
	pages  []int
}

func (p *pagedClient) ListMemories(_ context.Context, req memory.ListMemoriesRequest) restx.Envelope[memory.MemoryList] {
	page, limit := *req.Page, *req.Limit
	p.pages = append(p.pages, page)
	if page == p.failOn {
		return restx.Failed[memory.MemoryList](errx.FromStatus(503, "maintenance"))
	}
	pages := (p.total + limit - 1) / limit
	var data []memory.MemoryEntry
	for i := (page - 1) * limit; i < min(page*limit, p.total); i++ {
		data = append(data, memory.MemoryEntry{ID: "mem_" + string(rune('a'+i%26)), Title: "t"})
	}
	return restx.Envelope[memory.MemoryList]{Data: &memory.MemoryList{
		Data:       data,
		Pagination: memory.Pagination{Page: page, Limit: limit, Total: p.total, Pages: pages},
	}}
}

func (p *pagedClient) GetTopics(context.Context) restx.Envelope[[]memory.MemoryTopic] {
	topics := []memory.MemoryTopic{{ID: "top_1", Name: "Work", Color: "#ff5733"}}
	return restx.Envelope[[]memory.MemoryTopic]{Data: &topics}
}

func TestExport_PagesThroughEverything(t *testing.T) {
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	client := &pagedClient{total: 250}
	svc := NewExportService(client, fs)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	res, err := svc.Export(context.Background(), "", ExportFilter{}, true)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Count != 250 || res.Pages != 3 {
		t.Errorf("result = %+v", res)
	}

	raw, err := fs.ReadFile(context.Background(), "memories-20250301-120000.json")
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if snap.Count != 250 || len(snap.Memories) != 250 || len(snap.Topics) != 1 {
		t.Errorf("snapshot count=%d memories=%d topics=%d", snap.Count, len(snap.Memories), len(snap.Topics))
	}
}

func TestExport_FailsOnPageError(t *testing.T) {
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	svc := NewExportService(&pagedClient{total: 250, failOn: 2}, fs)

	_, err = svc.Export(context.Background(), "out.json", ExportFilter{}, false)
	if errx.CodeOf(err) != errx.CodeServer {
		t.Fatalf("err = %v, want SERVER_ERROR", err)
	}
	if ok, _ := fs.Exists(context.Background(), "out.json"); ok {
		t.Error("partial export written")
	}
}
