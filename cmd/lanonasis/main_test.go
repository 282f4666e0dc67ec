package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
)

type fakeService struct {
	mu      sync.Mutex
	created []map[string]any
	deleted []string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/health":
		_, _ = io.WriteString(w, `{"status":"ok","version":"1.2.3"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/memory":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body)
		_ = json.NewEncoder(w).Encode(memory.MemoryEntry{
			ID:         "mem_1",
			Title:      body["title"].(string),
			Content:    body["content"].(string),
			MemoryType: memory.MemoryType(body["memory_type"].(string)),
			Status:     memory.StatusActive,
			UpdatedAt:  time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/v1/memory/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/memory/")
		if id == "mem_gone" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"memory not found"}`)
			return
		}
		f.deleted = append(f.deleted, id)
		_, _ = io.WriteString(w, `{"success":true}`)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v1/memory/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"memory not found"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupEnv(t *testing.T, url string, withKey bool) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LANONASIS_CONFIG", "")
	t.Setenv("LANONASIS_API_URL", url)
	t.Setenv("LANONASIS_TOKEN", "")
	t.Setenv("LANONASIS_API_KEY", "")
	if withKey {
		t.Setenv("LANONASIS_API_KEY", "lk_test")
	}
	t.Setenv("LANONASIS_MAX_RETRIES", "0")
	t.Setenv("REASONING_PROVIDER", "none")
	t.Setenv("ROUTER_URL", "")
	t.Setenv("CACHE_MODE", "none")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateCommand(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc)
	defer srv.Close()
	setupEnv(t, srv.URL, true)

	out, err := run(t, "create", "-o", "json", "--tags", "UI,prefs", "I prefer dark mode")
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	var entry memory.MemoryEntry
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if entry.ID != "mem_1" || entry.Title != "I prefer dark mode" {
		t.Errorf("entry = %+v", entry)
	}
	if len(svc.created) != 1 {
		t.Fatalf("created = %d", len(svc.created))
	}
	body := svc.created[0]
	if body["memory_type"] != "context" {
		t.Errorf("memory_type = %v", body["memory_type"])
	}
	tags, _ := body["tags"].([]any)
	if len(tags) != 2 || tags[0] != "UI" {
		t.Errorf("tags = %v", body["tags"])
	}
}

func TestCreateCommand_RequiresCredentials(t *testing.T) {
	srv := httptest.NewServer(&fakeService{})
	defer srv.Close()
	setupEnv(t, srv.URL, false)

	_, err := run(t, "create", "something")
	if errx.CodeOf(err) != errx.CodeAuth {
		t.Fatalf("err = %v, want AUTH_ERROR", err)
	}
}

func TestGetCommand_NotFound(t *testing.T) {
	srv := httptest.NewServer(&fakeService{})
	defer srv.Close()
	setupEnv(t, srv.URL, true)

	_, err := run(t, "get", "mem_404")
	if errx.CodeOf(err) != errx.CodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestDeleteCommand_Bulk(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc)
	defer srv.Close()
	setupEnv(t, srv.URL, true)

	out, err := run(t, "delete", "mem_a", "mem_gone", "mem_b")
	if err == nil || !strings.Contains(err.Error(), "1 of 3") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "Deleted 2, failed 1") || !strings.Contains(out, "mem_gone") {
		t.Errorf("out = %q", out)
	}
	if len(svc.deleted) != 2 {
		t.Errorf("deleted = %v", svc.deleted)
	}
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(&fakeService{})
	defer srv.Close()
	setupEnv(t, srv.URL, true)

	out, err := run(t, "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	for _, want := range []string{"endpoint:", srv.URL, "service:", "ok", "reasoning:", "rules"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigErrorSurfaces(t *testing.T) {
	setupEnv(t, "not a url", true)
	if _, err := run(t, "status"); err == nil || !strings.Contains(err.Error(), "LANONASIS_API_URL") {
		t.Fatalf("err = %v", err)
	}
}
