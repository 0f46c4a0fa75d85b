package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ragvision/ragvision/internal/config"
	"github.com/ragvision/ragvision/internal/embedding"
	"github.com/ragvision/ragvision/internal/extract"
	"github.com/ragvision/ragvision/internal/index"
	"github.com/ragvision/ragvision/internal/ingest"
	"github.com/ragvision/ragvision/internal/session"
)

func newTestWatcher(t *testing.T, root string) (*Watcher, *session.Registry) {
	t.Helper()
	registry := session.NewRegistry(&config.SessionsConfig{TTLMinutes: 60, SweepMinutes: 10, MaxHistoryTurns: 10})
	builder := index.NewBuilder(embedding.NewMockEmbedder(8), &config.RetrievalConfig{
		ChunkSize: 50, ChunkOverlap: 10, KeywordWeight: 0.5, SemanticWeight: 0.5,
	})
	pipeline := ingest.NewPipeline(extract.NewExtractor(nil), builder, registry, zap.NewNop())
	return NewWatcher(root, pipeline, zap.NewNop()), registry
}

func waitForIndex(t *testing.T, registry *session.Registry, sessionID string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if registry.HasIndex(sessionID) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("no index for session %q", sessionID)
}

func TestWatcher_IngestsDroppedFile(t *testing.T) {
	root := t.TempDir()
	w, registry := newTestWatcher(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	sessionDir := filepath.Join(root, "drop-session")
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sessionDir, "notes.txt"), []byte("The capital of Testland is Foo."), 0644); err != nil {
		t.Fatal(err)
	}

	waitForIndex(t, registry, "drop-session")
	idx, _ := registry.Index("drop-session")
	if idx.DocumentCount() != 1 {
		t.Errorf("documents: %d", idx.DocumentCount())
	}
}

func TestWatcher_IngestsExistingFilesOnStart(t *testing.T) {
	root := t.TempDir()
	sessionDir := filepath.Join(root, "preexisting")
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sessionDir, "a.txt"), []byte("already on disk"), 0644); err != nil {
		t.Fatal(err)
	}

	w, registry := newTestWatcher(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	waitForIndex(t, registry, "preexisting")
}

func TestWatcher_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-yet")
	w, _ := newTestWatcher(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}

func TestSessionFor(t *testing.T) {
	w := &Watcher{root: "/watch"}
	tests := []struct {
		path string
		want string
	}{
		{"/watch/s1", "s1"},
		{"/watch/s1/file.txt", "s1"},
		{"/watch/s1/nested/deep.pdf", "s1"},
		{"/watch", ""},
		{"/elsewhere/s1/file.txt", ""},
	}
	for _, tt := range tests {
		if got := w.sessionFor(tt.path); got != tt.want {
			t.Errorf("sessionFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
