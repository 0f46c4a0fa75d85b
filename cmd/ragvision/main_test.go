package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ragvision/ragvision/internal/config"
	"github.com/ragvision/ragvision/internal/embedding"
	"github.com/ragvision/ragvision/internal/extract"
	"github.com/ragvision/ragvision/internal/index"
	"github.com/ragvision/ragvision/internal/ingest"
	"github.com/ragvision/ragvision/internal/llm"
	"github.com/ragvision/ragvision/internal/router"
	"github.com/ragvision/ragvision/internal/server"
	"github.com/ragvision/ragvision/internal/session"
)

func startTestServer(t *testing.T, provider llm.Provider) (*httptest.Server, *session.Registry) {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	registry := session.NewRegistry(&cfg.Sessions)
	builder := index.NewBuilder(embedding.NewMockEmbedder(8), &cfg.Retrieval)
	pipeline := ingest.NewPipeline(extract.NewExtractor(nil), builder, registry, zap.NewNop())
	rt := router.NewRouter(registry, provider, nil, cfg.Retrieval.TopK, zap.NewNop())
	srv := server.NewServer(rt, pipeline, registry, cfg, zap.NewNop())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		registry.Close()
	})
	return ts, registry
}

func TestUploadFiles_DeclaresContentKind(t *testing.T) {
	ts, registry := startTestServer(t, &llm.MockProvider{})

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("The capital of Testland is Foo."), 0644); err != nil {
		t.Fatal(err)
	}

	if err := uploadFiles(ts.URL, "cli-upload", []string{path}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !registry.HasIndex("cli-upload") {
		t.Error("uploaded file was not ingested into an index")
	}
}

func TestUploadFiles_MissingFile(t *testing.T) {
	ts, _ := startTestServer(t, &llm.MockProvider{})
	err := uploadFiles(ts.URL, "cli-upload", []string{filepath.Join(t.TempDir(), "absent.txt")})
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestStreamQuery(t *testing.T) {
	provider := &llm.MockProvider{Events: []llm.Event{{Text: "Hello from the model."}}}
	ts, _ := startTestServer(t, provider)

	if err := streamQuery(ts.URL, "cli-chat", "say hello"); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(provider.Requests) != 1 {
		t.Errorf("provider requests: %d", len(provider.Requests))
	}
}
