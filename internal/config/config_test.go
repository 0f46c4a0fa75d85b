package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9000
embedding:
  model_path: ./models/test.onnx
  dimensions: 128
llm:
  provider: ollama
  model: llama3
sessions:
  ttl_minutes: 30
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("expected debug true")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Errorf("server config: %+v", cfg.Server)
	}
	if cfg.Embedding.Dimensions != 128 {
		t.Errorf("dimensions: %d", cfg.Embedding.Dimensions)
	}
	// "./" paths resolve relative to the config directory.
	want := filepath.Join(dir, "models/test.onnx")
	if cfg.Embedding.ModelPath != want {
		t.Errorf("model path: got %q, want %q", cfg.Embedding.ModelPath, want)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3" {
		t.Errorf("llm config: %+v", cfg.LLM)
	}
	if cfg.Sessions.TTL() != 30*time.Minute {
		t.Errorf("ttl: %v", cfg.Sessions.TTL())
	}
}

func TestLoad_missing(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	if cfg.Server.Port != 8000 {
		t.Errorf("port: %d", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("dimensions: %d", cfg.Embedding.Dimensions)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("top_k: %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.KeywordWeight+cfg.Retrieval.SemanticWeight != 1.0 {
		t.Errorf("weights: %f/%f", cfg.Retrieval.KeywordWeight, cfg.Retrieval.SemanticWeight)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("provider: %s", cfg.LLM.Provider)
	}
	if cfg.Sessions.MaxHistoryTurns != 20 {
		t.Errorf("max history turns: %d", cfg.Sessions.MaxHistoryTurns)
	}
}

func TestApplyDefaults_keepsExplicitWeights(t *testing.T) {
	cfg := Config{}
	cfg.Retrieval.KeywordWeight = 1.0
	ApplyDefaults(&cfg)
	if cfg.Retrieval.SemanticWeight != 0 {
		t.Errorf("semantic weight overwritten: %f", cfg.Retrieval.SemanticWeight)
	}
}
