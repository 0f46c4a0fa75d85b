// Package config provides configuration loading and structs for the RAGVision server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	OCR       OCRConfig       `yaml:"ocr"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddingConfig holds ONNX embedder settings.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// RetrievalConfig holds chunking and document-grounded retrieval settings.
type RetrievalConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	TopK           int     `yaml:"top_k"`
	MinScore       float64 `yaml:"min_score"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
}

// LLMConfig holds conversational completion engine settings.
type LLMConfig struct {
	Provider     string  `yaml:"provider"` // "gemini" or "ollama"
	Model        string  `yaml:"model"`
	GeminiAPIKey string  `yaml:"gemini_api_key"` // falls back to GEMINI_API_KEY env var
	OllamaHost   string  `yaml:"ollama_host"`
	Temperature  float64 `yaml:"temperature"`
}

// OCRConfig holds OCR engine settings.
type OCRConfig struct {
	Languages []string `yaml:"languages"`
}

// SessionsConfig holds session store capacity and eviction settings.
type SessionsConfig struct {
	TTLMinutes      int `yaml:"ttl_minutes"`
	SweepMinutes    int `yaml:"sweep_minutes"`
	MaxHistoryTurns int `yaml:"max_history_turns"`
}

// TTL returns the session expiry as a duration.
func (s *SessionsConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// SweepInterval returns the expired-entry sweep interval as a duration.
func (s *SessionsConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepMinutes) * time.Minute
}

// WatchConfig holds drop-directory ingestion settings. When Directory is set,
// files written under <Directory>/<session_id>/ are ingested into that session.
type WatchConfig struct {
	Directory string `yaml:"directory"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	if cfg.Watch.Directory != "" {
		cfg.Watch.Directory = expandPath(cfg.Watch.Directory, configDir)
	}
	if cfg.LLM.GeminiAPIKey == "" {
		cfg.LLM.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
