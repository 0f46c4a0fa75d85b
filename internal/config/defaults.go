package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/ragvision/models/bge-small-en-v1.5.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 256
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 32
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Retrieval.KeywordWeight == 0 && cfg.Retrieval.SemanticWeight == 0 {
		cfg.Retrieval.KeywordWeight = 0.3
		cfg.Retrieval.SemanticWeight = 0.7
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.LLM.OllamaHost == "" {
		cfg.LLM.OllamaHost = "http://localhost:11434"
	}
	if cfg.OCR.Languages == nil {
		cfg.OCR.Languages = []string{"eng"}
	}
	if cfg.Sessions.TTLMinutes == 0 {
		cfg.Sessions.TTLMinutes = 60
	}
	if cfg.Sessions.SweepMinutes == 0 {
		cfg.Sessions.SweepMinutes = 10
	}
	if cfg.Sessions.MaxHistoryTurns == 0 {
		cfg.Sessions.MaxHistoryTurns = 20
	}
}
