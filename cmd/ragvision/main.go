// Package main is the RAGVision CLI entry point.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ragvision/ragvision/internal/config"
	"github.com/ragvision/ragvision/internal/embedding"
	"github.com/ragvision/ragvision/internal/extract"
	"github.com/ragvision/ragvision/internal/index"
	"github.com/ragvision/ragvision/internal/ingest"
	"github.com/ragvision/ragvision/internal/llm"
	"github.com/ragvision/ragvision/internal/llm/gemini"
	"github.com/ragvision/ragvision/internal/llm/ollama"
	"github.com/ragvision/ragvision/internal/models"
	"github.com/ragvision/ragvision/internal/ocr"
	"github.com/ragvision/ragvision/internal/router"
	"github.com/ragvision/ragvision/internal/server"
	"github.com/ragvision/ragvision/internal/session"
	"github.com/ragvision/ragvision/internal/watcher"
	"github.com/ragvision/ragvision/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ragvision/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("ragvision version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (extraction outcomes, routing, watch events)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if cfg.Watch.Directory != "" {
		watchSvc = watcher.NewWatcher(cfg.Watch.Directory, components.Pipeline, logger)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Router,
		components.Pipeline,
		components.Registry,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// runAsk sends one query (and optionally files) to a running server and
// prints the streamed answer.
func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8000", "server URL")
	sessionID := fs.String("session", "cli", "session id")
	var filePaths stringList
	fs.Var(&filePaths, "file", "file to upload before asking (repeatable)")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" && len(filePaths) == 0 {
		fmt.Println("Usage: ragvision ask [flags] <question>")
		os.Exit(1)
	}

	if len(filePaths) > 0 {
		if err := uploadFiles(*serverURL, *sessionID, filePaths); err != nil {
			fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
			os.Exit(1)
		}
		if query == "" {
			fmt.Println("Files uploaded.")
			return
		}
	}

	if err := streamQuery(*serverURL, *sessionID, query); err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func uploadFiles(serverURL, sessionID string, paths []string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("session_id", sessionID); err != nil {
		return err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		// CreateFormFile always declares application/octet-stream, which the
		// server would refuse to extract; declare the real kind per file.
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, filepath.Base(path)))
		h.Set("Content-Type", extract.KindForPath(path))
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := part.Write(data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	resp, err := http.Post(serverURL+"/api/v1/chat", w.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err == nil && out.Message != "" {
		fmt.Println(out.Message)
	}
	return nil
}

func streamQuery(serverURL, sessionID, query string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("session_id", sessionID); err != nil {
		return err
	}
	if err := w.WriteField("query", query); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	resp, err := http.Post(serverURL+"/api/v1/chat", w.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var chunk models.StreamChunk
		if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
			continue
		}
		switch chunk.Type {
		case models.ChunkContent:
			fmt.Print(chunk.Text)
		default:
			fmt.Fprintf(os.Stderr, "\n[%s] %s\n", chunk.Type, chunk.Text)
		}
	}
	fmt.Println()
	return scanner.Err()
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8000", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Status failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(status)
}

// Components holds initialized services.
type Components struct {
	Embedder embedding.Embedder
	OCR      ocr.Engine
	Registry *session.Registry
	Pipeline *ingest.Pipeline
	Router   *router.Router
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.OCR != nil {
		_ = c.OCR.Close()
	}
	if c.Registry != nil {
		c.Registry.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX embedder unavailable, using mock embeddings",
			zap.String("model_path", cfg.Embedding.ModelPath), zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	var ocrEngine ocr.Engine
	tesseract, err := ocr.NewTesseractEngine(cfg.OCR.Languages)
	if err != nil {
		logger.Warn("OCR unavailable, image uploads will be skipped", zap.Error(err))
	} else {
		ocrEngine = tesseract
	}

	provider, err := buildProvider(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	logger.Info("LLM provider initialized",
		zap.String("provider", provider.Name()), zap.String("model", cfg.LLM.Model))

	registry := session.NewRegistry(&cfg.Sessions)
	builder := index.NewBuilder(embedder, &cfg.Retrieval)
	pipeline := ingest.NewPipeline(extract.NewExtractor(ocrEngine), builder, registry, logger)
	rt := router.NewRouter(registry, provider, nil, cfg.Retrieval.TopK, logger)

	return &Components{
		Embedder: embedder,
		OCR:      ocrEngine,
		Registry: registry,
		Pipeline: pipeline,
		Router:   rt,
	}, nil
}

func buildProvider(cfg *config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key (config llm.gemini_api_key or GEMINI_API_KEY)")
		}
		return gemini.NewProvider(cfg.GeminiAPIKey, cfg.Model, cfg.Temperature)
	case "ollama":
		return ollama.NewProvider(cfg.OllamaHost, cfg.Model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (use gemini or ollama)", cfg.Provider)
	}
}

func printUsage() {
	fmt.Println(`ragvision - Session-aware retrieval-augmented chat engine

Usage:
  ragvision server [flags]         Start the HTTP server
  ragvision ask [flags] <question> Ask a running server (streams the answer)
  ragvision status [flags]         Show live session and config status
  ragvision version                Show version
  ragvision help                   Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/ragvision/config.yaml)
  --debug            Enable debug logging (extraction outcomes, routing, watch events)

Ask Flags:
  --server string    Server URL (default: http://localhost:8000)
  --session string   Session id (default: "cli")
  --file string      File to upload before asking (repeatable)

Status Flags:
  --server string    Server URL (default: http://localhost:8000)

Examples:
  ragvision server
  ragvision ask what can you do
  ragvision ask --session demo --file report.pdf
  ragvision ask --session demo what does the report conclude
  ragvision status`)
}
