// Package ollama implements the llm.Provider boundary over the Ollama HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ragvision/ragvision/internal/llm"
)

const defaultModel = "llama3"

// Provider streams chat completions from a local Ollama server.
type Provider struct {
	host   string
	model  string
	temp   float64
	client *http.Client
}

// NewProvider creates an Ollama provider for the given host
// (e.g. "http://localhost:11434"). model may be empty to use the default.
func NewProvider(host, model string, temperature float64) (*Provider, error) {
	if host == "" {
		return nil, errors.New("ollama provider requires a host")
	}
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		host:   host,
		model:  model,
		temp:   temperature,
		client: &http.Client{Timeout: 300 * time.Second},
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "ollama"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// StreamChat posts to /api/chat with stream enabled and forwards each NDJSON
// message fragment as an event.
func (p *Provider) StreamChat(ctx context.Context, req llm.Request) (<-chan llm.Event, error) {
	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, msg := range req.History {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Query})

	body, err := json.Marshal(chatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   true,
		Options:  map[string]any{"temperature": p.temp},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, msg)
	}

	events := make(chan llm.Event)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		dec := json.NewDecoder(resp.Body)
		for {
			var chunk chatResponse
			if err := dec.Decode(&chunk); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				select {
				case events <- llm.Event{Err: fmt.Errorf("ollama stream: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case events <- llm.Event{Text: chunk.Message.Content}:
			case <-ctx.Done():
				return
			}
			if chunk.Done {
				return
			}
		}
	}()
	return events, nil
}
