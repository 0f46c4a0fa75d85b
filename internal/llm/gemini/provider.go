// Package gemini implements the llm.Provider boundary over the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/ragvision/ragvision/internal/llm"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.5-flash"

// Provider streams chat completions from Gemini.
type Provider struct {
	apiKey      string
	model       string
	temperature float32
}

// NewProvider creates a Gemini provider. model may be empty to use the default.
func NewProvider(apiKey, model string, temperature float64) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini provider requires an API key")
	}
	if model == "" {
		model = defaultModel
	}
	return &Provider{apiKey: apiKey, model: model, temperature: float32(temperature)}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// StreamChat opens a chat session with the request history and streams the
// model's reply. Non-text response parts yield events with empty Text.
func (p *Provider) StreamChat(ctx context.Context, req llm.Request) (<-chan llm.Event, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(p.model)
	temp := p.temperature
	model.Temperature = &temp
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	cs := model.StartChat()
	for _, msg := range req.History {
		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	iter := cs.SendMessageStream(ctx, genai.Text(req.Query))
	events := make(chan llm.Event)
	go func() {
		defer close(events)
		defer client.Close()
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				select {
				case events <- llm.Event{Err: fmt.Errorf("gemini stream: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			for _, ev := range responseEvents(resp) {
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

// responseEvents flattens one streamed response into events, one per part.
// Parts without text (function calls, blobs) become empty-text events.
func responseEvents(resp *genai.GenerateContentResponse) []llm.Event {
	var events []llm.Event
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				events = append(events, llm.Event{Text: string(text)})
			} else {
				events = append(events, llm.Event{})
			}
		}
	}
	return events
}
