// Package router turns a user query into an ordered stream of answer chunks,
// choosing between document-grounded retrieval and plain conversation based on
// whether the session has an index.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ragvision/ragvision/internal/index"
	"github.com/ragvision/ragvision/internal/llm"
	"github.com/ragvision/ragvision/internal/models"
	"github.com/ragvision/ragvision/internal/session"
)

const clarifyMessage = "Unsupported input format. Please enter a clear text question."

// Router answers queries for sessions held in a registry. It is the only
// writer of a session's conversation history.
type Router struct {
	registry  *session.Registry
	provider  llm.Provider
	heuristic ShapeHeuristic
	topK      int
	logger    *zap.Logger
}

// NewRouter builds a Router. A nil heuristic selects PlainText.
func NewRouter(registry *session.Registry, provider llm.Provider, heuristic ShapeHeuristic, topK int, logger *zap.Logger) *Router {
	if heuristic == nil {
		heuristic = PlainText
	}
	return &Router{
		registry:  registry,
		provider:  provider,
		heuristic: heuristic,
		topK:      topK,
		logger:    logger,
	}
}

// Answer streams the response to query for the given session. The channel
// yields chunks in generation order and is closed when the answer is complete
// or ctx is cancelled. The stream is finite and not restartable.
func (r *Router) Answer(ctx context.Context, sessionID, query string) <-chan models.StreamChunk {
	out := make(chan models.StreamChunk)
	go func() {
		defer close(out)
		if !r.heuristic(query) {
			emit(ctx, out, models.Clarify(clarifyMessage))
			return
		}
		r.answer(ctx, out, sessionID, query)
	}()
	return out
}

func (r *Router) answer(ctx context.Context, out chan<- models.StreamChunk, sessionID, query string) {
	sess := r.registry.Session(sessionID)
	var acc strings.Builder

	if idx := sess.Index(); idx != nil {
		err := r.streamDocumentAnswer(ctx, idx, query, out, &acc)
		if err == nil {
			r.record(sess, query, acc.String())
			return
		}
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn("document answer failed, falling back to chat",
			zap.String("session_id", sessionID), zap.Error(err))
		notice := fmt.Sprintf("Error retrieving information from documents: %v. Falling back to regular chatbot.", err)
		if !emit(ctx, out, models.Diagnostic(notice)) {
			return
		}
	}

	if err := r.streamChatAnswer(ctx, sess, query, out, &acc); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("chat answer failed",
			zap.String("session_id", sessionID), zap.Error(err))
		emit(ctx, out, models.Diagnostic(fmt.Sprintf("An unexpected error occurred: %v", err)))
		return
	}
	r.record(sess, query, acc.String())
}

// streamDocumentAnswer retrieves excerpts from the session index and streams a
// grounded completion. Any error triggers a fallback in the caller.
func (r *Router) streamDocumentAnswer(ctx context.Context, idx *index.Index, query string, out chan<- models.StreamChunk, acc *strings.Builder) error {
	chunks, err := idx.Retrieve(ctx, query, r.topK)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}
	if len(chunks) == 0 {
		return errors.New("no relevant document excerpts found")
	}
	return r.streamCompletion(ctx, llm.BuildGroundedRequest(query, chunks), out, acc)
}

func (r *Router) streamChatAnswer(ctx context.Context, sess *session.Session, query string, out chan<- models.StreamChunk, acc *strings.Builder) error {
	req := llm.Request{
		System:  llm.SystemPrompt,
		History: sess.History(),
		Query:   query,
	}
	return r.streamCompletion(ctx, req, out, acc)
}

// streamCompletion forwards textual model events as content chunks. Events
// without text are skipped without error.
func (r *Router) streamCompletion(ctx context.Context, req llm.Request, out chan<- models.StreamChunk, acc *strings.Builder) error {
	events, err := r.provider.StreamChat(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", r.provider.Name(), err)
	}
	for ev := range events {
		if ev.Err != nil {
			return ev.Err
		}
		if ev.Text == "" {
			continue
		}
		if !emit(ctx, out, models.Content(ev.Text)) {
			return ctx.Err()
		}
		acc.WriteString(ev.Text)
	}
	return nil
}

// record appends the completed exchange to the session's history. Exchanges
// that produced no answer text are not recorded.
func (r *Router) record(sess *session.Session, query, answer string) {
	if answer == "" {
		return
	}
	sess.AppendTurn(query, answer)
}

func emit(ctx context.Context, out chan<- models.StreamChunk, chunk models.StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
