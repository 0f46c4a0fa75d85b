// Package session provides the process-wide registry of conversation sessions.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ragvision/ragvision/internal/index"
	"github.com/ragvision/ragvision/internal/llm"
)

// Session is one isolated unit of conversation plus an optional private
// document index, identified by an opaque caller-supplied token.
//
// The index is held behind an atomic pointer: ingestion builds a new index
// fully off to the side and installs it with a single swap, so a concurrent
// query observes either the old index or the new one, never a partial build.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex // guards history
	history  []llm.Message
	maxTurns int

	index atomic.Pointer[index.Index]
}

func newSession(id string, maxTurns int) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		maxTurns:  maxTurns,
	}
}

// History returns a copy of the conversation history in turn order.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// AppendTurn records one completed user/assistant exchange, dropping the
// oldest turns beyond the configured bound.
func (s *Session) AppendTurn(userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleAssistant, Content: assistantText},
	)
	if max := s.maxTurns * 2; max > 0 && len(s.history) > max {
		s.history = s.history[len(s.history)-max:]
	}
}

// Turns returns the number of completed exchanges in the history.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) / 2
}

// Index returns the session's document index, or nil when none has been built.
func (s *Session) Index() *index.Index {
	return s.index.Load()
}

// SetIndex replaces the session's document index wholesale.
func (s *Session) SetIndex(idx *index.Index) {
	s.index.Store(idx)
}
