// Package llm defines the conversational completion boundary and its providers.
package llm

import "context"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history in provider-agnostic form.
type Message struct {
	Role    string
	Content string
}

// Event is one output event from a streaming completion. Text may be empty
// for events carrying no textual content (e.g. tool invocations); consumers
// skip those without treating them as errors. Err terminates the stream.
type Event struct {
	Text string
	Err  error
}

// Request is a streaming completion request. History carries prior turns;
// Query is the new user input. System may be empty.
type Request struct {
	System  string
	History []Message
	Query   string
}

// Provider streams completions from a language model. The returned channel is
// closed when the model signals it has no more output or after an Err event.
type Provider interface {
	Name() string
	StreamChat(ctx context.Context, req Request) (<-chan Event, error)
}
