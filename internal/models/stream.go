package models

// ChunkType tags a streamed answer fragment so the caller can decide rendering.
type ChunkType string

const (
	// ChunkContent is answer text produced by retrieval or conversation.
	ChunkContent ChunkType = "content"
	// ChunkDiagnostic is an in-band notice (e.g. retrieval failed, falling back).
	ChunkDiagnostic ChunkType = "diagnostic"
	// ChunkClarify asks the user to rephrase structurally non-prose input.
	ChunkClarify ChunkType = "clarify"
)

// StreamChunk is one element of a streamed answer. Chunks arrive in generation
// order; the stream is finite and not restartable.
type StreamChunk struct {
	Type ChunkType `json:"type"`
	Text string    `json:"text"`
}

// Content returns a content chunk with the given text.
func Content(text string) StreamChunk {
	return StreamChunk{Type: ChunkContent, Text: text}
}

// Diagnostic returns a diagnostic chunk with the given text.
func Diagnostic(text string) StreamChunk {
	return StreamChunk{Type: ChunkDiagnostic, Text: text}
}

// Clarify returns a clarifying chunk with the given text.
func Clarify(text string) StreamChunk {
	return StreamChunk{Type: ChunkClarify, Text: text}
}
