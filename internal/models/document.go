// Package models defines core data structures for uploads, extracted documents, and stream events.
package models

import "time"

// UploadedFile is one file supplied by the transport layer for ingestion.
// Data is read-only input; the engine does not retain it after indexing.
type UploadedFile struct {
	Filename    string
	ContentKind string // declared MIME type, e.g. "application/pdf", "image/png", "text/plain"
	Data        []byte
}

// ExtractedDocument is the text pulled out of one uploaded file.
// Only created when extraction yields non-empty text.
type ExtractedDocument struct {
	Text     string
	Filename string
}

// DocumentChunk is an overlapping window of an extracted document, the unit
// of embedding and retrieval.
type DocumentChunk struct {
	ID         string
	Filename   string
	Content    string
	ChunkIndex int
	Embedding  []float32
}

// RetrievedChunk is a chunk returned by a retrieval query, with its fused score.
type RetrievedChunk struct {
	Chunk *DocumentChunk
	Score float64
}

// SessionInfo is a point-in-time view of one live session for the status endpoint.
type SessionInfo struct {
	ID        string    `json:"id"`
	Turns     int       `json:"turns"`
	HasIndex  bool      `json:"has_index"`
	Documents int       `json:"documents,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
