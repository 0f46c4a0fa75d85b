// Package index builds and queries per-session document indexes.
package index

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ragvision/ragvision/internal/models"
)

// Chunker splits extracted text into overlapping word-based chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits doc into DocumentChunks with overlapping windows, tagged with
// the source filename. Returns nil for whitespace-only text.
func (c *Chunker) Chunk(doc models.ExtractedDocument) []*models.DocumentChunk {
	words := strings.Fields(doc.Text)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	var chunks []*models.DocumentChunk
	chunkIndex := 0
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, &models.DocumentChunk{
			ID:         fmt.Sprintf("%s_%s", doc.Filename, uuid.New().String()[:8]),
			Filename:   doc.Filename,
			Content:    strings.Join(words[i:end], " "),
			ChunkIndex: chunkIndex,
		})
		chunkIndex++
		if end >= len(words) {
			break
		}
	}
	return chunks
}
