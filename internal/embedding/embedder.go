// Package embedding provides text embedding for document retrieval.
package embedding

import "context"

// Embedder produces unit-norm vector embeddings for text. The engine treats
// the embedding model as opaque.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
