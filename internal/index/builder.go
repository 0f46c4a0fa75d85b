package index

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/ragvision/ragvision/internal/config"
	"github.com/ragvision/ragvision/internal/embedding"
	"github.com/ragvision/ragvision/internal/models"
)

// Builder builds Indexes from extracted documents. The build happens entirely
// off to the side; the finished Index is installed with a single swap, so a
// concurrent query never observes a partially built index.
type Builder struct {
	embedder embedding.Embedder
	cfg      *config.RetrievalConfig
	chunker  *Chunker
}

// NewBuilder creates a builder using the given embedder and retrieval settings.
func NewBuilder(embedder embedding.Embedder, cfg *config.RetrievalConfig) *Builder {
	return &Builder{
		embedder: embedder,
		cfg:      cfg,
		chunker:  NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
	}
}

// keywordDoc is the shape indexed into bleve for each chunk.
type keywordDoc struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// Build chunks, embeds, and keyword-indexes docs into a new Index.
// Returns an error if docs is empty or any step fails; no partial Index is returned.
func (b *Builder) Build(ctx context.Context, docs []models.ExtractedDocument) (*Index, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to index")
	}

	var chunks []*models.DocumentChunk
	for _, doc := range docs {
		chunks = append(chunks, b.chunker.Chunk(doc)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("documents contain no indexable text")
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	embeddings, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	keyword, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	byID := make(map[string]*models.DocumentChunk, len(chunks))
	for _, ch := range chunks {
		byID[ch.ID] = ch
		if err := keyword.Index(ch.ID, keywordDoc{Content: ch.Content, Filename: ch.Filename}); err != nil {
			_ = keyword.Close()
			return nil, fmt.Errorf("keyword index chunk %s: %w", ch.ID, err)
		}
	}

	return &Index{
		chunks:         chunks,
		byID:           byID,
		keyword:        keyword,
		docs:           len(docs),
		embedder:       b.embedder,
		keywordWeight:  b.cfg.KeywordWeight,
		semanticWeight: b.cfg.SemanticWeight,
		minScore:       b.cfg.MinScore,
	}, nil
}
