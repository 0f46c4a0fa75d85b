package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/ragvision/ragvision/internal/embedding"
	"github.com/ragvision/ragvision/internal/models"
	"github.com/ragvision/ragvision/pkg/utils"
)

// Index is an immutable, queryable structure over one session's extracted
// documents. It is built wholesale by Builder and never mutated afterwards, so
// concurrent retrieval needs no locking.
type Index struct {
	chunks  []*models.DocumentChunk
	byID    map[string]*models.DocumentChunk
	keyword bleve.Index
	docs    int

	embedder       embedding.Embedder
	keywordWeight  float64
	semanticWeight float64
	minScore       float64
}

// DocumentCount returns the number of extracted documents the index was built from.
func (x *Index) DocumentCount() int {
	return x.docs
}

// ChunkCount returns the number of indexed chunks.
func (x *Index) ChunkCount() int {
	return len(x.chunks)
}

// Retrieve returns the topK chunks most relevant to query, scored by fusing
// keyword (BM25 over the in-memory bleve index) and semantic (inner product
// over unit embeddings) signals.
func (x *Index) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		topK = 4
	}

	var keywordScores map[string]float64
	if x.keywordWeight > 0 {
		req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
		req.Size = len(x.chunks)
		res, err := x.keyword.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("keyword search: %w", err)
		}
		raw := make(map[string]float64, len(res.Hits))
		for _, hit := range res.Hits {
			raw[hit.ID] = hit.Score
		}
		keywordScores = normalizeScores(raw)
	}

	var semanticScores map[string]float64
	if x.semanticWeight > 0 {
		queryEmbedding, err := x.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		raw := make(map[string]float64, len(x.chunks))
		for _, ch := range x.chunks {
			raw[ch.ID] = utils.InnerProduct(queryEmbedding, ch.Embedding)
		}
		semanticScores = normalizeScores(raw)
	}

	fused := fuseScores(keywordScores, semanticScores, x.keywordWeight, x.semanticWeight)

	results := make([]models.RetrievedChunk, 0, len(fused))
	for id, score := range fused {
		if score < x.minScore {
			continue
		}
		results = append(results, models.RetrievedChunk{Chunk: x.byID[id], Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Close releases the in-memory keyword index. Safe to skip; a replaced Index
// is reclaimed by the garbage collector once no stream holds it.
func (x *Index) Close() error {
	if x.keyword != nil {
		return x.keyword.Close()
	}
	return nil
}
