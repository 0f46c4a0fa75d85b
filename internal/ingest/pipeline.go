// Package ingest turns uploaded files into a session's document index.
package ingest

import (
	"context"

	"github.com/ragvision/ragvision/internal/extract"
	"github.com/ragvision/ragvision/internal/index"
	"github.com/ragvision/ragvision/internal/models"
	"github.com/ragvision/ragvision/internal/session"
	"go.uber.org/zap"
)

// Pipeline consumes a batch of uploaded files for one session, extracts text
// from each, builds a searchable index from the successful extractions, and
// installs it into the session registry. It is the sole mutator of a session's
// document index.
type Pipeline struct {
	extractor *extract.Extractor
	builder   *index.Builder
	registry  *session.Registry
	logger    *zap.Logger
}

// NewPipeline creates an ingestion pipeline with the given dependencies.
func NewPipeline(extractor *extract.Extractor, builder *index.Builder, registry *session.Registry, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		builder:   builder,
		registry:  registry,
		logger:    logger,
	}
}

// Ingest extracts text from each file and, when at least one file yields text,
// replaces sessionID's index wholesale with one built from this batch.
//
// Per-file failures are logged and skipped; they never abort the batch.
// Returns false when no file produced text or the index build failed; the
// session's pre-existing index (if any) is left untouched in that case.
func (p *Pipeline) Ingest(ctx context.Context, sessionID string, files []models.UploadedFile) bool {
	var docs []models.ExtractedDocument
	for _, f := range files {
		res := p.extractor.Extract(ctx, f.Data, f.ContentKind)
		if !res.OK() {
			p.logger.Warn("file yielded no text",
				zap.String("session_id", sessionID),
				zap.String("filename", f.Filename),
				zap.String("content_kind", f.ContentKind),
				zap.String("outcome", res.Outcome.String()),
				zap.Error(res.Err),
			)
			continue
		}
		p.logger.Debug("file extracted",
			zap.String("session_id", sessionID),
			zap.String("filename", f.Filename),
			zap.Int("text_len", len(res.Text)),
		)
		docs = append(docs, models.ExtractedDocument{Text: res.Text, Filename: f.Filename})
	}

	if len(docs) == 0 {
		p.logger.Warn("no documents extracted from batch",
			zap.String("session_id", sessionID),
			zap.Int("files", len(files)),
		)
		return false
	}

	idx, err := p.builder.Build(ctx, docs)
	if err != nil {
		p.logger.Error("index build failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return false
	}
	p.registry.SetIndex(sessionID, idx)
	p.logger.Info("session index installed",
		zap.String("session_id", sessionID),
		zap.Int("documents", idx.DocumentCount()),
		zap.Int("chunks", idx.ChunkCount()),
	)
	return true
}
