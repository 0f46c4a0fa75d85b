package ingest

import (
	"context"
	"testing"

	"github.com/ragvision/ragvision/internal/config"
	"github.com/ragvision/ragvision/internal/embedding"
	"github.com/ragvision/ragvision/internal/extract"
	"github.com/ragvision/ragvision/internal/index"
	"github.com/ragvision/ragvision/internal/models"
	"github.com/ragvision/ragvision/internal/ocr"
	"github.com/ragvision/ragvision/internal/session"
	"go.uber.org/zap"
)

func testPipeline(engine ocr.Engine) (*Pipeline, *session.Registry) {
	registry := session.NewRegistry(&config.SessionsConfig{TTLMinutes: 60, SweepMinutes: 10, MaxHistoryTurns: 10})
	builder := index.NewBuilder(embedding.NewMockEmbedder(8), &config.RetrievalConfig{
		ChunkSize: 50, ChunkOverlap: 10, KeywordWeight: 0.5, SemanticWeight: 0.5,
	})
	p := NewPipeline(extract.NewExtractor(engine), builder, registry, zap.NewNop())
	return p, registry
}

func textFile(name, content string) models.UploadedFile {
	return models.UploadedFile{Filename: name, ContentKind: "text/plain", Data: []byte(content)}
}

func TestIngest_installsIndex(t *testing.T) {
	p, registry := testPipeline(nil)
	ok := p.Ingest(context.Background(), "s1", []models.UploadedFile{
		textFile("geo.txt", "The capital of Testland is Foo."),
	})
	if !ok {
		t.Fatal("ingest reported failure")
	}
	idx, found := registry.Index("s1")
	if !found {
		t.Fatal("no index installed")
	}
	if idx.DocumentCount() != 1 {
		t.Errorf("documents: %d", idx.DocumentCount())
	}
}

func TestIngest_skipsBadFilesKeepsGood(t *testing.T) {
	p, registry := testPipeline(nil)
	ok := p.Ingest(context.Background(), "s1", []models.UploadedFile{
		{Filename: "bad.pdf", ContentKind: "application/pdf", Data: []byte("not a pdf")},
		{Filename: "blob.bin", ContentKind: "application/octet-stream", Data: []byte{1, 2, 3}},
		textFile("good.txt", "useful content survives the batch"),
	})
	if !ok {
		t.Fatal("batch with one good file should succeed")
	}
	idx, _ := registry.Index("s1")
	if idx.DocumentCount() != 1 {
		t.Errorf("documents: %d", idx.DocumentCount())
	}
}

func TestIngest_allFailedLeavesPriorIndex(t *testing.T) {
	p, registry := testPipeline(nil)
	if !p.Ingest(context.Background(), "s1", []models.UploadedFile{textFile("a.txt", "original content")}) {
		t.Fatal("setup ingest failed")
	}
	prior, _ := registry.Index("s1")

	ok := p.Ingest(context.Background(), "s1", []models.UploadedFile{
		{Filename: "bad.pdf", ContentKind: "application/pdf", Data: []byte("garbage")},
		{Filename: "blob.bin", ContentKind: "application/octet-stream", Data: []byte{9}},
	})
	if ok {
		t.Error("all-failed batch reported success")
	}
	got, found := registry.Index("s1")
	if !found || got != prior {
		t.Error("prior index was disturbed by failed ingestion")
	}
}

func TestIngest_replacementNotMerge(t *testing.T) {
	p, registry := testPipeline(nil)
	ctx := context.Background()
	if !p.Ingest(ctx, "s1", []models.UploadedFile{textFile("a.txt", "alpha"), textFile("b.txt", "beta")}) {
		t.Fatal("first ingest failed")
	}
	if !p.Ingest(ctx, "s1", []models.UploadedFile{textFile("c.txt", "gamma")}) {
		t.Fatal("second ingest failed")
	}
	idx, _ := registry.Index("s1")
	if idx.DocumentCount() != 1 {
		t.Errorf("second index should reflect only the second batch, documents: %d", idx.DocumentCount())
	}
}

func TestIngest_concurrentQueriesSeeCompleteIndex(t *testing.T) {
	p, registry := testPipeline(nil)
	ctx := context.Background()
	if !p.Ingest(ctx, "s1", []models.UploadedFile{
		textFile("a.txt", "The capital of Testland is Foo."),
	}) {
		t.Fatal("seed ingest failed")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 25; i++ {
			p.Ingest(ctx, "s1", []models.UploadedFile{
				textFile("b.txt", "The capital of Testland is Foo. Revision follows."),
			})
		}
	}()

	// While batches replace the index, every observed index must be a fully
	// built one: old or new, never partial.
	for {
		idx, ok := registry.Index("s1")
		if !ok {
			t.Fatal("index vanished mid-ingestion")
		}
		if idx.DocumentCount() != 1 {
			t.Fatalf("observed partially built index: %d documents", idx.DocumentCount())
		}
		if _, err := idx.Retrieve(ctx, "capital of Testland", 2); err != nil {
			t.Fatalf("retrieve during ingestion: %v", err)
		}
		select {
		case <-done:
			return
		default:
		}
	}
}

func TestIngest_emptyBatch(t *testing.T) {
	p, registry := testPipeline(nil)
	if p.Ingest(context.Background(), "s1", nil) {
		t.Error("empty batch reported success")
	}
	if registry.HasIndex("s1") {
		t.Error("index created from empty batch")
	}
}

func TestIngest_imageViaOCR(t *testing.T) {
	p, registry := testPipeline(&ocr.MockEngine{Text: "text recognized in screenshot"})
	ok := p.Ingest(context.Background(), "s1", []models.UploadedFile{
		{Filename: "shot.png", ContentKind: "image/png", Data: []byte{0x89, 0x50}},
	})
	if !ok {
		t.Fatal("image ingest failed")
	}
	if !registry.HasIndex("s1") {
		t.Error("no index from OCR text")
	}
}
