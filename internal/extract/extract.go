// Package extract provides text extraction from uploaded file content.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragvision/ragvision/internal/ocr"
)

// Outcome classifies the result of one extraction attempt.
type Outcome int

const (
	// OutcomeText means extraction produced usable text.
	OutcomeText Outcome = iota
	// OutcomeEmpty means the file was processed but yielded no text.
	OutcomeEmpty
	// OutcomeUnsupported means the declared content kind is not handled.
	OutcomeUnsupported
	// OutcomeFailed means the content could not be parsed.
	OutcomeFailed
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeText:
		return "text"
	case OutcomeEmpty:
		return "empty"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of extracting one file. Text is non-empty only when
// Outcome is OutcomeText. Err carries the cause for OutcomeFailed; it is
// diagnostic, never propagated as a hard failure.
type Result struct {
	Text    string
	Outcome Outcome
	Err     error
}

// OK reports whether extraction produced usable text.
func (r Result) OK() bool {
	return r.Outcome == OutcomeText
}

// Extractor dispatches extraction by declared content kind. The zero Extractor
// (no OCR engine) handles everything except images.
type Extractor struct {
	ocr ocr.Engine // may be nil; image extraction then fails to empty
}

// NewExtractor returns an Extractor using the given OCR engine for image
// content. engine may be nil to disable image extraction.
func NewExtractor(engine ocr.Engine) *Extractor {
	return &Extractor{ocr: engine}
}

// Extract pulls text out of content based on the declared MIME content kind.
// It never returns a Go error and never panics: every failure path degrades to
// a Result the caller can log and skip, so one bad file cannot abort a batch.
func (e *Extractor) Extract(ctx context.Context, content []byte, contentKind string) (res Result) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			res = Result{Outcome: OutcomeFailed, Err: fmt.Errorf("extraction panic: %v", r)}
		}
	}()

	kind := normalizeKind(contentKind)
	switch {
	case kind == "application/pdf":
		return extractPDF(content)
	case strings.HasPrefix(kind, "image/"):
		return e.extractImage(ctx, content)
	case kind == "text/plain", strings.HasPrefix(kind, "text/"):
		return extractPlain(content)
	case kind == kindDOCX:
		return extractDOCX(content)
	case kind == kindXLSX:
		return extractXLSX(content)
	default:
		return Result{Outcome: OutcomeUnsupported}
	}
}

// textResult wraps trimmed text in a Result, classifying whitespace-only text as empty.
func textResult(text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Outcome: OutcomeEmpty}
	}
	return Result{Text: text, Outcome: OutcomeText}
}

// normalizeKind lowercases the content kind and drops parameters ("; charset=utf-8").
func normalizeKind(kind string) string {
	if i := strings.IndexByte(kind, ';'); i >= 0 {
		kind = kind[:i]
	}
	return strings.ToLower(strings.TrimSpace(kind))
}
