package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// noExtractableTextMarker is returned for PDFs that parsed cleanly but contain
// no text (e.g. scanned images), so the file still counts as processed.
const noExtractableTextMarker = "PDF appears to contain no extractable text."

func extractPDF(content []byte) Result {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("open PDF: %w", err)}
	}
	var pages []string
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("extract page %d: %w", i, err)}
		}
		pages = append(pages, text)
	}
	text := strings.TrimSpace(strings.Join(pages, "\n"))
	if text == "" {
		return Result{Text: noExtractableTextMarker, Outcome: OutcomeText}
	}
	return Result{Text: text, Outcome: OutcomeText}
}
