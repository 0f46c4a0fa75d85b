package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const kindDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// docxDocumentXMLPath is the path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// wtTag matches <w:t>text</w:t> including variants with attributes
// (e.g. <w:t xml:space="preserve">).
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCX extracts text from .docx bytes. DOCX is a ZIP containing
// word/document.xml (OOXML); all <w:t> text nodes are collected so content is
// recovered regardless of paragraph/run attributes.
func extractDOCX(content []byte) Result {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("DOCX: not a zip: %w", err)}
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("DOCX: open %s: %w", f.Name, err)}
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("DOCX: read %s: %w", f.Name, err)}
		}
		break
	}
	if docXML == nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("DOCX: %s not found", docxDocumentXMLPath)}
	}

	parts := wtTag.FindAllStringSubmatch(string(docXML), -1)
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(p[1]))
	}
	return textResult(b.String())
}
