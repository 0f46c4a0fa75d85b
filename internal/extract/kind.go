package extract

import (
	"mime"
	"path/filepath"
	"strings"
)

// KindForPath guesses a MIME content kind from the file extension, for
// callers that ingest files from disk rather than an upload form. Unknown
// extensions are treated as plain text so extensionless notes still ingest.
func KindForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".docx":
		return kindDOCX
	case ".xlsx":
		return kindXLSX
	default:
		if kind := mime.TypeByExtension(filepath.Ext(path)); kind != "" {
			return kind
		}
		return "text/plain"
	}
}
