package router

import (
	"regexp"
	"strings"
)

// ShapeHeuristic reports whether a query looks like free-form prose. Queries
// that fail the check are answered with a single clarifying chunk instead of
// being routed to a model. The check is best-effort input hygiene, not a
// security boundary.
type ShapeHeuristic func(query string) bool

// structuredPatterns match inputs shaped like data or markup rather than a
// question: JSON, XML, SQL, YAML, HTML, markdown tables and base64 blobs.
var structuredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*[\{\[][\s\S]*[\}\]]\s*$`),
	regexp.MustCompile(`<[^>]+>.*</[^>]+>`),
	regexp.MustCompile(`\b(SELECT|UPDATE|DELETE|INSERT)\b`),
	regexp.MustCompile(`^\s*[a-zA-Z0-9_-]+\s*:\s*[^\n]+$`),
	regexp.MustCompile(`<(html|head|body|div|span|img)[^>]*>`),
	regexp.MustCompile(`^\|(.+)\|$`),
	regexp.MustCompile(`^[A-Za-z0-9+/=]{10,}={0,2}$`),
}

// PlainText is the default ShapeHeuristic. The query is trimmed first so a
// trailing newline cannot slip an anchored pattern past the check.
func PlainText(query string) bool {
	query = strings.TrimSpace(query)
	for _, p := range structuredPatterns {
		if p.MatchString(query) {
			return false
		}
	}
	return true
}
