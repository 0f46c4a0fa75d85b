package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain decodes content as UTF-8, replacing invalid byte sequences with
// the replacement character rather than failing.
func extractPlain(content []byte) Result {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return textResult(text)
}
