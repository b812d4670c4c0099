// Package htmlsanitize strips markup from user-entered text before it is
// stored. Comments, descriptions and other free text are kept as plain text.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes every tag from s (and the contents of script and style
// elements), then unescapes entities so the stored value is the text a user
// would see. Surrounding whitespace is trimmed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains nothing that looks like markup.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
