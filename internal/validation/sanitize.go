package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicy  = bluemonday.UGCPolicy()
	plainTextPolicy = bluemonday.StrictPolicy()
)

// SanitizeRichText strips scripts, event handlers and javascript: URLs while
// keeping common formatting. Safe for concurrent use.
func SanitizeRichText(s string) string {
	return richTextPolicy.Sanitize(s)
}

// PlainText removes all markup and collapses whitespace.
func PlainText(s string) string {
	stripped := html.UnescapeString(plainTextPolicy.Sanitize(s))
	return strings.Join(strings.Fields(stripped), " ")
}

// Excerpt returns at most limit runes of the plain-text rendering of s.
func Excerpt(s string, limit int) string {
	text := []rune(PlainText(s))
	if limit <= 0 || len(text) <= limit {
		return string(text)
	}
	return strings.TrimSpace(string(text[:limit]))
}
