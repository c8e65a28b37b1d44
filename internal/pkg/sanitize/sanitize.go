// Package sanitize strips markup from free-text fields before they are
// stored. Remarks, addresses and names are rendered by the web dashboard.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
// bluemonday escapes entities in its output; they are unescaped again so
// plain text like "Tom & Jerry" survives a round trip.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// TextPtr applies Text to a non-nil pointer in place and returns it.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	return &v
}
