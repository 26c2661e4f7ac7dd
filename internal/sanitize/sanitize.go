// Package sanitize cleans user-supplied feed text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every HTML element. It is safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// Text removes markup from s and trims surrounding whitespace. The result is
// plain text: entities the policy escapes are decoded again, so "&" and quotes
// are stored as typed.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
