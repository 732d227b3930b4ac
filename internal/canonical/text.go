// HTML-to-plain-text derivation for description fields.
package canonical

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripTags removes HTML tags from s and collapses all whitespace runs to
// single spaces.
func StripTags(s string) string {
	plain := tagPattern.ReplaceAllString(s, " ")
	plain = whitespacePattern.ReplaceAllString(plain, " ")
	return strings.TrimSpace(plain)
}
