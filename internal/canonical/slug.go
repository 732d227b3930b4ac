// Package canonical assembles fully resolved catalog records from attribute,
// category, and media lookups. Everything in this package is pure: no I/O,
// no shared state.
package canonical

import "strings"

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen, trimming leading and trailing hyphens.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
