package strcase

import (
	"strings"
	"unicode"
)

// ToSlug converts a title to a lowercase, hyphen separated URL segment.
// Non letter/digit runs collapse into a single hyphen; leading and trailing
// hyphens are dropped.
func ToSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	return b.String()
}
