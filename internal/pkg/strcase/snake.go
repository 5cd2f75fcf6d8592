package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a Go identifier to snake_case, keeping initialisms
// together: UserID → user_id, HTTPServer → http_server.
func ToLowerSnake(s string) string {
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordStart(runes, i) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// wordStart reports whether the upper-case rune at i begins a new word: it
// follows a lower-case letter or digit, or it ends an initialism that is
// followed by a lower-case letter (the S in HTTPServer).
func wordStart(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
