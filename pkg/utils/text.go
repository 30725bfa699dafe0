package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanToValidUTF8 strips invalid UTF-8 sequences and NUL bytes, which
// PostgreSQL text columns reject.
func CleanToValidUTF8(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, '\x00') {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}

// CollapseWhitespace trims the string and collapses runs of whitespace,
// including newlines and tabs, into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
