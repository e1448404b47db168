package internal

import (
	"unicode/utf8"
)

const truncatedSuffix = "...(truncated)"

// Truncate shortens s to at most n bytes, never cutting a rune in the
// middle. n <= 0 disables truncation.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + truncatedSuffix
}
