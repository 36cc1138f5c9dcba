package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateWords keeps the first n words of s, appending an ellipsis when
// anything was cut
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

// TruncateChars keeps at most n runes of s
func TruncateChars(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// Paragraphs splits text on blank lines for rendering as <p> blocks
func Paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var result []string
	for _, block := range strings.Split(s, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			result = append(result, block)
		}
	}
	return result
}
