// Package sanitize normalizes free-text fields before they enter storage:
// markup is stripped, control characters removed, surrounding whitespace
// trimmed. Sanitized values are stored and echoed back to clients as-is.
package sanitize

import (
	"strings"
	"unicode"
)

// Clean strips markup and control characters from s and trims surrounding
// whitespace.
func Clean(s string) string {
	return strings.TrimSpace(stripControl(stripTags(s)))
}

// stripTags removes anything between '<' and the matching '>'. An unclosed
// '<' swallows the rest of the string, which matches how tag strippers
// conventionally treat truncated markup.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}
