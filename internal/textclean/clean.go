// Package textclean normalises OCR output before it is stored and
// embedded. OCR text tends to carry stray control characters, broken
// hyphenation and ragged whitespace that degrade both keyword matching
// and embedding quality.
package textclean

import (
	"strings"
	"unicode"
)

// Clean normalises raw OCR text. Returns the empty string when the
// cleanup changes nothing, so callers can store "no cleaned variant"
// instead of a duplicate.
func Clean(raw string) string {
	cleaned := clean(raw)
	if cleaned == strings.TrimSpace(raw) {
		return ""
	}
	return cleaned
}

func clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	// Drop control characters except newlines; tabs become spaces.
	for _, r := range raw {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// skip
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}

	text := strings.Join(out, "\n")

	// Re-join words hyphenated across line breaks ("insur-\nance").
	text = dehyphenate(text)

	return strings.TrimSpace(text)
}

func dehyphenate(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '-' && i+1 < len(runes) && runes[i+1] == '\n' &&
			i > 0 && unicode.IsLetter(runes[i-1]) &&
			i+2 < len(runes) && unicode.IsLower(runes[i+2]) {
			i++ // skip the hyphen and the newline
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
