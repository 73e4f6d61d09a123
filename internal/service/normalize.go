package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	urlScheme = "http"
	// missingText is what absent text normalises to.
	missingText = "nan"
)

// Normalize lowercases text, strips URL-shaped runs, drops every rune that
// is not a-z or whitespace, and collapses whitespace. Digits and punctuation
// are discarded along with everything else.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = stripURLs(s)
	s = keepLetters(s)
	s = collapseSpace(s)

	// Filtering can splice fragments into a new "http..." run.
	if strings.Contains(s, urlScheme) {
		s = collapseSpace(stripURLs(s))
	}
	return s
}

// normalizeOptional maps absent text to "nan" before normalising.
func normalizeOptional(text *string) string {
	if text == nil {
		return missingText
	}
	return Normalize(*text)
}

// stripURLs removes every "http" followed by one or more non-space runes.
func stripURLs(s string) string {
	if !strings.Contains(s, urlScheme) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], urlScheme) {
			j := i + len(urlScheme)
			for j < len(s) {
				r, size := utf8.DecodeRuneInString(s[j:])
				if isSpace(r) {
					break
				}
				j += size
			}
			if j > i+len(urlScheme) {
				i = j
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func keepLetters(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || isSpace(r) {
			return r
		}
		return -1
	}, s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

// isSpace is unicode.IsSpace plus the ASCII separators U+001C to U+001F,
// which regular-expression \s also matches.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
