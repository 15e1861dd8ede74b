package protocol

import (
	"strings"
)

// Escape makes text safe for the listener line protocol. Regex metacharacters are
// prefixed with a backslash and tab, newline, form-feed and carriage-return become
// \t, \n, \f and \r. The text is walked by code point, so multi-byte characters are
// never split.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if isMetaChar(r) {
			b.WriteByte('\\')
			b.WriteRune(r)
			continue
		}
		if m, ok := controlMarker(r); ok {
			b.WriteByte('\\')
			b.WriteByte(m)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Unescape reverses Escape. A trailing lone backslash or an unknown escape is kept as is.
func Unescape(text string) string {
	if !strings.ContainsRune(text, '\\') {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	escaped := false
	for _, r := range text {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			b.WriteRune(r)
			continue
		}

		escaped = false
		switch r {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 'r':
			b.WriteByte('\r')
		default:
			if !isMetaChar(r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}

func isMetaChar(r rune) bool {
	switch r {
	case '.', '*', '+', '?', '^', '$', '{', '}', '(', ')', '|', '[', ']', '\\':
		return true
	}
	return false
}

func controlMarker(r rune) (byte, bool) {
	switch r {
	case '\t':
		return 't', true
	case '\n':
		return 'n', true
	case '\f':
		return 'f', true
	case '\r':
		return 'r', true
	}
	return 0, false
}
