package protocol

import "unicode/utf16"

// TextLength counts text in UTF-16 code units, the unit clients measure
// recognition text in. Runes outside the BMP count as two.
func TextLength(text string) int {
	n := 0
	for _, r := range text {
		// invalid bytes decode to U+FFFD, so RuneLen never reports -1 here
		n += utf16.RuneLen(r)
	}
	return n
}
