package codec

import "unicode"

// IsPrintableASCII reports whether b is in the 7-bit printable range, space
// through tilde. Tab is not included.
func IsPrintableASCII(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// IsPrintable reports whether r may appear in a run.
//
// ASCII follows IsPrintableASCII. C0 and C1 controls, DEL, NUL, surrogates and
// values beyond the Unicode range are never printable. Any other scalar is
// printable when it is graphic in the Unicode sense: letters, marks, numbers,
// punctuation, symbols and space separators. Private-use, format (Cf) and
// unassigned code points, and the line and paragraph separators, are not.
func IsPrintable(r rune) bool {
	switch {
	case r < 0x80:
		return r >= 0x20 && r <= 0x7E
	case r < 0xA0:
		return false
	case r > unicode.MaxRune:
		return false
	case r >= 0xD800 && r <= 0xDFFF:
		return false
	}
	return unicode.IsGraphic(r)
}

// isExtraSpace covers the whitespace characters admitted by -w.
func isExtraSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
