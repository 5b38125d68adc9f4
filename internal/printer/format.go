package printer

import (
	"fmt"
	"unicode/utf8"

	"github.com/richardwooding/strscan/internal/extractor"
)

const hexDigits = "0123456789abcdef"

// Formatter renders a match as one output record. It never modifies the match.
type Formatter struct {
	config extractor.Config
	color  bool
}

// NewFormatter returns a formatter for config. color enables ANSI colouring
// of prefixes and highlighted characters.
func NewFormatter(config extractor.Config, color bool) Formatter {
	return Formatter{config: config, color: color}
}

// Accepts reports whether the unicode mode lets m through. Only
// UnicodeInvalid rejects matches, those containing non-ASCII characters.
func (f Formatter) Accepts(m extractor.Match) bool {
	if f.config.Unicode != extractor.UnicodeInvalid {
		return true
	}
	for _, r := range m.Text {
		if r >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Format renders m with its file name and offset prefix and the trailing
// separator. The second result is false when the match is rejected.
func (f Formatter) Format(m extractor.Match, filename string) (string, bool) {
	b, ok := f.AppendFormat(nil, m, filename)
	return string(b), ok
}

// AppendFormat is Format appending to dst. A rejected match leaves dst as is.
func (f Formatter) AppendFormat(dst []byte, m extractor.Match, filename string) ([]byte, bool) {
	if !f.Accepts(m) {
		return dst, false
	}
	dst = f.appendPrefix(dst, m.Offset, filename)
	dst = f.AppendText(dst, m.Text)
	return append(dst, f.config.OutputSeparator...), true
}

func (f Formatter) appendPrefix(dst []byte, offset uint64, filename string) []byte {
	if f.config.PrintFileName && filename != "" {
		dst = append(dst, ColorString(filename, AnsiMagenta, f.color)...)
		dst = append(dst, ": "...)
	}

	var off string
	switch f.config.Radix {
	case extractor.RadixOctal:
		off = fmt.Sprintf("%7o", offset)
	case extractor.RadixDecimal:
		off = fmt.Sprintf("%7d", offset)
	case extractor.RadixHex:
		off = fmt.Sprintf("%7x", offset)
	default:
		return dst
	}
	dst = append(dst, ColorString(off, AnsiYellow, f.color)...)
	return append(dst, ' ')
}

// AppendText renders the characters of a match in the configured unicode mode.
func (f Formatter) AppendText(dst []byte, text []rune) []byte {
	mode := f.config.Unicode
	if mode == extractor.UnicodeDefault && f.config.Encoding.SingleByte() {
		// Single-byte scans decode each byte to the rune of the same value;
		// write the input bytes back unchanged.
		for _, r := range text {
			dst = append(dst, byte(r))
		}
		return dst
	}

	for _, r := range text {
		if r < utf8.RuneSelf {
			dst = append(dst, byte(r))
			continue
		}
		switch mode {
		case extractor.UnicodeEscape:
			dst = appendEscape(dst, r)
		case extractor.UnicodeHighlight:
			if f.color {
				dst = append(dst, AnsiHighlight...)
				dst = appendEscape(dst, r)
				dst = append(dst, AnsiReset...)
			} else {
				dst = appendEscape(dst, r)
			}
		case extractor.UnicodeHex:
			dst = appendHex(dst, r)
		default:
			dst = utf8.AppendRune(dst, r)
		}
	}
	return dst
}

// appendEscape writes \uXXXX, or \UXXXXXXXX above the Basic Multilingual Plane.
func appendEscape(dst []byte, r rune) []byte {
	if r <= 0xFFFF {
		return fmt.Appendf(dst, `\u%04x`, r)
	}
	return fmt.Appendf(dst, `\U%08x`, r)
}

// appendHex writes the UTF-8 encoding of r as <0x...>.
func appendHex(dst []byte, r rune) []byte {
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	dst = append(dst, "<0x"...)
	for _, c := range enc[:n] {
		dst = append(dst, hexDigits[c>>4], hexDigits[c&0x0f])
	}
	return append(dst, '>')
}
