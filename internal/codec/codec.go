// Package codec decides, for each supported character encoding, how many raw
// bytes the next character occupies, which character it is and whether it may
// be part of a printable run.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrUnsupportedEncoding is returned when a configuration names an encoding
// that has no codec.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// Encoding selects one of the closed set of codecs.
type Encoding int

const (
	// Bit7 is 7-bit ASCII (-e s).
	Bit7 Encoding = iota
	// Bit8 is single-byte ASCII plus high Latin-1 bytes (-e S).
	Bit8
	// UTF16BE is 16-bit big-endian (-e b).
	UTF16BE
	// UTF16LE is 16-bit little-endian (-e l).
	UTF16LE
	// UTF32BE is 32-bit big-endian (-e B).
	UTF32BE
	// UTF32LE is 32-bit little-endian (-e L).
	UTF32LE
	// UTF8 decodes multi-byte UTF-8 sequences. It is selected implicitly by
	// the unicode display modes rather than by a flag letter.
	UTF8
)

// ParseEncoding maps a GNU strings encoding letter to an Encoding.
// The empty string selects the default 7-bit encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "s":
		return Bit7, nil
	case "S":
		return Bit8, nil
	case "b":
		return UTF16BE, nil
	case "l":
		return UTF16LE, nil
	case "B":
		return UTF32BE, nil
	case "L":
		return UTF32LE, nil
	default:
		return Bit7, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, s)
	}
}

// String returns a human-readable encoding name
func (e Encoding) String() string {
	switch e {
	case Bit7:
		return "ascii-7bit"
	case Bit8:
		return "ascii-8bit"
	case UTF16BE:
		return "utf-16be"
	case UTF16LE:
		return "utf-16le"
	case UTF32BE:
		return "utf-32be"
	case UTF32LE:
		return "utf-32le"
	case UTF8:
		return "utf-8"
	default:
		return "unknown"
	}
}

// Valid reports whether e names an implemented codec.
func (e Encoding) Valid() bool {
	return e >= Bit7 && e <= UTF8
}

// SingleByte reports whether every character of e is exactly one byte wide.
func (e Encoding) SingleByte() bool {
	return e == Bit7 || e == Bit8
}

// Unit is the result of decoding one character position.
type Unit struct {
	// Rune is the decoded character. It is meaningful only when Printable.
	Rune rune
	// Size is the number of raw bytes consumed. It is at least 1 for any
	// non-empty input.
	Size int
	// Printable reports whether the character extends a run.
	Printable bool
}

// Codec decodes characters from raw bytes.
type Codec interface {
	// Window is the number of bytes Decode wants to look at. Fewer bytes are
	// passed only at the end of a range.
	Window() int
	// Decode classifies the character at the start of p. p must not be empty.
	Decode(p []byte) Unit
}

// New returns the codec for enc. When allWhitespace is set, tab, newline,
// vertical tab, form feed and carriage return count as printable.
func New(enc Encoding, allWhitespace bool) (Codec, error) {
	switch enc {
	case Bit7:
		return singleByte{allWhitespace: allWhitespace}, nil
	case Bit8:
		return singleByte{high: true, allWhitespace: allWhitespace}, nil
	case UTF16BE:
		return utf16Codec{order: binary.BigEndian, allWhitespace: allWhitespace}, nil
	case UTF16LE:
		return utf16Codec{order: binary.LittleEndian, allWhitespace: allWhitespace}, nil
	case UTF32BE:
		return utf32Codec{order: binary.BigEndian, allWhitespace: allWhitespace}, nil
	case UTF32LE:
		return utf32Codec{order: binary.LittleEndian, allWhitespace: allWhitespace}, nil
	case UTF8:
		return utf8Codec{allWhitespace: allWhitespace}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEncoding, int(enc))
	}
}

type singleByte struct {
	high          bool
	allWhitespace bool
}

func (c singleByte) Window() int { return 1 }

func (c singleByte) Decode(p []byte) Unit {
	b := p[0]
	printable := IsPrintableASCII(b) ||
		(c.high && b >= 0xA0) ||
		(c.allWhitespace && isExtraSpace(rune(b)))
	return Unit{Rune: rune(b), Size: 1, Printable: printable}
}

type utf16Codec struct {
	order         binary.ByteOrder
	allWhitespace bool
}

// Window covers a surrogate pair.
func (c utf16Codec) Window() int { return 4 }

func (c utf16Codec) Decode(p []byte) Unit {
	if len(p) < 2 {
		return Unit{Size: len(p)}
	}
	r := rune(c.order.Uint16(p))
	switch {
	case r >= 0xD800 && r < 0xDC00:
		// A high surrogate only counts when a low surrogate follows. Otherwise
		// just this unit is consumed so the next one is examined on its own.
		if len(p) < 4 {
			return Unit{Size: 2}
		}
		lo := rune(c.order.Uint16(p[2:]))
		if lo < 0xDC00 || lo > 0xDFFF {
			return Unit{Size: 2}
		}
		r = utf16.DecodeRune(r, lo)
		return Unit{Rune: r, Size: 4, Printable: IsPrintable(r)}
	case r >= 0xDC00 && r <= 0xDFFF:
		return Unit{Size: 2}
	}
	return Unit{Rune: r, Size: 2, Printable: printableRune(r, c.allWhitespace)}
}

type utf32Codec struct {
	order         binary.ByteOrder
	allWhitespace bool
}

func (c utf32Codec) Window() int { return 4 }

func (c utf32Codec) Decode(p []byte) Unit {
	if len(p) < 4 {
		return Unit{Size: len(p)}
	}
	v := c.order.Uint32(p)
	if v > utf8.MaxRune {
		return Unit{Size: 4}
	}
	r := rune(v)
	if !utf8.ValidRune(r) {
		return Unit{Size: 4}
	}
	return Unit{Rune: r, Size: 4, Printable: printableRune(r, c.allWhitespace)}
}

type utf8Codec struct {
	allWhitespace bool
}

func (c utf8Codec) Window() int { return utf8.UTFMax }

func (c utf8Codec) Decode(p []byte) Unit {
	if p[0] < utf8.RuneSelf {
		r := rune(p[0])
		return Unit{Rune: r, Size: 1, Printable: printableRune(r, c.allWhitespace)}
	}
	r, size := utf8.DecodeRune(p)
	if r == utf8.RuneError && size <= 1 {
		return Unit{Size: 1}
	}
	return Unit{Rune: r, Size: size, Printable: IsPrintable(r)}
}

func printableRune(r rune, allWhitespace bool) bool {
	return IsPrintable(r) || (allWhitespace && isExtraSpace(r))
}
