package extractor

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/richardwooding/strscan/internal/codec"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Radix selects how match offsets are printed.
type Radix int

const (
	// RadixNone disables offset printing.
	RadixNone Radix = iota
	// RadixOctal prints offsets in base 8.
	RadixOctal
	// RadixDecimal prints offsets in base 10.
	RadixDecimal
	// RadixHex prints offsets in base 16.
	RadixHex
)

// ParseRadix maps the -t letters o, d and x. The empty string disables offsets.
func ParseRadix(s string) (Radix, error) {
	switch s {
	case "":
		return RadixNone, nil
	case "o":
		return RadixOctal, nil
	case "d":
		return RadixDecimal, nil
	case "x":
		return RadixHex, nil
	default:
		return RadixNone, fmt.Errorf("%w: unknown radix %q", ErrInvalidConfig, s)
	}
}

// UnicodeMode controls how characters outside ASCII are scanned and shown.
type UnicodeMode int

const (
	// UnicodeDefault passes characters through untouched.
	UnicodeDefault UnicodeMode = iota
	// UnicodeLocale decodes UTF-8 and shows it as is.
	UnicodeLocale
	// UnicodeEscape shows non-ASCII characters as \uXXXX or \UXXXXXXXX.
	UnicodeEscape
	// UnicodeHex shows non-ASCII characters as their UTF-8 bytes, <0x...>.
	UnicodeHex
	// UnicodeHighlight is UnicodeEscape coloured when colour is enabled.
	UnicodeHighlight
	// UnicodeInvalid drops matches containing non-ASCII characters.
	UnicodeInvalid
)

// ParseUnicode accepts the long names and the single letter aliases.
func ParseUnicode(s string) (UnicodeMode, error) {
	switch s {
	case "", "default", "d":
		return UnicodeDefault, nil
	case "locale", "show", "l", "s":
		return UnicodeLocale, nil
	case "escape", "e":
		return UnicodeEscape, nil
	case "hex", "x":
		return UnicodeHex, nil
	case "highlight", "h":
		return UnicodeHighlight, nil
	case "invalid", "i":
		return UnicodeInvalid, nil
	default:
		return UnicodeDefault, fmt.Errorf("%w: unknown unicode mode %q", ErrInvalidConfig, s)
	}
}

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto colours output only when stdout is a terminal.
	ColorAuto ColorMode = iota
	// ColorAlways always colours output.
	ColorAlways
	// ColorNever never colours output.
	ColorNever
)

// ParseColorMode maps auto, always and never.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("%w: unknown color mode %q", ErrInvalidConfig, s)
	}
}

// Config holds the configuration for string extraction. It is built once per
// run and only read afterwards.
type Config struct {
	MinLength            int
	Encoding             codec.Encoding
	Unicode              UnicodeMode
	IncludeAllWhitespace bool
	ScanDataOnly         bool // Scan only data sections (requires binary format detection)
	Radix                Radix
	OutputSeparator      string
	PrintFileName        bool
	Color                ColorMode
	MatchPatterns        []*regexp.Regexp
	ExcludePatterns      []*regexp.Regexp
}

// DefaultConfig mirrors GNU strings with no options.
func DefaultConfig() Config {
	return Config{
		MinLength:       4,
		Encoding:        codec.Bit7,
		OutputSeparator: "\n",
	}
}

// Validate rejects configurations the scanner cannot run with.
func (c Config) Validate() error {
	if c.MinLength < 1 {
		return fmt.Errorf("%w: minimum length must be at least 1, got %d", ErrInvalidConfig, c.MinLength)
	}
	if !c.Encoding.Valid() {
		return fmt.Errorf("%w: %d", codec.ErrUnsupportedEncoding, int(c.Encoding))
	}
	return nil
}

// PrintOffset reports whether offsets are printed.
func (c Config) PrintOffset() bool {
	return c.Radix != RadixNone
}

// ScanEncoding is the encoding actually used for scanning. Any unicode mode
// other than the default makes single-byte scans UTF-8 aware.
func (c Config) ScanEncoding() codec.Encoding {
	if c.Unicode != UnicodeDefault && c.Encoding.SingleByte() {
		return codec.UTF8
	}
	return c.Encoding
}
