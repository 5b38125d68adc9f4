// Package printer renders extracted strings as text or JSON.
package printer

import (
	"os"

	"github.com/richardwooding/strscan/internal/extractor"
	"golang.org/x/term"
)

// ANSI color codes for terminal output.
const (
	// AnsiReset resets all color and style attributes.
	AnsiReset = "\x1b[0m"
	// AnsiCyan sets text color to cyan.
	AnsiCyan = "\x1b[36m"
	// AnsiYellow sets text color to yellow.
	AnsiYellow = "\x1b[33m"
	// AnsiGreen sets text color to green.
	AnsiGreen = "\x1b[32m"
	// AnsiMagenta sets text color to magenta.
	AnsiMagenta = "\x1b[35m"
	// AnsiDim sets text to dim/faint.
	AnsiDim = "\x1b[2m"
	// AnsiBold sets text to bold.
	AnsiBold = "\x1b[1m"
	// AnsiHighlight is red on white, used for escaped characters.
	AnsiHighlight = "\x1b[31;47m"
)

// ShouldUseColor determines if colored output should be used based on the mode,
// NO_COLOR environment variable, and whether stdout is a TTY.
func ShouldUseColor(mode extractor.ColorMode) bool {
	return shouldUseColor(mode, os.Stdout)
}

func shouldUseColor(mode extractor.ColorMode, out *os.File) bool {
	// Respect NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	switch mode {
	case extractor.ColorAlways:
		return true
	case extractor.ColorAuto:
		return isTerminal(out)
	default:
		return false
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ColorString wraps a string with ANSI color codes if colors are enabled.
func ColorString(s, colorCode string, enabled bool) string {
	if !enabled || s == "" {
		return s
	}
	return colorCode + s + AnsiReset
}
