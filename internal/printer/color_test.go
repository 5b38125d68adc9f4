package printer

import (
	"os"
	"testing"

	"github.com/richardwooding/strscan/internal/extractor"
)

func TestShouldUseColor(t *testing.T) {
	tests := []struct {
		name       string
		mode       extractor.ColorMode
		noColorEnv string
		expected   bool
	}{
		{"ColorNever always returns false", extractor.ColorNever, "", false},
		{"ColorAlways returns true without NO_COLOR", extractor.ColorAlways, "", true},
		{"ColorAlways respects NO_COLOR", extractor.ColorAlways, "1", false},
		{"ColorAuto respects NO_COLOR", extractor.ColorAuto, "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// t.Setenv handles cleanup and prevents parallel execution
			t.Setenv("NO_COLOR", tt.noColorEnv)

			if got := ShouldUseColor(tt.mode); got != tt.expected {
				t.Errorf("ShouldUseColor(%v) with NO_COLOR=%q = %v, want %v",
					tt.mode, tt.noColorEnv, got, tt.expected)
			}
		})
	}
}

func TestShouldUseColorAutoRegularFile(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if shouldUseColor(extractor.ColorAuto, f) {
		t.Error("ColorAuto should be off when writing to a regular file")
	}
}

func TestColorString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		colorCode string
		enabled   bool
		expected  string
	}{
		{"Color enabled", "Hello", AnsiCyan, true, "\x1b[36mHello\x1b[0m"},
		{"Color disabled", "Hello", AnsiCyan, false, "Hello"},
		{"Empty string with color enabled", "", AnsiCyan, true, ""},
		{"Multiple ANSI codes", "Bold Cyan", AnsiBold + AnsiCyan, true, "\x1b[1m\x1b[36mBold Cyan\x1b[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorString(tt.input, tt.colorCode, tt.enabled)
			if got != tt.expected {
				t.Errorf("ColorString(%q, %q, %v) = %q, want %q",
					tt.input, tt.colorCode, tt.enabled, got, tt.expected)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(nil) {
		t.Error("isTerminal(nil) should return false")
	}

	tmpFile, err := os.CreateTemp(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer func() {
		_ = tmpFile.Close()
	}()

	if isTerminal(tmpFile) {
		t.Error("isTerminal(regular file) should return false")
	}
}
