package extractor

import (
	"testing"

	"github.com/richardwooding/strscan/internal/codec"
)

func TestExtractUTF8Modes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		mode     UnicodeMode
		expected []string
	}{
		{
			name:     "ASCII only",
			input:    "hello world",
			mode:     UnicodeLocale,
			expected: []string{"hello world"},
		},
		{
			name:     "Chinese characters count as single characters",
			input:    "\x00世界和平\x00",
			mode:     UnicodeLocale,
			expected: []string{"世界和平"},
		},
		{
			name:     "Cyrillic",
			input:    "Привет мир",
			mode:     UnicodeEscape,
			expected: []string{"Привет мир"},
		},
		{
			name:     "Emoji",
			input:    "Hello 🌍",
			mode:     UnicodeLocale,
			expected: []string{"Hello 🌍"},
		},
		{
			name:     "invalid sequence splits the run",
			input:    "abcd\xc3\x28efgh",
			mode:     UnicodeLocale,
			expected: []string{"abcd", "(efgh"},
		},
		{
			name:     "default mode treats UTF-8 bytes as 7-bit breaks",
			input:    "caf\xc3\xa9 bar",
			mode:     UnicodeDefault,
			expected: []string{" bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Unicode = tt.mode
			found := texts(collect(t, []byte(tt.input), config))

			if len(found) != len(tt.expected) {
				t.Fatalf("got %q, want %q", found, tt.expected)
			}
			for i := range found {
				if found[i] != tt.expected[i] {
					t.Errorf("string %d = %q, want %q", i, found[i], tt.expected[i])
				}
			}
		})
	}
}

func TestUTF8MatchSizeCountsBytes(t *testing.T) {
	config := DefaultConfig()
	config.Unicode = UnicodeLocale
	found := collect(t, []byte("\x01日本語です\x01"), config)

	if len(found) != 1 {
		t.Fatalf("found %d matches, want 1", len(found))
	}
	if found[0].Offset != 1 || found[0].Size != 15 || len(found[0].Text) != 5 {
		t.Errorf("match @%d size %d chars %d, want @1 size 15 chars 5", found[0].Offset, found[0].Size, len(found[0].Text))
	}
}

func TestExtractWideEncodings(t *testing.T) {
	tests := []struct {
		name     string
		enc      codec.Encoding
		input    []byte
		expected string
	}{
		{
			name:     "UTF-16LE",
			enc:      codec.UTF16LE,
			input:    []byte{0x68, 0x00, 0x65, 0x00, 0x6C, 0x00, 0x6C, 0x00, 0x6F, 0x00},
			expected: "hello",
		},
		{
			name:     "UTF-16BE",
			enc:      codec.UTF16BE,
			input:    []byte{0x00, 0x68, 0x00, 0x65, 0x00, 0x6C, 0x00, 0x6C, 0x00, 0x6F},
			expected: "hello",
		},
		{
			name:     "UTF-16LE surrogate pair",
			enc:      codec.UTF16LE,
			input:    []byte{0x68, 0x00, 0x69, 0x00, 0x20, 0x00, 0x3C, 0xD8, 0x0D, 0xDF},
			expected: "hi 🌍",
		},
		{
			name:     "UTF-32LE",
			enc:      codec.UTF32LE,
			input:    []byte{'t', 0, 0, 0, 'e', 0, 0, 0, 's', 0, 0, 0, 't', 0, 0, 0},
			expected: "test",
		},
		{
			name:     "UTF-32BE",
			enc:      codec.UTF32BE,
			input:    []byte{0, 0, 0, 't', 0, 0, 0, 'e', 0, 0, 0, 's', 0, 0, 0, 't'},
			expected: "test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := collect(t, tt.input, configWith(4, tt.enc))
			if len(found) != 1 {
				t.Fatalf("found %d matches, want 1", len(found))
			}
			if found[0].String() != tt.expected {
				t.Errorf("got %q, want %q", found[0].String(), tt.expected)
			}
			if found[0].Size != uint64(len(tt.input)) {
				t.Errorf("size = %d, want %d", found[0].Size, len(tt.input))
			}
		})
	}
}

func TestEightBitEncoding(t *testing.T) {
	input := []byte("caf\xe9 au lait\x85rest")

	seven := texts(collect(t, input, configWith(4, codec.Bit7)))
	if len(seven) != 2 || seven[0] != " au lait" || seven[1] != "rest" {
		t.Errorf("7-bit got %q", seven)
	}

	eight := texts(collect(t, input, configWith(4, codec.Bit8)))
	if len(eight) != 2 || eight[0] != "café au lait" || eight[1] != "rest" {
		t.Errorf("8-bit got %q", eight)
	}
}

func TestIncludeAllWhitespace(t *testing.T) {
	input := []byte("line one\nline two\r\n\x00")
	config := DefaultConfig()
	config.IncludeAllWhitespace = true

	found := texts(collect(t, input, config))
	if len(found) != 1 || found[0] != "line one\nline two\r\n" {
		t.Errorf("got %q", found)
	}

	config.IncludeAllWhitespace = false
	found = texts(collect(t, input, config))
	if len(found) != 2 {
		t.Errorf("without -w got %q", found)
	}
}
