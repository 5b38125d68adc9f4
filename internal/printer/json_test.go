package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/richardwooding/strscan/internal/codec"
	"github.com/richardwooding/strscan/internal/extractor"
)

func decodeJSON(t *testing.T, buf *bytes.Buffer) JSONOutput {
	t.Helper()
	var output JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("JSON unmarshal error = %v, output = %s", err, buf.String())
	}
	return output
}

func TestJSONPrinter(t *testing.T) {
	tests := []struct {
		name         string
		encoding     codec.Encoding
		matches      []extractor.Match
		wantBytes    uint64
		wantEncoding string
	}{
		{
			name:         "basic ASCII strings",
			encoding:     codec.Bit7,
			matches:      []extractor.Match{match("Hello", 0), match("World", 100), match("test", 200)},
			wantBytes:    14,
			wantEncoding: "ascii-7bit",
		},
		{
			name:     "UTF-16 encoding",
			encoding: codec.UTF16LE,
			matches: []extractor.Match{
				{Offset: 0, Text: []rune("Hello"), Size: 10},
			},
			wantBytes:    10,
			wantEncoding: "utf-16le",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			config := extractor.DefaultConfig()
			config.Encoding = tt.encoding
			jp := NewJSONPrinter(config, &buf)

			jp.StartFile(FileInfo{})
			for _, m := range tt.matches {
				if err := jp.Print(m); err != nil {
					t.Fatalf("Print() error = %v", err)
				}
			}
			if err := jp.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}

			output := decodeJSON(t, &buf)
			if output.Summary.TotalStrings != len(tt.matches) {
				t.Errorf("TotalStrings = %d, want %d", output.Summary.TotalStrings, len(tt.matches))
			}
			if output.Summary.TotalBytes != tt.wantBytes {
				t.Errorf("TotalBytes = %d, want %d", output.Summary.TotalBytes, tt.wantBytes)
			}
			if output.Summary.Encoding != tt.wantEncoding {
				t.Errorf("Encoding = %q, want %q", output.Summary.Encoding, tt.wantEncoding)
			}
			if output.Summary.MinLength != config.MinLength {
				t.Errorf("MinLength = %d, want %d", output.Summary.MinLength, config.MinLength)
			}
			if len(output.Files) != 1 {
				t.Fatalf("got %d files, want 1", len(output.Files))
			}
			for i, m := range tt.matches {
				result := output.Files[0].Strings[i]
				if result.Value != m.String() {
					t.Errorf("String[%d].Value = %q, want %q", i, result.Value, m.String())
				}
				if result.Offset != m.Offset {
					t.Errorf("String[%d].Offset = %d, want %d", i, result.Offset, m.Offset)
				}
				if result.Length != m.Size {
					t.Errorf("String[%d].Length = %d, want %d", i, result.Length, m.Size)
				}
				if result.File != "" {
					t.Errorf("String[%d].File = %q, want empty without -f", i, result.File)
				}
			}
		})
	}
}

func TestJSONPrinterMultipleFiles(t *testing.T) {
	var buf bytes.Buffer
	config := extractor.DefaultConfig()
	config.PrintFileName = true

	jp := NewJSONPrinter(config, &buf)
	jp.StartFile(FileInfo{Name: "test.bin", Format: "ELF", Sections: []string{".data", ".rodata"}})
	m := match("test", 0x40)
	m.Section = ".rodata"
	_ = jp.Print(m)
	jp.StartFile(FileInfo{Name: "other.bin"})
	_ = jp.Print(match("more", 0))
	_ = jp.Print(match("strings", 9))

	if err := jp.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	output := decodeJSON(t, &buf)

	if len(output.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(output.Files))
	}
	first := output.Files[0]
	if first.File != "test.bin" || first.Format != "ELF" || len(first.Sections) != 2 {
		t.Errorf("first file = %+v", first)
	}
	if s := first.Strings[0]; s.Section != ".rodata" || s.OffsetHex != "0x40" || s.File != "test.bin" {
		t.Errorf("first string = %+v", s)
	}
	if output.Summary.TotalFiles != 2 || output.Summary.TotalStrings != 3 {
		t.Errorf("summary = %+v", output.Summary)
	}
}

func TestJSONPrinterEmpty(t *testing.T) {
	var buf bytes.Buffer
	jp := NewJSONPrinter(extractor.DefaultConfig(), &buf)
	jp.StartFile(FileInfo{Name: "empty.bin"})
	if err := jp.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if !strings.Contains(buf.String(), `"strings": []`) {
		t.Errorf("empty file should encode an empty strings array: %s", buf.String())
	}
	output := decodeJSON(t, &buf)
	if output.Summary.TotalStrings != 0 {
		t.Errorf("TotalStrings = %d, want 0", output.Summary.TotalStrings)
	}
}

func TestJSONPrinterInvalidMode(t *testing.T) {
	var buf bytes.Buffer
	config := extractor.DefaultConfig()
	config.Unicode = extractor.UnicodeInvalid

	jp := NewJSONPrinter(config, &buf)
	jp.StartFile(FileInfo{})
	_ = jp.Print(match("ascii", 0))
	_ = jp.Print(match("naïve", 10))
	if err := jp.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	output := decodeJSON(t, &buf)
	if output.Summary.TotalStrings != 1 {
		t.Errorf("TotalStrings = %d, want 1", output.Summary.TotalStrings)
	}
	if output.Summary.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want utf-8 for unicode-aware scans", output.Summary.Encoding)
	}
}
