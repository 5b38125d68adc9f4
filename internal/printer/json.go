package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/richardwooding/strscan/internal/extractor"
)

// StringResult represents a single extracted string in JSON format
type StringResult struct {
	File      string `json:"file,omitempty"`
	Value     string `json:"value"`
	Offset    uint64 `json:"offset"`
	OffsetHex string `json:"offset_hex"`
	Length    uint64 `json:"length"`
	Encoding  string `json:"encoding"`
	Section   string `json:"section,omitempty"`
}

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Files   []FileResult `json:"files"`
	Summary Summary      `json:"summary"`
}

// FileResult represents results for a single file
type FileResult struct {
	File     string         `json:"file,omitempty"`
	Format   string         `json:"format,omitempty"`
	Sections []string       `json:"sections,omitempty"`
	Strings  []StringResult `json:"strings"`
}

// Summary contains metadata about the extraction
type Summary struct {
	TotalFiles   int    `json:"total_files"`
	TotalStrings int    `json:"total_strings"`
	TotalBytes   uint64 `json:"total_bytes"`
	MinLength    int    `json:"min_length"`
	Encoding     string `json:"encoding"`
}

// JSONPrinter collects every match and writes a single document on Flush.
type JSONPrinter struct {
	config   extractor.Config
	format   Formatter
	writer   io.Writer
	encoding string
	files    []FileResult
}

// NewJSONPrinter creates a new JSON printer
func NewJSONPrinter(config extractor.Config, writer io.Writer) *JSONPrinter {
	if writer == nil {
		writer = os.Stdout
	}
	return &JSONPrinter{
		config:   config,
		format:   NewFormatter(config, false),
		writer:   writer,
		encoding: config.ScanEncoding().String(),
	}
}

// StartFile opens a new per-file result.
func (jp *JSONPrinter) StartFile(info FileInfo) {
	jp.files = append(jp.files, FileResult{
		File:     info.Name,
		Format:   info.Format,
		Sections: info.Sections,
		Strings:  make([]StringResult, 0),
	})
}

// Print records a match under the current file.
func (jp *JSONPrinter) Print(m extractor.Match) error {
	if !jp.format.Accepts(m) {
		return nil
	}
	if len(jp.files) == 0 {
		jp.StartFile(FileInfo{})
	}
	cur := &jp.files[len(jp.files)-1]

	result := StringResult{
		Value:     m.String(),
		Offset:    m.Offset,
		OffsetHex: fmt.Sprintf("0x%x", m.Offset),
		Length:    m.Size,
		Encoding:  jp.encoding,
		Section:   m.Section,
	}
	if jp.config.PrintFileName {
		result.File = cur.File
	}
	cur.Strings = append(cur.Strings, result)
	return nil
}

// Flush outputs all collected results as JSON
func (jp *JSONPrinter) Flush() error {
	summary := Summary{
		TotalFiles: len(jp.files),
		MinLength:  jp.config.MinLength,
		Encoding:   jp.encoding,
	}
	for _, f := range jp.files {
		summary.TotalStrings += len(f.Strings)
		for _, s := range f.Strings {
			summary.TotalBytes += s.Length
		}
	}

	files := jp.files
	if files == nil {
		files = []FileResult{}
	}
	encoder := json.NewEncoder(jp.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(JSONOutput{Files: files, Summary: summary}); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
