// Package stats provides statistics aggregation for extracted strings.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/richardwooding/strscan/internal/codec"
	"github.com/richardwooding/strscan/internal/extractor"
	"github.com/richardwooding/strscan/internal/printer"
)

const maxLongest = 5

// Statistics holds aggregated statistics about extracted strings. It
// implements printer.Sink so it can sit next to the text or JSON printer.
type Statistics struct {
	// File metadata
	Files        []string
	BinaryFormat string
	Sections     []string

	// Count statistics
	TotalStrings    int
	TotalChars      int
	TotalBytes      uint64
	MinLength       int // From config
	MaxLength       int
	FilteredCount   int // Strings that passed filters
	UnfilteredCount int // Total strings before filtering

	// Distribution maps
	EncodingCounts map[string]int
	LengthBuckets  map[string]int

	// Longest strings
	LongestStrings []LongestString

	encoding codec.Encoding
}

// LongestString represents one of the longest strings found
type LongestString struct {
	File   string
	Value  string
	Length int
	Offset uint64
}

// New creates a new Statistics instance for matches scanned with config.
func New(config extractor.Config) *Statistics {
	return &Statistics{
		MinLength:      config.MinLength,
		EncodingCounts: make(map[string]int),
		LengthBuckets:  make(map[string]int),
		LongestStrings: make([]LongestString, 0, maxLongest),
		encoding:       config.ScanEncoding(),
	}
}

// StartFile records file metadata. Format and sections are kept only while a
// single file has been seen.
func (s *Statistics) StartFile(info printer.FileInfo) {
	s.Files = append(s.Files, info.Name)
	if len(s.Files) == 1 {
		s.BinaryFormat = info.Format
		s.Sections = info.Sections
	} else {
		s.BinaryFormat = ""
		s.Sections = nil
	}
}

// AddUnfiltered tracks a string before filtering (for filter statistics)
func (s *Statistics) AddUnfiltered() {
	s.UnfilteredCount++
}

// Print adds a match that passed the filters.
func (s *Statistics) Print(m extractor.Match) error {
	s.TotalStrings++
	s.FilteredCount++
	s.TotalBytes += m.Size

	length := len(m.Text)
	s.TotalChars += length
	if length > s.MaxLength {
		s.MaxLength = length
	}

	s.updateLongest(m, length)
	s.EncodingCounts[s.classify(m.Text)]++
	s.LengthBuckets[getBucket(length)]++
	return nil
}

// Flush is a no-op; call Format or ToJSON once all inputs are done.
func (s *Statistics) Flush() error {
	return nil
}

// classify names the character class of a match under the scan encoding.
func (s *Statistics) classify(text []rune) string {
	switch s.encoding {
	case codec.UTF16BE, codec.UTF16LE:
		return "utf-16"
	case codec.UTF32BE, codec.UTF32LE:
		return "utf-32"
	}

	for _, r := range text {
		if r >= utf8.RuneSelf {
			if s.encoding == codec.UTF8 {
				return "utf-8"
			}
			return "ascii-8bit"
		}
	}
	return "ascii-7bit"
}

// getBucket returns the length bucket for a string
func getBucket(length int) string {
	switch {
	case length <= 10:
		return "1-10"
	case length <= 50:
		return "11-50"
	case length <= 100:
		return "51-100"
	default:
		return "100+"
	}
}

func (s *Statistics) currentFile() string {
	if len(s.Files) == 0 {
		return ""
	}
	return s.Files[len(s.Files)-1]
}

// updateLongest updates the list of longest strings
func (s *Statistics) updateLongest(m extractor.Match, length int) {
	if len(s.LongestStrings) == maxLongest && length <= s.LongestStrings[maxLongest-1].Length {
		return
	}
	s.LongestStrings = append(s.LongestStrings, LongestString{
		File:   s.currentFile(),
		Value:  m.String(),
		Length: length,
		Offset: m.Offset,
	})
	sortLongest(s.LongestStrings)
	if len(s.LongestStrings) > maxLongest {
		s.LongestStrings = s.LongestStrings[:maxLongest]
	}
}

// sortLongest orders by length, longest first; ties keep arrival order.
func sortLongest(l []LongestString) {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Length > l[j].Length
	})
}

// AvgLength calculates the average string length in characters
func (s *Statistics) AvgLength() float64 {
	if s.TotalStrings == 0 {
		return 0.0
	}
	return float64(s.TotalChars) / float64(s.TotalStrings)
}

// Format outputs human-readable statistics to the writer with optional colors
//
//nolint:errcheck // Writing to stdout/buffer, errors are not critical
func (s *Statistics) Format(w io.Writer, useColor bool) {
	// Header
	if len(s.Files) == 1 && s.Files[0] != "" {
		header := "Statistics for " + s.Files[0] + ":"
		header = printer.ColorString(header, printer.AnsiBold+printer.AnsiCyan, useColor)
		fmt.Fprintf(w, "%s\n", header)
	} else {
		header := printer.ColorString("Statistics:", printer.AnsiBold+printer.AnsiCyan, useColor)
		fmt.Fprintf(w, "%s\n", header)
	}

	// Binary format info
	if len(s.Files) > 1 {
		fmt.Fprintf(w, "  Files scanned:     %s\n", printer.ColorString(formatNumber(len(s.Files)), printer.AnsiYellow, useColor))
	}
	if s.BinaryFormat != "" {
		format := printer.ColorString(s.BinaryFormat, printer.AnsiCyan, useColor)
		fmt.Fprintf(w, "  Binary format:     %s\n", format)
	}
	if len(s.Sections) > 0 {
		sections := printer.ColorString(strings.Join(s.Sections, ", "), printer.AnsiCyan, useColor)
		fmt.Fprintf(w, "  Sections scanned:  %s\n", sections)
	}
	if len(s.Files) > 1 || s.BinaryFormat != "" || len(s.Sections) > 0 {
		fmt.Fprintln(w)
	}

	// Count statistics
	if s.UnfilteredCount > 0 {
		unfilteredNum := printer.ColorString(formatNumber(s.UnfilteredCount), printer.AnsiYellow, useColor)
		fmt.Fprintf(w, "  Total strings extracted:  %s\n", unfilteredNum)

		filteredNum := printer.ColorString(formatNumber(s.FilteredCount), printer.AnsiYellow, useColor)
		pct := printer.ColorString(fmt.Sprintf("%.1f%%", percentage(s.FilteredCount, s.UnfilteredCount)), printer.AnsiGreen, useColor)
		fmt.Fprintf(w, "  Matched filters:          %s (%s)\n", filteredNum, pct)
	} else {
		totalNum := printer.ColorString(formatNumber(s.TotalStrings), printer.AnsiYellow, useColor)
		fmt.Fprintf(w, "  Total strings:     %s\n", totalNum)
	}

	bytesNum := printer.ColorString(formatNumber(int(s.TotalBytes)), printer.AnsiYellow, useColor)
	fmt.Fprintf(w, "  Total bytes:       %s\n", bytesNum)

	minNum := printer.ColorString(fmt.Sprintf("%d", s.MinLength), printer.AnsiYellow, useColor)
	fmt.Fprintf(w, "  Min length:        %s (configured)\n", minNum)

	maxNum := printer.ColorString(fmt.Sprintf("%d", s.MaxLength), printer.AnsiYellow, useColor)
	fmt.Fprintf(w, "  Max length:        %s\n", maxNum)

	avgNum := printer.ColorString(fmt.Sprintf("%.1f", s.AvgLength()), printer.AnsiYellow, useColor)
	fmt.Fprintf(w, "  Avg length:        %s\n", avgNum)
	fmt.Fprintln(w)

	// Encoding distribution
	if len(s.EncodingCounts) > 0 {
		header := printer.ColorString("Encoding distribution:", printer.AnsiBold+printer.AnsiCyan, useColor)
		fmt.Fprintf(w, "  %s\n", header)

		encodings := make([]string, 0, len(s.EncodingCounts))
		for enc := range s.EncodingCounts {
			encodings = append(encodings, enc)
		}
		sort.Strings(encodings)

		for _, enc := range encodings {
			count := s.EncodingCounts[enc]
			encName := printer.ColorString(formatEncodingName(enc)+":", printer.AnsiMagenta, useColor)
			countNum := printer.ColorString(formatNumber(count), printer.AnsiYellow, useColor)
			pct := printer.ColorString(fmt.Sprintf("%5.1f%%", percentage(count, s.TotalStrings)), printer.AnsiGreen, useColor)
			fmt.Fprintf(w, "    %-15s %6s (%s)\n", encName, countNum, pct)
		}
		fmt.Fprintln(w)
	}

	// Length distribution
	if len(s.LengthBuckets) > 0 {
		header := printer.ColorString("Length distribution:", printer.AnsiBold+printer.AnsiCyan, useColor)
		fmt.Fprintf(w, "  %s\n", header)

		for _, bucket := range []string{"1-10", "11-50", "51-100", "100+"} {
			if count, ok := s.LengthBuckets[bucket]; ok {
				countNum := printer.ColorString(formatNumber(count), printer.AnsiYellow, useColor)
				pct := printer.ColorString(fmt.Sprintf("%5.1f%%", percentage(count, s.TotalStrings)), printer.AnsiGreen, useColor)
				fmt.Fprintf(w, "    %s chars:    %6s (%s)\n", bucket, countNum, pct)
			}
		}
		fmt.Fprintln(w)
	}

	// Longest strings
	if len(s.LongestStrings) > 0 {
		header := printer.ColorString("Longest strings:", printer.AnsiBold+printer.AnsiCyan, useColor)
		fmt.Fprintf(w, "  %s\n", header)

		for _, ls := range s.LongestStrings {
			lengthNum := printer.ColorString(fmt.Sprintf("%d", ls.Length), printer.AnsiYellow, useColor)
			offsetNum := printer.ColorString(fmt.Sprintf("0x%x", ls.Offset), printer.AnsiYellow, useColor)
			previewStr := printer.ColorString(fmt.Sprintf("%q", preview(ls.Value)), printer.AnsiDim, useColor)
			where := ""
			if len(s.Files) > 1 && ls.File != "" {
				where = ls.File + " "
			}
			fmt.Fprintf(w, "    %s chars at %s%s: %s\n", lengthNum, where, offsetNum, previewStr)
		}
	}
}

// formatNumber adds thousand separators to numbers
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}

	var result []byte
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(digit))
	}
	return string(result)
}

// percentage calculates percentage with 1 decimal place
func percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) * 100.0 / float64(total)
}

// formatEncodingName converts internal encoding names to display names
func formatEncodingName(enc string) string {
	switch enc {
	case "ascii-7bit":
		return "ASCII (7-bit)"
	case "ascii-8bit":
		return "High-byte"
	case "utf-8":
		return "UTF-8"
	case "utf-16":
		return "UTF-16"
	case "utf-32":
		return "UTF-32"
	default:
		return enc
	}
}

// ToJSON converts statistics to JSON format
func (s *Statistics) ToJSON() ([]byte, error) {
	output := map[string]any{
		"total_strings": s.TotalStrings,
		"total_bytes":   s.TotalBytes,
		"min_length":    s.MinLength,
		"max_length":    s.MaxLength,
		"avg_length":    s.AvgLength(),
	}

	if len(s.Files) > 0 {
		output["files"] = s.Files
	}
	if s.BinaryFormat != "" {
		output["format"] = s.BinaryFormat
	}
	if len(s.Sections) > 0 {
		output["sections"] = s.Sections
	}

	if s.UnfilteredCount > 0 {
		output["unfiltered_count"] = s.UnfilteredCount
		output["filtered_count"] = s.FilteredCount
		output["filter_percentage"] = percentage(s.FilteredCount, s.UnfilteredCount)
	}

	if len(s.EncodingCounts) > 0 {
		output["encoding_distribution"] = s.EncodingCounts
	}
	if len(s.LengthBuckets) > 0 {
		output["length_distribution"] = s.LengthBuckets
	}

	if len(s.LongestStrings) > 0 {
		longest := make([]map[string]any, len(s.LongestStrings))
		for i, ls := range s.LongestStrings {
			entry := map[string]any{
				"length":     ls.Length,
				"offset":     ls.Offset,
				"offset_hex": fmt.Sprintf("0x%x", ls.Offset),
				"preview":    preview(ls.Value),
			}
			if ls.File != "" {
				entry["file"] = ls.File
			}
			longest[i] = entry
		}
		output["longest_strings"] = longest
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode statistics: %w", err)
	}
	return data, nil
}

// Merge combines another Statistics instance into this one (for aggregation)
func (s *Statistics) Merge(other *Statistics) {
	s.Files = append(s.Files, other.Files...)
	if len(s.Files) > 1 {
		s.BinaryFormat = ""
		s.Sections = nil
	}
	s.TotalStrings += other.TotalStrings
	s.TotalChars += other.TotalChars
	s.FilteredCount += other.FilteredCount
	s.UnfilteredCount += other.UnfilteredCount
	s.TotalBytes += other.TotalBytes

	if other.MaxLength > s.MaxLength {
		s.MaxLength = other.MaxLength
	}

	for enc, count := range other.EncodingCounts {
		s.EncodingCounts[enc] += count
	}
	for bucket, count := range other.LengthBuckets {
		s.LengthBuckets[bucket] += count
	}

	s.LongestStrings = append(s.LongestStrings, other.LongestStrings...)
	sortLongest(s.LongestStrings)
	if len(s.LongestStrings) > maxLongest {
		s.LongestStrings = s.LongestStrings[:maxLongest]
	}
}
