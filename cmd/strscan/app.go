package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/richardwooding/strscan/internal/binary"
	"github.com/richardwooding/strscan/internal/diag"
	"github.com/richardwooding/strscan/internal/extractor"
	"github.com/richardwooding/strscan/internal/input"
	"github.com/richardwooding/strscan/internal/printer"
	"github.com/richardwooding/strscan/internal/source"
	"github.com/richardwooding/strscan/internal/stats"
)

// app carries everything a run needs once the flags are validated.
type app struct {
	config   extractor.Config
	target   binary.Format
	opts     input.Options
	jobs     int
	json     bool
	stats    bool
	sections bool
	color    bool

	stdin  io.Reader
	stdout io.Writer
	diag   *diag.Writer
}

// run processes files in order, or stdin when there are none. Per-input
// failures go to the diagnostics writer; the returned error is reserved for
// output failures.
func (a *app) run(files []string) error {
	if a.sections {
		a.listSections(files)
		return nil
	}

	out, summary := a.newSink()
	sink := &filterSink{next: out, config: a.config, stats: summary}

	switch {
	case len(files) == 0:
		if err := a.scanStdin(sink); err != nil {
			a.diag.Error("", err)
		}
	case a.jobs > 1 && len(files) > 1:
		if err := a.scanParallel(files, sink); err != nil {
			return err
		}
	default:
		for _, name := range files {
			if err := a.scanFile(name, sink); err != nil {
				a.diag.Error(name, err)
			}
		}
	}

	if err := out.Flush(); err != nil {
		return err
	}
	if summary != nil {
		return a.writeStats(summary)
	}
	return nil
}

// newSink picks the output for matches. With --stats the statistics are the
// only output and are also returned for the final summary.
func (a *app) newSink() (printer.Sink, *stats.Statistics) {
	if a.stats {
		s := stats.New(a.config)
		return s, s
	}
	if a.json {
		return printer.NewJSONPrinter(a.config, a.stdout), nil
	}
	return printer.NewTextPrinter(a.stdout, a.config, a.color), nil
}

func (a *app) writeStats(s *stats.Statistics) error {
	if a.json {
		data, err := s.ToJSON()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(a.stdout, "%s\n", data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	s.Format(a.stdout, a.color)
	return nil
}

// scanStdin scans standard input as one stream. Its length is unknown, so
// data-only mode cannot locate sections.
func (a *app) scanStdin(sink printer.Sink) error {
	if a.config.ScanDataOnly {
		a.diag.Notice("", "input length unknown, scanning whole input")
	}
	sink.StartFile(printer.FileInfo{})
	return extractor.ExtractStrings(a.stdin, a.config, sink.Print)
}

// scanFile scans one named file into sink.
func (a *app) scanFile(name string, sink printer.Sink) (err error) {
	f, err := input.Open(name, a.opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	info := printer.FileInfo{Name: name}
	var ranges []source.Range
	if a.config.ScanDataOnly {
		ranges, info = a.dataRanges(f)
	}

	sink.StartFile(info)
	if ranges == nil {
		return extractor.ExtractStrings(f.Reader(), a.config, sink.Print)
	}
	return extractor.ExtractFromSections(f, ranges, a.config, sink.Print)
}

// dataRanges locates the data sections of f. A nil result means the whole
// file is scanned: the input is not an object file, its headers cannot be
// trusted, or it has no data sections.
func (a *app) dataRanges(f *input.File) ([]source.Range, printer.FileInfo) {
	info := printer.FileInfo{Name: f.Name()}

	format, sections, err := a.locate(f)
	switch {
	case errors.Is(err, binary.ErrUnrecognized):
		if a.target != binary.FormatRaw {
			a.diag.Notice(f.Name(), "not a recognized object file, scanning whole file")
		}
		return nil, info
	case err != nil:
		a.diag.Notice(f.Name(), "cannot parse as %v, falling back to full scan: %v", format, err)
		return nil, info
	}

	info.Format = format.String()
	data := binary.DataSections(sections)
	if len(data) == 0 {
		a.diag.Notice(f.Name(), "no data sections found, scanning whole file")
		return nil, info
	}

	ranges := make([]source.Range, 0, len(data))
	for _, s := range data {
		ranges = append(ranges, source.Range{Name: s.Name, Offset: s.Offset, Size: s.Size})
		info.Sections = append(info.Sections, s.Name)
	}
	return ranges, info
}

// locate resolves the object format of f and parses its section table.
func (a *app) locate(f *input.File) (binary.Format, []binary.Section, error) {
	format := a.target
	if format == binary.FormatUnknown {
		detected, err := binary.DetectFormat(f, f.Size())
		if err != nil {
			return format, nil, err
		}
		format = detected
	}
	sections, err := binary.ParseBinary(f, f.Size(), format)
	return format, sections, err
}

// listSections prints the section table of every file.
func (a *app) listSections(files []string) {
	for _, name := range files {
		if err := a.listFile(name); err != nil {
			a.diag.Error(name, err)
		}
	}
}

func (a *app) listFile(name string) (err error) {
	f, err := input.Open(name, a.opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	format, sections, err := a.locate(f)
	switch {
	case errors.Is(err, binary.ErrUnrecognized):
		a.diag.Notice(name, "not a recognized object file")
		return nil
	case err != nil:
		a.diag.Notice(name, "cannot parse as %v: %v", format, err)
		return nil
	}
	return printer.PrintSections(a.stdout, name, format, sections, a.color)
}
