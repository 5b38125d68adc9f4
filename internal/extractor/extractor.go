// Package extractor finds runs of printable characters in a byte source.
package extractor

import (
	"errors"
	"fmt"
	"io"

	"github.com/richardwooding/strscan/internal/codec"
	"github.com/richardwooding/strscan/internal/source"
)

// ErrIO wraps read failures of the underlying input.
var ErrIO = errors.New("read failed")

// Match is one printable run.
type Match struct {
	// Offset is the absolute input offset of the first byte of the run.
	Offset uint64
	// Text holds the decoded characters.
	Text []rune
	// Size is the number of raw bytes the characters were decoded from.
	Size uint64
	// Section names the range the run was found in, if any.
	Section string
}

// String returns the decoded text.
func (m Match) String() string {
	return string(m.Text)
}

// EmitFunc receives matches in offset order. Returning an error stops the scan.
type EmitFunc func(Match) error

// Extractor scans sources with a fixed configuration. It is not safe for
// concurrent use; create one per goroutine.
type Extractor struct {
	config Config
	codec  codec.Codec
	run    []rune
}

// New validates config and prepares the codec it selects.
func New(config Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c, err := codec.New(config.ScanEncoding(), config.IncludeAllWhitespace)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		config: config,
		codec:  c,
		run:    make([]rune, 0, 256),
	}, nil
}

// Config returns the configuration the extractor was built with.
func (e *Extractor) Config() Config {
	return e.config
}

// Scan reads every range of src and calls emit for each run of at least
// MinLength characters. Runs never span two ranges.
//
// Decode problems only end the current run. A read failure returns an error
// wrapping ErrIO; matches emitted before it stand, the unfinished run is dropped.
func (e *Extractor) Scan(src source.Source, emit EmitFunc) error {
	for {
		if err := e.scanRange(src, emit); err != nil {
			return err
		}
		if !src.NextRange() {
			return nil
		}
	}
}

func (e *Extractor) scanRange(src source.Source, emit EmitFunc) error {
	window := e.codec.Window()
	section := src.RangeName()
	var start uint64
	e.run = e.run[:0]

	flush := func(end uint64) error {
		defer func() { e.run = e.run[:0] }()
		if len(e.run) < e.config.MinLength {
			return nil
		}
		return emit(Match{
			Offset:  start,
			Text:    append([]rune(nil), e.run...),
			Size:    end - start,
			Section: section,
		})
	}

	for {
		off := src.Offset()
		p, err := src.Peek(window)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		if len(p) == 0 {
			return flush(off)
		}

		u := e.codec.Decode(p)
		if derr := src.Discard(u.Size); derr != nil {
			return fmt.Errorf("%w: %w", ErrIO, derr)
		}

		if u.Printable {
			if len(e.run) == 0 {
				start = off
			}
			e.run = append(e.run, u.Rune)
			continue
		}
		if ferr := flush(off); ferr != nil {
			return ferr
		}
	}
}

// ExtractStrings scans r as a single stream starting at offset 0.
func ExtractStrings(r io.Reader, config Config, emit EmitFunc) error {
	e, err := New(config)
	if err != nil {
		return err
	}
	return e.Scan(source.NewStream(r, 0), emit)
}

// ExtractFromSections scans each range of r in order.
func ExtractFromSections(r io.ReaderAt, ranges []source.Range, config Config, emit EmitFunc) error {
	e, err := New(config)
	if err != nil {
		return err
	}
	return e.Scan(source.NewSections(r, ranges), emit)
}
