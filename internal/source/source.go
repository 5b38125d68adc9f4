// Package source provides byte sources for the string scanner: a single
// sequential stream, or an ordered list of file ranges read one at a time.
//
// Offsets reported by a Source are always absolute positions in the original
// input, never indexes into a range.
package source

import (
	"bufio"
	"errors"
	"io"
)

// BufferSize is the fixed I/O buffer used per stream. Memory held by a source
// does not grow with the size of the input.
const BufferSize = 64 * 1024

// Source is a forward-only reader over one or more byte ranges.
type Source interface {
	// Peek returns up to n bytes of the current range without consuming them.
	// It returns fewer than n bytes only at the end of the range, together
	// with io.EOF, or when reading failed.
	Peek(n int) ([]byte, error)
	// Discard consumes n bytes previously returned by Peek.
	Discard(n int) error
	// Offset is the absolute offset of the next unread byte.
	Offset() uint64
	// EndOfRange reports whether the current range is exhausted.
	EndOfRange() bool
	// NextRange advances to the following range and reports whether one exists.
	NextRange() bool
	// RangeName names the current range, empty for whole-input streams.
	RangeName() string
}

// Stream is a single-range source over an io.Reader.
type Stream struct {
	r    *bufio.Reader
	off  uint64
	name string
}

// NewStream wraps r. base is the absolute offset of the first byte of r.
func NewStream(r io.Reader, base uint64) *Stream {
	return &Stream{r: bufio.NewReaderSize(r, BufferSize), off: base}
}

// Peek implements Source.
func (s *Stream) Peek(n int) ([]byte, error) {
	p, err := s.r.Peek(n)
	if errors.Is(err, bufio.ErrBufferFull) {
		err = nil
	}
	return p, err
}

// Discard implements Source.
func (s *Stream) Discard(n int) error {
	d, err := s.r.Discard(n)
	s.off += uint64(d)
	return err
}

// Offset implements Source.
func (s *Stream) Offset() uint64 { return s.off }

// EndOfRange implements Source.
func (s *Stream) EndOfRange() bool {
	p, _ := s.r.Peek(1)
	return len(p) == 0
}

// NextRange implements Source. A stream has exactly one range.
func (s *Stream) NextRange() bool { return false }

// RangeName implements Source.
func (s *Stream) RangeName() string { return s.name }

// reset points the stream at a new reader, reusing its buffer.
func (s *Stream) reset(r io.Reader, base uint64, name string) {
	s.r.Reset(r)
	s.off = base
	s.name = name
}
