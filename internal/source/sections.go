package source

import (
	"io"
	"strings"
)

// Range is one byte range of a section list.
type Range struct {
	Name   string
	Offset uint64
	Size   uint64
}

// Sections reads an ordered list of ranges from r. Only the current range is
// buffered; a range is streamed through the same fixed-size buffer rather
// than loaded whole.
type Sections struct {
	r      io.ReaderAt
	ranges []Range
	idx    int
	cur    *Stream
}

// NewSections positions the source at the first range. The caller is
// responsible for ranges lying inside r.
func NewSections(r io.ReaderAt, ranges []Range) *Sections {
	s := &Sections{
		r:      r,
		ranges: ranges,
		cur:    NewStream(strings.NewReader(""), 0),
	}
	if len(ranges) > 0 {
		s.open(0)
	}
	return s
}

func (s *Sections) open(i int) {
	rg := s.ranges[i]
	s.idx = i
	s.cur.reset(io.NewSectionReader(s.r, int64(rg.Offset), int64(rg.Size)), rg.Offset, rg.Name)
}

// Peek implements Source.
func (s *Sections) Peek(n int) ([]byte, error) { return s.cur.Peek(n) }

// Discard implements Source.
func (s *Sections) Discard(n int) error { return s.cur.Discard(n) }

// Offset implements Source.
func (s *Sections) Offset() uint64 { return s.cur.Offset() }

// EndOfRange implements Source.
func (s *Sections) EndOfRange() bool { return s.cur.EndOfRange() }

// NextRange implements Source.
func (s *Sections) NextRange() bool {
	if s.idx+1 >= len(s.ranges) {
		return false
	}
	s.open(s.idx + 1)
	return true
}

// RangeName implements Source.
func (s *Sections) RangeName() string { return s.cur.RangeName() }

// Len returns the number of ranges.
func (s *Sections) Len() int { return len(s.ranges) }
