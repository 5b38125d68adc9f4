package printer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/richardwooding/strscan/internal/extractor"
)

// FileInfo describes the input the following matches come from.
type FileInfo struct {
	// Name is the path given on the command line; empty for stdin.
	Name string
	// Format is the detected object format, if any.
	Format string
	// Sections lists the data sections that were scanned.
	Sections []string
}

// Sink receives the matches of every input in output order.
type Sink interface {
	StartFile(info FileInfo)
	Print(m extractor.Match) error
	Flush() error
}

// TextPrinter writes one formatted record per match.
type TextPrinter struct {
	w      *bufio.Writer
	format Formatter
	file   string
	buf    []byte
}

// NewTextPrinter writes to w, or stdout when w is nil.
func NewTextPrinter(w io.Writer, config extractor.Config, color bool) *TextPrinter {
	if w == nil {
		w = os.Stdout
	}
	return &TextPrinter{
		w:      bufio.NewWriterSize(w, 32*1024),
		format: NewFormatter(config, color),
	}
}

// StartFile sets the name printed with -f.
func (p *TextPrinter) StartFile(info FileInfo) {
	p.file = info.Name
}

// Print renders and buffers one match.
func (p *TextPrinter) Print(m extractor.Match) error {
	var ok bool
	p.buf, ok = p.format.AppendFormat(p.buf[:0], m, p.file)
	if !ok {
		return nil
	}
	if _, err := p.w.Write(p.buf); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Flush writes any buffered output.
func (p *TextPrinter) Flush() error {
	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
