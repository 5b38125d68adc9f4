// Package diag reports advisory notices and per-input failures.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reporter receives diagnostics about one input at a time. Notices never
// stop processing; errors mean the input could not be scanned.
type Reporter interface {
	Notice(file, format string, args ...any)
	Error(file string, err error)
}

// Writer writes prefixed diagnostic lines to an io.Writer. It is safe for
// concurrent use.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	prog   string
	errors int
}

// NewWriter reports to w, or stderr when w is nil, prefixing every line with
// prog.
func NewWriter(w io.Writer, prog string) *Writer {
	if w == nil {
		w = os.Stderr
	}
	return &Writer{w: w, prog: prog}
}

// Notice writes "prog: file: warning: message".
func (d *Writer) Notice(file, format string, args ...any) {
	d.write(file, "warning: "+fmt.Sprintf(format, args...))
}

// Error writes "prog: file: err" and counts the failure.
func (d *Writer) Error(file string, err error) {
	d.mu.Lock()
	d.errors++
	d.mu.Unlock()
	d.write(file, err.Error())
}

// Errors returns how many errors have been reported.
func (d *Writer) Errors() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errors
}

//nolint:errcheck // Diagnostics are best effort.
func (d *Writer) write(file, msg string) {
	if file == "" {
		file = "{standard input}"
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "%s: %s: %s\n", d.prog, file, msg)
}

// Discard drops every diagnostic.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Notice(string, string, ...any) {}
func (discard) Error(string, error)           {}
