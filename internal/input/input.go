// Package input opens files as sized, random-access inputs. Large regular
// files are memory-mapped; everything else goes through the file descriptor.
package input

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/exp/mmap"
)

// DefaultMmapThreshold is the file size from which mapping is attempted.
const DefaultMmapThreshold = 1 << 20

// ErrIsDirectory is returned when a path names a directory.
var ErrIsDirectory = errors.New("is a directory")

// Options controls how files are opened.
type Options struct {
	DisableMmap   bool
	MmapThreshold int64
}

// File is an opened input with a known length.
type File struct {
	name   string
	ra     io.ReaderAt
	size   int64
	closer io.Closer
	mapped bool
}

// shouldUseMmap reports whether a file of the given mode and size is mapped.
// Pipes, devices and files below the threshold are read through the descriptor.
func shouldUseMmap(info fs.FileInfo, opts Options) bool {
	if opts.DisableMmap || !info.Mode().IsRegular() {
		return false
	}
	threshold := opts.MmapThreshold
	if threshold <= 0 {
		threshold = DefaultMmapThreshold
	}
	return info.Size() >= threshold
}

// Open opens path for scanning. Errors carry no path prefix; callers add it.
func Open(path string, opts Options) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, unwrapPath(err)
	}
	if info.IsDir() {
		return nil, ErrIsDirectory
	}

	if shouldUseMmap(info, opts) {
		if r, err := mmap.Open(path); err == nil {
			return &File{name: path, ra: r, size: int64(r.Len()), closer: r, mapped: true}, nil
		}
		// Mapping can fail on special filesystems or resource limits; read
		// through the descriptor instead.
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, unwrapPath(err)
	}
	adviseSequential(f)
	return &File{name: path, ra: f, size: info.Size(), closer: f}, nil
}

// Name returns the path the file was opened with.
func (f *File) Name() string { return f.name }

// Size returns the input length in bytes.
func (f *File) Size() int64 { return f.size }

// Mapped reports whether the file is memory-mapped.
func (f *File) Mapped() bool { return f.mapped }

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.ra.ReadAt(p, off)
}

// Reader returns a sequential reader over the whole file.
func (f *File) Reader() io.Reader {
	return io.NewSectionReader(f.ra, 0, f.size)
}

// Close releases the mapping or descriptor.
func (f *File) Close() error {
	if err := f.closer.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}
	return nil
}

func unwrapPath(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
