package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

// maxTable caps a single header table read. Larger tables are rejected
// rather than allocated.
const maxTable = 64 << 20

// view is a bounds-checked window of size bytes starting at base in r.
// Offsets passed to its methods are relative to base.
type view struct {
	r     io.ReaderAt
	base  uint64
	size  uint64
	order binary.ByteOrder
}

// sub returns the window [off, off+n) of v.
func (v view) sub(off, n uint64) (view, error) {
	if !v.contains(off, n) {
		return view{}, fmt.Errorf("%w: range [%#x, +%#x) outside %#x-byte input", ErrTruncated, off, n, v.size)
	}
	return view{r: v.r, base: v.base + off, size: n, order: v.order}, nil
}

func (v view) contains(off, n uint64) bool {
	end, ok := addOK(off, n)
	return ok && end <= v.size
}

// read returns a copy of the n bytes at off.
func (v view) read(off, n uint64) ([]byte, error) {
	if !v.contains(off, n) {
		return nil, fmt.Errorf("%w: need %d bytes at %#x, input has %#x", ErrTruncated, n, off, v.size)
	}
	if n > maxTable {
		return nil, fmt.Errorf("%w: %d-byte header table", ErrMalformed, n)
	}
	buf := make([]byte, n)
	got, err := v.r.ReadAt(buf, int64(v.base+off))
	if uint64(got) == n {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: short read at %#x", ErrTruncated, v.base+off)
	}
	return nil, err
}

// table reads count entries of entsize bytes starting at off.
func (v view) table(off, count, entsize uint64) ([]byte, error) {
	hi, n := bits.Mul64(count, entsize)
	if hi != 0 {
		return nil, fmt.Errorf("%w: table of %d %d-byte entries", ErrMalformed, count, entsize)
	}
	return v.read(off, n)
}

// abs converts a window-relative offset to a file offset.
func (v view) abs(off uint64) uint64 {
	return v.base + off
}

func addOK(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// cstring returns the NUL-terminated string at the start of b, or all of b.
func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
