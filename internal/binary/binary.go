// Package binary locates the sections of ELF, PE and Mach-O files.
//
// Every offset and size read from a header is checked against the input length
// before anything is read through it. A header that is out of range or
// inconsistent makes the whole parse fail; callers then scan the file whole.
package binary

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for a format name that is not implemented.
	ErrUnsupportedFormat = errors.New("unsupported object format")
	// ErrUnrecognized means the input carries no known magic number.
	ErrUnrecognized = errors.New("not a recognized object file")
	// ErrMalformed means the headers are out of bounds or contradict each other.
	ErrMalformed = errors.New("malformed object file")
	// ErrTruncated means a header or table extends past the end of the input.
	ErrTruncated = errors.New("truncated object file")
)

// Format represents the type of binary file
type Format int

const (
	// FormatUnknown asks ParseBinary to detect the format
	FormatUnknown Format = iota
	// FormatELF indicates an ELF (Executable and Linkable Format) binary
	FormatELF
	// FormatPE indicates a PE (Portable Executable) binary
	FormatPE
	// FormatMachO indicates a Mach-O (Mach Object) binary
	FormatMachO
	// FormatRaw indicates a raw binary with no specific structure
	FormatRaw
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatELF:
		return "ELF"
	case FormatPE:
		return "PE"
	case FormatMachO:
		return "Mach-O"
	case FormatRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// ParseFormat maps a target name to a Format. The empty string and "auto"
// select detection.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatUnknown, nil
	case "elf", "elf32", "elf64":
		return FormatELF, nil
	case "pe", "pe-coff", "coff":
		return FormatPE, nil
	case "macho", "mach-o":
		return FormatMachO, nil
	case "binary", "raw":
		return FormatRaw, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Section describes one byte range of an object file.
type Section struct {
	// Name is for diagnostics only.
	Name string
	// Offset is the absolute file offset of the first byte.
	Offset uint64
	// Size is the number of bytes the section occupies in the file.
	Size uint64
	// Data is true for initialized, non-executable sections.
	Data bool
}

// End returns the offset one past the last byte.
func (s Section) End() uint64 {
	return s.Offset + s.Size
}

// DetectFormat sniffs the magic number at the start of r. Inputs too short
// to carry one are raw.
func DetectFormat(r io.ReaderAt, size int64) (Format, error) {
	var buf [8]byte
	n, err := r.ReadAt(buf[:], 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return FormatUnknown, err
	}
	if int64(n) > size {
		n = int(size)
	}
	return sniff(buf[:n]), nil
}

func sniff(b []byte) Format {
	switch {
	case len(b) >= 4 && string(b[:4]) == elfMagic:
		return FormatELF
	case len(b) >= 2 && string(b[:2]) == dosMagic:
		return FormatPE
	case len(b) >= 4 && isMachOMagic(b[:4]):
		return FormatMachO
	case len(b) >= 8 && isFatMagic(b[:8]):
		return FormatMachO
	}
	return FormatRaw
}

// ParseBinary enumerates the sections of r, which must hold size bytes.
// FormatUnknown detects the format first. The result is in header order and
// has been checked: every range lies inside the input and no two overlap.
func ParseBinary(r io.ReaderAt, size int64, format Format) ([]Section, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative input size", ErrMalformed)
	}
	if format == FormatUnknown {
		var err error
		if format, err = DetectFormat(r, size); err != nil {
			return nil, err
		}
	}

	v := view{r: r, size: uint64(size)}
	var (
		sections []Section
		err      error
	)
	switch format {
	case FormatELF:
		sections, err = parseELF(v)
	case FormatPE:
		sections, err = parsePE(v)
	case FormatMachO:
		sections, err = parseMachO(v)
	case FormatRaw:
		return nil, ErrUnrecognized
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if err := validate(sections, uint64(size)); err != nil {
		return nil, err
	}
	return sections, nil
}

// DataSections returns the data sections in ascending file-offset order.
func DataSections(sections []Section) []Section {
	var data []Section
	for _, s := range sections {
		if s.Data && s.Size > 0 {
			data = append(data, s)
		}
	}
	slices.SortStableFunc(data, func(a, b Section) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	return data
}

// validate re-checks the final list: in bounds and pairwise disjoint.
func validate(sections []Section, size uint64) error {
	backed := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.Size == 0 {
			continue
		}
		end, ok := addOK(s.Offset, s.Size)
		if !ok || end > size {
			return fmt.Errorf("%w: section %q [%#x, %#x) exceeds input size %#x",
				ErrMalformed, s.Name, s.Offset, s.Offset+s.Size, size)
		}
		backed = append(backed, s)
	}
	slices.SortFunc(backed, func(a, b Section) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	for i := 1; i < len(backed); i++ {
		if backed[i].Offset < backed[i-1].End() {
			return fmt.Errorf("%w: sections %q and %q overlap",
				ErrMalformed, backed[i-1].Name, backed[i].Name)
		}
	}
	return nil
}
