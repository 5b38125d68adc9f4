package binary

import (
	"debug/pe"
	"encoding/binary"
	"fmt"
)

const (
	dosMagic = "MZ"
	peMagic  = "PE\x00\x00"

	dosHeaderSize  = 0x40
	coffHeaderSize = 20
	peSectionSize  = 40

	// Optional header sizes before the data directories.
	pe32FixedSize     = 96
	pe32PlusFixedSize = 112

	// Loader limit on the number of sections in an image.
	maxPESections = 96
)

func parsePE(v view) ([]Section, error) {
	v.order = binary.LittleEndian

	dos, err := v.read(0, dosHeaderSize)
	if err != nil {
		return nil, err
	}
	if string(dos[:2]) != dosMagic {
		return nil, fmt.Errorf("%w: missing MZ signature", ErrMalformed)
	}
	lfanew := uint64(v.order.Uint32(dos[0x3c:]))

	hdr, err := v.read(lfanew, uint64(len(peMagic))+coffHeaderSize)
	if err != nil {
		return nil, err
	}
	if string(hdr[:4]) != peMagic {
		return nil, fmt.Errorf("%w: missing PE signature at %#x", ErrMalformed, lfanew)
	}
	coff := hdr[4:]
	nsections := uint64(v.order.Uint16(coff[2:]))
	optSize := uint64(v.order.Uint16(coff[16:]))

	optOff := lfanew + uint64(len(peMagic)) + coffHeaderSize
	if optSize > 0 {
		if err := checkOptionalHeader(v, optOff, optSize); err != nil {
			return nil, err
		}
	}

	if nsections > maxPESections {
		return nil, fmt.Errorf("%w: %d sections exceeds limit of %d", ErrMalformed, nsections, maxPESections)
	}
	tab, err := v.table(optOff+optSize, nsections, peSectionSize)
	if err != nil {
		return nil, err
	}

	sections := make([]Section, 0, nsections)
	for i := uint64(0); i < nsections; i++ {
		b := tab[i*peSectionSize:]
		name := cstring(b[:8])
		size := uint64(v.order.Uint32(b[16:]))
		offset := uint64(v.order.Uint32(b[20:]))
		chars := v.order.Uint32(b[36:])

		if size == 0 || offset == 0 {
			continue
		}
		if !v.contains(offset, size) {
			return nil, fmt.Errorf("%w: section %q [%#x, +%#x) exceeds input size %#x",
				ErrMalformed, name, offset, size, v.size)
		}
		if name == "" {
			name = fmt.Sprintf("[%d]", i)
		}
		sections = append(sections, Section{
			Name:   name,
			Offset: v.abs(offset),
			Size:   size,
			Data: chars&pe.IMAGE_SCN_CNT_INITIALIZED_DATA != 0 &&
				chars&(pe.IMAGE_SCN_CNT_CODE|pe.IMAGE_SCN_MEM_EXECUTE) == 0,
		})
	}
	return sections, nil
}

// checkOptionalHeader verifies that the declared optional header size agrees
// with its magic and data directory count.
func checkOptionalHeader(v view, off, size uint64) error {
	b, err := v.read(off, size)
	if err != nil {
		return err
	}
	if size < 2 {
		return fmt.Errorf("%w: %d-byte optional header", ErrMalformed, size)
	}

	var fixed uint64
	switch magic := v.order.Uint16(b); magic {
	case 0x10b:
		fixed = pe32FixedSize
	case 0x20b:
		fixed = pe32PlusFixedSize
	default:
		return fmt.Errorf("%w: unknown optional header magic %#x", ErrMalformed, magic)
	}
	if size < fixed {
		return fmt.Errorf("%w: optional header is %d bytes, need at least %d", ErrMalformed, size, fixed)
	}
	ndirs := uint64(v.order.Uint32(b[fixed-4:]))
	if ndirs > 16 || fixed+ndirs*8 > size {
		return fmt.Errorf("%w: %d data directories do not fit a %d-byte optional header", ErrMalformed, ndirs, size)
	}
	return nil
}
