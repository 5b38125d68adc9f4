package binary

import (
	"debug/macho"
	"encoding/binary"
	"fmt"
)

const (
	machHeaderSize   = 28
	machHeaderSize64 = 32

	segmentCmdSize   = 56
	segmentCmdSize64 = 72
	sectionSize      = 68
	sectionSize64    = 80

	fatMagic64     = 0xcafebabf
	fatHeaderSize  = 8
	fatArchSize    = 20
	fatArchSize64  = 32
	maxFatArchs    = 30
	loadCmdMinSize = 8

	// Section type and attribute bits of section.flags.
	sectionTypeMask         = 0x000000ff
	sectionZerofill         = 0x1
	sectionGBZerofill       = 0xc
	sectionThreadLocalZero  = 0x12
	sectionPureInstructions = 0x80000000
	sectionSomeInstructions = 0x00000400
)

func isMachOMagic(b []byte) bool {
	be, le := binary.BigEndian.Uint32(b), binary.LittleEndian.Uint32(b)
	return be == macho.Magic32 || be == macho.Magic64 || le == macho.Magic32 || le == macho.Magic64
}

// isFatMagic also requires a plausible architecture count, since Java class
// files share the 0xcafebabe magic and carry their version number there.
func isFatMagic(b []byte) bool {
	magic := binary.BigEndian.Uint32(b)
	if magic != macho.MagicFat && magic != fatMagic64 {
		return false
	}
	n := binary.BigEndian.Uint32(b[4:])
	return n > 0 && n <= maxFatArchs
}

func parseMachO(v view) ([]Section, error) {
	head, err := v.read(0, fatHeaderSize)
	if err != nil {
		return nil, err
	}
	if isFatMagic(head) {
		slice, err := firstFatSlice(v, head)
		if err != nil {
			return nil, err
		}
		return parseThinMachO(slice)
	}
	return parseThinMachO(v)
}

// firstFatSlice returns the window of the first architecture in a universal
// binary.
func firstFatSlice(v view, head []byte) (view, error) {
	v.order = binary.BigEndian
	wide := v.order.Uint32(head) == fatMagic64

	entsize := uint64(fatArchSize)
	if wide {
		entsize = fatArchSize64
	}
	b, err := v.read(fatHeaderSize, entsize)
	if err != nil {
		return view{}, err
	}

	var offset, size uint64
	if wide {
		offset = v.order.Uint64(b[8:])
		size = v.order.Uint64(b[16:])
	} else {
		offset = uint64(v.order.Uint32(b[8:]))
		size = uint64(v.order.Uint32(b[12:]))
	}
	if offset < fatHeaderSize {
		return view{}, fmt.Errorf("%w: architecture offset %#x overlaps fat header", ErrMalformed, offset)
	}
	slice, err := v.sub(offset, size)
	if err != nil {
		return view{}, fmt.Errorf("%w: architecture [%#x, +%#x) exceeds input size %#x", ErrMalformed, offset, size, v.size)
	}
	return slice, nil
}

func parseThinMachO(v view) ([]Section, error) {
	magic, err := v.read(0, 4)
	if err != nil {
		return nil, err
	}
	var wide bool
	switch {
	case binary.BigEndian.Uint32(magic) == macho.Magic32:
		v.order = binary.BigEndian
	case binary.BigEndian.Uint32(magic) == macho.Magic64:
		v.order, wide = binary.BigEndian, true
	case binary.LittleEndian.Uint32(magic) == macho.Magic32:
		v.order = binary.LittleEndian
	case binary.LittleEndian.Uint32(magic) == macho.Magic64:
		v.order, wide = binary.LittleEndian, true
	default:
		return nil, fmt.Errorf("%w: missing Mach-O magic", ErrMalformed)
	}

	hdrSize := uint64(machHeaderSize)
	if wide {
		hdrSize = machHeaderSize64
	}
	hdr, err := v.read(0, hdrSize)
	if err != nil {
		return nil, err
	}
	ncmds := uint64(v.order.Uint32(hdr[16:]))
	sizeofcmds := uint64(v.order.Uint32(hdr[20:]))

	cmds, err := v.read(hdrSize, sizeofcmds)
	if err != nil {
		return nil, err
	}

	var sections []Section
	var off uint64
	for i := uint64(0); i < ncmds; i++ {
		if off+loadCmdMinSize > sizeofcmds {
			return nil, fmt.Errorf("%w: load command %d starts past sizeofcmds %d", ErrMalformed, i, sizeofcmds)
		}
		cmd := macho.LoadCmd(v.order.Uint32(cmds[off:]))
		cmdsize := uint64(v.order.Uint32(cmds[off+4:]))
		if cmdsize < loadCmdMinSize || cmdsize > sizeofcmds-off {
			return nil, fmt.Errorf("%w: load command %d has size %d", ErrMalformed, i, cmdsize)
		}
		body := cmds[off : off+cmdsize]

		switch {
		case cmd == macho.LoadCmdSegment && !wide:
			secs, err := machoSegment(v, body, false)
			if err != nil {
				return nil, err
			}
			sections = append(sections, secs...)
		case cmd == macho.LoadCmdSegment64 && wide:
			secs, err := machoSegment(v, body, true)
			if err != nil {
				return nil, err
			}
			sections = append(sections, secs...)
		case cmd == macho.LoadCmdSegment || cmd == macho.LoadCmdSegment64:
			return nil, fmt.Errorf("%w: load command %d is %v, wrong class for this header", ErrMalformed, i, cmd)
		}
		off += cmdsize
	}
	return sections, nil
}

// machoSegment decodes the sections of one LC_SEGMENT or LC_SEGMENT_64.
func machoSegment(v view, b []byte, wide bool) ([]Section, error) {
	cmdSize, secSize := uint64(segmentCmdSize), uint64(sectionSize)
	if wide {
		cmdSize, secSize = segmentCmdSize64, sectionSize64
	}
	if uint64(len(b)) < cmdSize {
		return nil, fmt.Errorf("%w: %d-byte segment command", ErrMalformed, len(b))
	}
	segname := cstring(b[8:24])
	nsects := uint64(v.order.Uint32(b[cmdSize-8:]))
	if cmdSize+nsects*secSize != uint64(len(b)) {
		return nil, fmt.Errorf("%w: segment %q declares %d sections in a %d-byte command", ErrMalformed, segname, nsects, len(b))
	}

	sections := make([]Section, 0, nsects)
	for i := uint64(0); i < nsects; i++ {
		s := b[cmdSize+i*secSize:]
		name := cstring(s[0:16])
		seg := cstring(s[16:32])

		var size, offset uint64
		var flags uint32
		if wide {
			size = v.order.Uint64(s[40:])
			offset = uint64(v.order.Uint32(s[48:]))
			flags = v.order.Uint32(s[64:])
		} else {
			size = uint64(v.order.Uint32(s[36:]))
			offset = uint64(v.order.Uint32(s[40:]))
			flags = v.order.Uint32(s[56:])
		}

		switch flags & sectionTypeMask {
		case sectionZerofill, sectionGBZerofill, sectionThreadLocalZero:
			continue
		}
		if size == 0 {
			continue
		}
		if !v.contains(offset, size) {
			return nil, fmt.Errorf("%w: section %s.%s [%#x, +%#x) exceeds input size %#x",
				ErrMalformed, seg, name, offset, size, v.size)
		}
		sections = append(sections, Section{
			Name:   seg + "." + name,
			Offset: v.abs(offset),
			Size:   size,
			Data:   flags&(sectionPureInstructions|sectionSomeInstructions) == 0,
		})
	}
	return sections, nil
}
