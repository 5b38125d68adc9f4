package binary

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
)

const (
	elfMagic = elf.ELFMAG

	// pnXNum in e_phnum means the count is stored in section 0.
	pnXNum = 0xffff
)

// elfLayout holds the class-dependent sizes and field positions.
type elfLayout struct {
	ehsize, shentsize, phentsize uint64
	wide                         bool
}

var (
	elf32 = elfLayout{ehsize: 52, shentsize: 40, phentsize: 32}
	elf64 = elfLayout{ehsize: 64, shentsize: 64, phentsize: 56, wide: true}
)

// elfHeader is the subset of the file header the locator needs.
type elfHeader struct {
	layout    elfLayout
	phoff     uint64
	shoff     uint64
	phnum     uint64
	shnum     uint64
	shstrndx  uint64
	phentsize uint64
	shentsize uint64
}

// elfSection is one decoded section header entry.
type elfSection struct {
	name   uint32
	typ    elf.SectionType
	flags  uint64
	offset uint64
	size   uint64
	link   uint32
}

func parseELF(v view) ([]Section, error) {
	ident, err := v.read(0, elf.EI_NIDENT)
	if err != nil {
		return nil, err
	}
	if string(ident[:4]) != elfMagic {
		return nil, fmt.Errorf("%w: missing ELF magic", ErrMalformed)
	}

	var layout elfLayout
	switch elf.Class(ident[elf.EI_CLASS]) {
	case elf.ELFCLASS32:
		layout = elf32
	case elf.ELFCLASS64:
		layout = elf64
	default:
		return nil, fmt.Errorf("%w: unsupported ELF class %d", ErrMalformed, ident[elf.EI_CLASS])
	}
	switch elf.Data(ident[elf.EI_DATA]) {
	case elf.ELFDATA2LSB:
		v.order = binary.LittleEndian
	case elf.ELFDATA2MSB:
		v.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: unsupported ELF data encoding %d", ErrMalformed, ident[elf.EI_DATA])
	}
	if elf.Version(ident[elf.EI_VERSION]) != elf.EV_CURRENT {
		return nil, fmt.Errorf("%w: unsupported ELF ident version %d", ErrMalformed, ident[elf.EI_VERSION])
	}

	h, err := readELFHeader(v, layout)
	if err != nil {
		return nil, err
	}

	if h.shoff != 0 {
		return elfSections(v, h)
	}
	if h.phnum > 0 {
		return elfSegments(v, h)
	}
	return nil, nil
}

func readELFHeader(v view, layout elfLayout) (elfHeader, error) {
	b, err := v.read(0, layout.ehsize)
	if err != nil {
		return elfHeader{}, err
	}
	o := v.order
	h := elfHeader{layout: layout}

	var version uint32
	var ehsize uint64
	if layout.wide {
		version = o.Uint32(b[20:])
		h.phoff = o.Uint64(b[32:])
		h.shoff = o.Uint64(b[40:])
		ehsize = uint64(o.Uint16(b[52:]))
		h.phentsize = uint64(o.Uint16(b[54:]))
		h.phnum = uint64(o.Uint16(b[56:]))
		h.shentsize = uint64(o.Uint16(b[58:]))
		h.shnum = uint64(o.Uint16(b[60:]))
		h.shstrndx = uint64(o.Uint16(b[62:]))
	} else {
		version = o.Uint32(b[20:])
		h.phoff = uint64(o.Uint32(b[28:]))
		h.shoff = uint64(o.Uint32(b[32:]))
		ehsize = uint64(o.Uint16(b[40:]))
		h.phentsize = uint64(o.Uint16(b[42:]))
		h.phnum = uint64(o.Uint16(b[44:]))
		h.shentsize = uint64(o.Uint16(b[46:]))
		h.shnum = uint64(o.Uint16(b[48:]))
		h.shstrndx = uint64(o.Uint16(b[50:]))
	}

	if elf.Version(version) != elf.EV_CURRENT {
		return h, fmt.Errorf("%w: unsupported ELF version %d", ErrMalformed, version)
	}
	if ehsize != layout.ehsize {
		return h, fmt.Errorf("%w: e_ehsize %d, want %d", ErrMalformed, ehsize, layout.ehsize)
	}
	if h.shoff != 0 && h.shentsize != layout.shentsize {
		return h, fmt.Errorf("%w: e_shentsize %d, want %d", ErrMalformed, h.shentsize, layout.shentsize)
	}
	if h.phnum != 0 && h.phentsize != layout.phentsize {
		return h, fmt.Errorf("%w: e_phentsize %d, want %d", ErrMalformed, h.phentsize, layout.phentsize)
	}
	return h, nil
}

func (l elfLayout) section(o binary.ByteOrder, b []byte) elfSection {
	s := elfSection{
		name: o.Uint32(b[0:]),
		typ:  elf.SectionType(o.Uint32(b[4:])),
	}
	if l.wide {
		s.flags = o.Uint64(b[8:])
		s.offset = o.Uint64(b[24:])
		s.size = o.Uint64(b[32:])
		s.link = o.Uint32(b[40:])
	} else {
		s.flags = uint64(o.Uint32(b[8:]))
		s.offset = uint64(o.Uint32(b[16:]))
		s.size = uint64(o.Uint32(b[20:]))
		s.link = o.Uint32(b[24:])
	}
	return s
}

// fileBacked reports whether the section occupies bytes in the file.
func (s elfSection) fileBacked() bool {
	return s.typ != elf.SHT_NULL && s.typ != elf.SHT_NOBITS && s.size > 0
}

func (s elfSection) isData() bool {
	return s.fileBacked() &&
		s.flags&uint64(elf.SHF_ALLOC) != 0 &&
		s.flags&uint64(elf.SHF_EXECINSTR) == 0
}

func elfSections(v view, h elfHeader) ([]Section, error) {
	o := v.order
	l := h.layout

	// Section 0 carries the real count and string table index when they do
	// not fit in the file header.
	first, err := v.read(h.shoff, l.shentsize)
	if err != nil {
		return nil, err
	}
	zero := l.section(o, first)
	shnum := h.shnum
	if shnum == 0 {
		shnum = zero.size
	}
	shstrndx := h.shstrndx
	if shstrndx == uint64(elf.SHN_XINDEX) {
		shstrndx = uint64(zero.link)
	}
	if shnum == 0 {
		return nil, fmt.Errorf("%w: section header table at %#x has no entries", ErrMalformed, h.shoff)
	}
	if shstrndx != uint64(elf.SHN_UNDEF) && shstrndx >= shnum {
		return nil, fmt.Errorf("%w: e_shstrndx %d out of range (%d sections)", ErrMalformed, shstrndx, shnum)
	}

	tab, err := v.table(h.shoff, shnum, l.shentsize)
	if err != nil {
		return nil, err
	}
	headers := make([]elfSection, shnum)
	for i := range headers {
		headers[i] = l.section(o, tab[uint64(i)*l.shentsize:])
		if headers[i].fileBacked() && !v.contains(headers[i].offset, headers[i].size) {
			return nil, fmt.Errorf("%w: section %d [%#x, +%#x) exceeds input size %#x",
				ErrMalformed, i, headers[i].offset, headers[i].size, v.size)
		}
	}

	var names []byte
	if shstrndx != uint64(elf.SHN_UNDEF) {
		strtab := headers[shstrndx]
		if strtab.typ != elf.SHT_STRTAB {
			return nil, fmt.Errorf("%w: section %d named as string table has type %v", ErrMalformed, shstrndx, strtab.typ)
		}
		if names, err = v.read(strtab.offset, strtab.size); err != nil {
			return nil, err
		}
	}

	sections := make([]Section, 0, shnum)
	for i, s := range headers {
		if !s.fileBacked() {
			continue
		}
		name := fmt.Sprintf("[%d]", i)
		if names != nil {
			if uint64(s.name) >= uint64(len(names)) {
				return nil, fmt.Errorf("%w: section %d name offset %d outside string table", ErrMalformed, i, s.name)
			}
			if n := cstring(names[s.name:]); n != "" {
				name = n
			}
		}
		sections = append(sections, Section{
			Name:   name,
			Offset: v.abs(s.offset),
			Size:   s.size,
			Data:   s.isData(),
		})
	}
	return sections, nil
}

// elfSegments describes PT_LOAD segments for files without a section table,
// such as core dumps.
func elfSegments(v view, h elfHeader) ([]Section, error) {
	if h.phnum == pnXNum {
		return nil, fmt.Errorf("%w: extended program header count without section table", ErrMalformed)
	}
	tab, err := v.table(h.phoff, h.phnum, h.layout.phentsize)
	if err != nil {
		return nil, err
	}
	o := v.order

	var segments []Section
	for i := uint64(0); i < h.phnum; i++ {
		b := tab[i*h.layout.phentsize:]
		var (
			flags          elf.ProgFlag
			offset, filesz uint64
		)
		if elf.ProgType(o.Uint32(b[0:])) != elf.PT_LOAD {
			continue
		}
		if h.layout.wide {
			flags = elf.ProgFlag(o.Uint32(b[4:]))
			offset = o.Uint64(b[8:])
			filesz = o.Uint64(b[32:])
		} else {
			offset = uint64(o.Uint32(b[4:]))
			filesz = uint64(o.Uint32(b[16:]))
			flags = elf.ProgFlag(o.Uint32(b[24:]))
		}
		if filesz == 0 {
			continue
		}
		if !v.contains(offset, filesz) {
			return nil, fmt.Errorf("%w: segment %d [%#x, +%#x) exceeds input size %#x",
				ErrMalformed, i, offset, filesz, v.size)
		}
		segments = append(segments, Section{
			Name:   fmt.Sprintf("LOAD[%d]", i),
			Offset: v.abs(offset),
			Size:   filesz,
			Data:   flags&elf.PF_X == 0,
		})
	}
	return segments, nil
}
