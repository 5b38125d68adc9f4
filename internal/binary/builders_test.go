package binary

import (
	"debug/elf"
	"debug/macho"
	"encoding/binary"
	"testing"
)

type testSection struct {
	name  string
	typ   elf.SectionType
	flags elf.SectionFlag
	data  []byte
}

// buildELF lays out header, section contents, .shstrtab, then the section
// header table. Section 0 is the null section; .shstrtab is last.
func buildELF(t testing.TB, class elf.Class, order binary.ByteOrder, secs []testSection) []byte {
	t.Helper()

	l := elf32
	if class == elf.ELFCLASS64 {
		l = elf64
	}

	strtab := []byte{0}
	all := append(append([]testSection(nil), secs...), testSection{name: ".shstrtab", typ: elf.SHT_STRTAB})
	nameOff := make([]uint32, len(all))
	for i, s := range all {
		nameOff[i] = uint32(len(strtab))
		strtab = append(strtab, s.name...)
		strtab = append(strtab, 0)
	}
	all[len(all)-1].data = strtab

	out := make([]byte, l.ehsize)
	offsets := make([]uint64, len(all))
	for i, s := range all {
		offsets[i] = uint64(len(out))
		if s.typ != elf.SHT_NOBITS {
			out = append(out, s.data...)
		}
	}
	for len(out)%8 != 0 {
		out = append(out, 0)
	}

	shoff := uint64(len(out))
	shnum := uint16(len(all) + 1)
	out = append(out, make([]byte, l.shentsize)...)
	for i, s := range all {
		sh := make([]byte, l.shentsize)
		order.PutUint32(sh[0:], nameOff[i])
		order.PutUint32(sh[4:], uint32(s.typ))
		if l.wide {
			order.PutUint64(sh[8:], uint64(s.flags))
			order.PutUint64(sh[24:], offsets[i])
			order.PutUint64(sh[32:], uint64(len(s.data)))
		} else {
			order.PutUint32(sh[8:], uint32(s.flags))
			order.PutUint32(sh[16:], uint32(offsets[i]))
			order.PutUint32(sh[20:], uint32(len(s.data)))
		}
		out = append(out, sh...)
	}

	copy(out, elf.ELFMAG)
	out[elf.EI_CLASS] = byte(class)
	out[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	if order == binary.BigEndian {
		out[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}
	out[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	order.PutUint16(out[16:], uint16(elf.ET_EXEC))
	order.PutUint32(out[20:], uint32(elf.EV_CURRENT))
	if l.wide {
		order.PutUint64(out[40:], shoff)
		order.PutUint16(out[52:], uint16(l.ehsize))
		order.PutUint16(out[58:], uint16(l.shentsize))
		order.PutUint16(out[60:], shnum)
		order.PutUint16(out[62:], shnum-1)
	} else {
		order.PutUint32(out[32:], uint32(shoff))
		order.PutUint16(out[40:], uint16(l.ehsize))
		order.PutUint16(out[46:], uint16(l.shentsize))
		order.PutUint16(out[48:], shnum)
		order.PutUint16(out[50:], shnum-1)
	}
	return out
}

// elfSectionHeader returns the bytes of section header idx of a 64-bit
// little-endian image built by buildELF.
func elfSectionHeader(img []byte, idx int) []byte {
	shoff := binary.LittleEndian.Uint64(img[40:])
	return img[shoff+uint64(idx)*64:]
}

// scenarioSections is a code section full of printable bytes followed by a
// data section holding "hello".
func scenarioSections() []testSection {
	return []testSection{
		{name: ".text", typ: elf.SHT_PROGBITS, flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, data: []byte("CODECODECODE")},
		{name: ".data", typ: elf.SHT_PROGBITS, flags: elf.SHF_ALLOC | elf.SHF_WRITE, data: []byte("hello\x00\x00\x00")},
	}
}

type testSegment struct {
	flags elf.ProgFlag
	data  []byte
}

// buildELFCore writes a 64-bit little-endian ELF with PT_LOAD segments and
// no section header table.
func buildELFCore(segs []testSegment) []byte {
	o := binary.LittleEndian
	phoff := uint64(elf64.ehsize)
	out := make([]byte, phoff+uint64(len(segs))*elf64.phentsize)

	copy(out, elf.ELFMAG)
	out[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	out[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	out[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	o.PutUint16(out[16:], uint16(elf.ET_CORE))
	o.PutUint32(out[20:], uint32(elf.EV_CURRENT))
	o.PutUint64(out[32:], phoff)
	o.PutUint16(out[52:], uint16(elf64.ehsize))
	o.PutUint16(out[54:], uint16(elf64.phentsize))
	o.PutUint16(out[56:], uint16(len(segs)))

	for i, s := range segs {
		ph := out[phoff+uint64(i)*elf64.phentsize:]
		o.PutUint32(ph[0:], uint32(elf.PT_LOAD))
		o.PutUint32(ph[4:], uint32(s.flags))
		o.PutUint64(ph[8:], uint64(len(out)))
		o.PutUint64(ph[32:], uint64(len(s.data)))
		o.PutUint64(ph[40:], uint64(len(s.data)))
		out = append(out, s.data...)
	}
	return out
}

type testPESection struct {
	name  string
	chars uint32
	data  []byte
}

// buildPE writes a PE32+ image with a 16-entry data directory.
func buildPE(secs []testPESection) []byte {
	o := binary.LittleEndian
	const (
		lfanew  = 0x40
		optSize = pe32PlusFixedSize + 16*8
		rawBase = 0x400
	)
	secTab := lfanew + 4 + coffHeaderSize + optSize
	out := make([]byte, rawBase)

	copy(out, dosMagic)
	o.PutUint32(out[0x3c:], lfanew)
	copy(out[lfanew:], peMagic)
	coff := out[lfanew+4:]
	o.PutUint16(coff[0:], 0x8664)
	o.PutUint16(coff[2:], uint16(len(secs)))
	o.PutUint16(coff[16:], optSize)
	opt := out[lfanew+4+coffHeaderSize:]
	o.PutUint16(opt[0:], 0x20b)
	o.PutUint32(opt[pe32PlusFixedSize-4:], 16)

	for i, s := range secs {
		sh := out[secTab+i*peSectionSize:]
		copy(sh[:8], s.name)
		o.PutUint32(sh[8:], uint32(len(s.data)))
		o.PutUint32(sh[16:], uint32(len(s.data)))
		o.PutUint32(sh[20:], uint32(len(out)))
		o.PutUint32(sh[36:], s.chars)
		out = append(out, s.data...)
	}
	return out
}

type testMachOSection struct {
	seg, name string
	flags     uint32
	data      []byte
}

// buildMachO writes a thin Mach-O with one segment command holding every
// section.
func buildMachO(wide bool, order binary.ByteOrder, secs []testMachOSection) []byte {
	hdrSize, cmdSize, secSize := uint64(machHeaderSize), uint64(segmentCmdSize), uint64(sectionSize)
	magic, cmd := macho.Magic32, macho.LoadCmdSegment
	if wide {
		hdrSize, cmdSize, secSize = machHeaderSize64, segmentCmdSize64, sectionSize64
		magic, cmd = macho.Magic64, macho.LoadCmdSegment64
	}
	sizeofcmds := cmdSize + uint64(len(secs))*secSize
	out := make([]byte, hdrSize+sizeofcmds)

	order.PutUint32(out[0:], magic)
	order.PutUint32(out[12:], uint32(macho.TypeExec))
	order.PutUint32(out[16:], 1)
	order.PutUint32(out[20:], uint32(sizeofcmds))

	seg := out[hdrSize:]
	order.PutUint32(seg[0:], uint32(cmd))
	order.PutUint32(seg[4:], uint32(sizeofcmds))
	copy(seg[8:24], "__SEG")
	order.PutUint32(seg[cmdSize-8:], uint32(len(secs)))

	offset := uint32(len(out))
	for i, s := range secs {
		sh := seg[cmdSize+uint64(i)*secSize:]
		copy(sh[0:16], s.name)
		copy(sh[16:32], s.seg)
		if wide {
			order.PutUint64(sh[40:], uint64(len(s.data)))
			order.PutUint32(sh[48:], offset)
			order.PutUint32(sh[64:], s.flags)
		} else {
			order.PutUint32(sh[36:], uint32(len(s.data)))
			order.PutUint32(sh[40:], offset)
			order.PutUint32(sh[56:], s.flags)
		}
		if s.flags&sectionTypeMask != sectionZerofill {
			offset += uint32(len(s.data))
		}
	}
	for _, s := range secs {
		if s.flags&sectionTypeMask != sectionZerofill {
			out = append(out, s.data...)
		}
	}
	return out
}

// buildFat wraps a thin image as the only slice of a universal binary.
func buildFat(thin []byte) []byte {
	const sliceOffset = 64
	o := binary.BigEndian
	out := make([]byte, sliceOffset, sliceOffset+len(thin))
	o.PutUint32(out[0:], macho.MagicFat)
	o.PutUint32(out[4:], 1)
	o.PutUint32(out[8:], uint32(macho.CpuArm64))
	o.PutUint32(out[16:], sliceOffset)
	o.PutUint32(out[20:], uint32(len(thin)))
	o.PutUint32(out[24:], 6)
	return append(out, thin...)
}

func machoSections() []testMachOSection {
	return []testMachOSection{
		{seg: "__TEXT", name: "__text", flags: sectionPureInstructions | sectionSomeInstructions, data: []byte("CODECODE")},
		{seg: "__TEXT", name: "__cstring", data: []byte("hello\x00")},
		{seg: "__DATA", name: "__data", data: []byte("world\x00")},
		{seg: "__DATA", name: "__bss", flags: sectionZerofill, data: make([]byte, 16)},
	}
}
