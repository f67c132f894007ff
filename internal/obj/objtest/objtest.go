// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package objtest builds small ELF core files for tests.
package objtest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/loongdbg/loongtdep/internal/arch"
)

// Thread is a thread to record in a core file.
type Thread struct {
	LWP    int
	Signal int
	Regs   []byte // .reg image
}

// Segment is a PT_LOAD segment. Memsz may exceed len(Data).
type Segment struct {
	Vaddr uint64
	Data  []byte
	Memsz uint64
}

// Core returns an ELF core file image for a, with one NT_PRSTATUS
// note per thread.
func Core(a *arch.Arch, osabi elf.OSABI, threads []Thread, segs []Segment) []byte {
	ws := a.Layout.WordSize
	order := a.Layout.Order

	var notes bytes.Buffer
	for _, t := range threads {
		regOff, pidOff := 112, 32
		if ws == 4 {
			regOff, pidOff = 72, 24
		}
		desc := make([]byte, regOff+len(t.Regs)+ws)
		order.PutUint32(desc[0:], uint32(t.Signal))
		order.PutUint16(desc[12:], uint16(t.Signal))
		order.PutUint32(desc[pidOff:], uint32(t.LWP))
		copy(desc[regOff:], t.Regs)
		writeNote(&notes, order, "CORE", elf.NT_PRSTATUS, desc)
	}
	writeNote(&notes, order, "CORE", elf.NT_PRPSINFO, make([]byte, 136))

	ehsize, phentsize := 64, 56
	if ws == 4 {
		ehsize, phentsize = 52, 32
	}
	phnum := 1 + len(segs)
	off := uint64(ehsize + phnum*phentsize)

	type phdr struct {
		typ                       elf.ProgType
		flags                     elf.ProgFlag
		off, vaddr, filesz, memsz uint64
	}
	phdrs := []phdr{{elf.PT_NOTE, 0, off, 0, uint64(notes.Len()), 0}}
	off += uint64(notes.Len())
	for _, s := range segs {
		memsz := s.Memsz
		if memsz < uint64(len(s.Data)) {
			memsz = uint64(len(s.Data))
		}
		phdrs = append(phdrs, phdr{elf.PT_LOAD, elf.PF_R | elf.PF_X, off, s.Vaddr, uint64(len(s.Data)), memsz})
		off += uint64(len(s.Data))
	}

	var out bytes.Buffer
	word := func(v uint64) {
		if ws == 4 {
			binary.Write(&out, order, uint32(v))
		} else {
			binary.Write(&out, order, v)
		}
	}
	class := elf.ELFCLASS64
	if ws == 4 {
		class = elf.ELFCLASS32
	}
	ident := [16]byte{0x7f, 'E', 'L', 'F', byte(class), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT), byte(osabi)}
	out.Write(ident[:])
	binary.Write(&out, order, uint16(elf.ET_CORE))
	binary.Write(&out, order, uint16(elf.EM_LOONGARCH))
	binary.Write(&out, order, uint32(elf.EV_CURRENT))
	word(0) // entry
	word(uint64(ehsize))
	word(0)
	binary.Write(&out, order, uint32(0))
	binary.Write(&out, order, uint16(ehsize))
	binary.Write(&out, order, uint16(phentsize))
	binary.Write(&out, order, uint16(phnum))
	binary.Write(&out, order, uint16(0)) // shentsize
	binary.Write(&out, order, uint16(0)) // shnum
	binary.Write(&out, order, uint16(0)) // shstrndx

	for _, p := range phdrs {
		if ws == 4 {
			binary.Write(&out, order, uint32(p.typ))
			word(p.off)
			word(p.vaddr)
			word(p.vaddr)
			word(p.filesz)
			word(p.memsz)
			binary.Write(&out, order, uint32(p.flags))
			word(4)
		} else {
			binary.Write(&out, order, uint32(p.typ))
			binary.Write(&out, order, uint32(p.flags))
			word(p.off)
			word(p.vaddr)
			word(p.vaddr)
			word(p.filesz)
			word(p.memsz)
			word(8)
		}
	}
	out.Write(notes.Bytes())
	for _, s := range segs {
		out.Write(s.Data)
	}
	return out.Bytes()
}

func writeNote(w *bytes.Buffer, order binary.ByteOrder, name string, typ elf.NType, desc []byte) {
	binary.Write(w, order, uint32(len(name)+1))
	binary.Write(w, order, uint32(len(desc)))
	binary.Write(w, order, uint32(typ))
	w.WriteString(name)
	w.Write(make([]byte, pad4(len(name)+1)-len(name)))
	w.Write(desc)
	w.Write(make([]byte, pad4(len(desc))-len(desc)))
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

// Func is a function defined in the .text section of an executable.
type Func struct {
	Name  string
	Value uint64
	Size  uint64
}

// Exe addresses.
const (
	TextAddr = 0x120000000
	PLTAddr  = 0x120001000
)

// Exe64 returns a 64-bit LoongArch executable image with only
// dynamic symbols: funcs defined in .text and imports undefined,
// each import with a .plt stub and a .rela.plt jump slot relocation.
func Exe64(funcs []Func, imports []string) []byte {
	order := binary.LittleEndian
	const ehsize, shentsize = 64, 64

	var strtab, shstrtab bytes.Buffer
	str := func(b *bytes.Buffer, s string) uint32 {
		if b.Len() == 0 {
			b.WriteByte(0)
		}
		off := uint32(b.Len())
		b.WriteString(s)
		b.WriteByte(0)
		return off
	}

	var dynsym, rela bytes.Buffer
	binary.Write(&dynsym, order, elf.Sym64{})
	for i, name := range imports {
		binary.Write(&dynsym, order, elf.Sym64{
			Name: str(&strtab, name),
			Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC),
		})
		binary.Write(&rela, order, elf.Rela64{
			Off:  0x120002000 + 8*uint64(i),
			Info: elf.R_INFO(uint32(1+i), uint32(elf.R_LARCH_JUMP_SLOT)),
		})
	}
	for _, fn := range funcs {
		binary.Write(&dynsym, order, elf.Sym64{
			Name:  str(&strtab, fn.Name),
			Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC),
			Shndx: 1,
			Value: fn.Value,
			Size:  fn.Size,
		})
	}

	text := make([]byte, 256)
	plt := make([]byte, 32+16*len(imports))

	type section struct {
		name  string
		typ   elf.SectionType
		flags elf.SectionFlag
		addr  uint64
		data  []byte
		link  uint32
		ent   uint64
	}
	// shstrtab is last, so its contents are complete before it
	// is laid out.
	sects := []section{
		{},
		{".text", elf.SHT_PROGBITS, elf.SHF_ALLOC | elf.SHF_EXECINSTR, TextAddr, text, 0, 0},
		{".plt", elf.SHT_PROGBITS, elf.SHF_ALLOC | elf.SHF_EXECINSTR, PLTAddr, plt, 0, 0},
		{".rela.plt", elf.SHT_RELA, elf.SHF_ALLOC, 0, rela.Bytes(), 4, 24},
		{".dynsym", elf.SHT_DYNSYM, elf.SHF_ALLOC, 0, dynsym.Bytes(), 5, 24},
		{".dynstr", elf.SHT_STRTAB, elf.SHF_ALLOC, 0, strtab.Bytes(), 0, 0},
		{".shstrtab", elf.SHT_STRTAB, 0, 0, nil, 0, 0},
	}
	names := make([]uint32, len(sects))
	for i := 1; i < len(sects); i++ {
		names[i] = str(&shstrtab, sects[i].name)
	}
	sects[len(sects)-1].data = shstrtab.Bytes()

	var body bytes.Buffer
	offs := make([]uint64, len(sects))
	for i, s := range sects {
		offs[i] = uint64(ehsize + body.Len())
		body.Write(s.data)
		body.Write(make([]byte, (8-body.Len()%8)%8))
	}
	shoff := uint64(ehsize + body.Len())

	var out bytes.Buffer
	hdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_LOONGARCH),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     TextAddr,
		Shoff:     shoff,
		Ehsize:    ehsize,
		Shentsize: shentsize,
		Shnum:     uint16(len(sects)),
		Shstrndx:  uint16(len(sects) - 1),
	}
	copy(hdr.Ident[:], []byte{0x7f, 'E', 'L', 'F', byte(elf.ELFCLASS64), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT)})
	binary.Write(&out, order, hdr)
	out.Write(body.Bytes())
	for i, s := range sects {
		sh := elf.Section64{
			Name:      names[i],
			Type:      uint32(s.typ),
			Flags:     uint64(s.flags),
			Addr:      s.addr,
			Off:       offs[i],
			Size:      uint64(len(s.data)),
			Link:      s.link,
			Addralign: 8,
			Entsize:   s.ent,
		}
		if i == 0 {
			sh = elf.Section64{}
		}
		binary.Write(&out, order, sh)
	}
	return out.Bytes()
}
