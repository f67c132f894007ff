// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obj

import (
	"debug/elf"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/loongdbg/loongtdep/internal/arch"
)

type elfFile struct {
	elf  *elf.File
	arch *arch.Arch
}

func openElf(r io.ReaderAt) (Obj, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading ELF header")
	}
	a := arch.FromELF(f.Machine, f.Class)
	if a == nil {
		return nil, errors.Errorf("unsupported ELF machine %v (%v)", f.Machine, f.Class)
	}
	return &elfFile{f, a}, nil
}

func (f *elfFile) Arch() *arch.Arch {
	return f.arch
}

func (f *elfFile) Symbols() ([]Sym, error) {
	syms, err := f.elf.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, errors.Wrap(err, "reading symbols")
	}
	dyn, err := f.elf.DynamicSymbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, errors.Wrap(err, "reading dynamic symbols")
	}
	if len(syms) == 0 {
		syms = dyn
	}

	var out []Sym
	havePLT := false
	for _, s := range syms {
		kind, ok := f.symKind(s)
		if !ok {
			continue
		}
		havePLT = havePLT || kind == SymTrampoline
		local := elf.ST_BIND(s.Info) == elf.STB_LOCAL
		out = append(out, Sym{s.Name, s.Value, s.Size, kind, local, int(s.Section)})
	}
	if !havePLT {
		plt, err := f.pltSymbols(dyn)
		if err != nil {
			return nil, err
		}
		out = append(out, plt...)
	}
	return out, nil
}

// symKind classifies s by the flags of its section. It returns false
// for symbols in sections that do not exist.
func (f *elfFile) symKind(s elf.Symbol) (SymKind, bool) {
	switch s.Section {
	case elf.SHN_UNDEF:
		return SymUndef, true
	case elf.SHN_COMMON:
		return SymBSS, true
	}
	if s.Section < 0 || s.Section >= elf.SectionIndex(len(f.elf.Sections)) {
		return SymUnknown, false
	}
	sect := f.elf.Sections[s.Section]
	switch sect.Flags & (elf.SHF_WRITE | elf.SHF_ALLOC | elf.SHF_EXECINSTR) {
	case elf.SHF_ALLOC | elf.SHF_EXECINSTR:
		if sect.Name == ".plt" || strings.HasSuffix(s.Name, "@plt") {
			return SymTrampoline, true
		}
		return SymText, true
	case elf.SHF_ALLOC:
		return SymROData, true
	case elf.SHF_ALLOC | elf.SHF_WRITE:
		if sect.Type == elf.SHT_NOBITS {
			return SymBSS, true
		}
		return SymData, true
	}
	return SymUnknown, true
}

// LoongArch PLT layout: a 32 byte header followed by one 16 byte stub
// per .rela.plt entry, in relocation order.
const (
	pltHeaderSize = 32
	pltEntrySize  = 16
)

// pltSymbols synthesizes a "name@plt" trampoline symbol for each
// stub in .plt, naming it after the dynamic symbol its .rela.plt
// relocation refers to.
func (f *elfFile) pltSymbols(dyn []elf.Symbol) ([]Sym, error) {
	plt, rela := f.elf.Section(".plt"), f.elf.Section(".rela.plt")
	if plt == nil || rela == nil || len(dyn) == 0 {
		return nil, nil
	}
	data, err := rela.Data()
	if err != nil {
		return nil, errors.Wrap(err, "reading .rela.plt")
	}

	entSize, symShift := 24, 32
	if f.elf.Class == elf.ELFCLASS32 {
		entSize, symShift = 12, 8
	}
	l := f.arch.Layout
	var out []Sym
	for i := 0; (i+1)*entSize <= len(data); i++ {
		ent := data[i*entSize:]
		info := l.Uint(ent[l.WordSize:])
		// DynamicSymbols omits the null symbol at index 0.
		symIdx := int(info >> symShift)
		if symIdx < 1 || symIdx > len(dyn) {
			continue
		}
		addr := plt.Addr + pltHeaderSize + uint64(i)*pltEntrySize
		if addr+pltEntrySize > plt.Addr+plt.Size {
			break
		}
		out = append(out, Sym{
			Name:    dyn[symIdx-1].Name + "@plt",
			Value:   addr,
			Size:    pltEntrySize,
			Kind:    SymTrampoline,
			section: sectionIndex(f.elf, plt),
		})
	}
	return out, nil
}

func sectionIndex(f *elf.File, s *elf.Section) int {
	for i, s2 := range f.Sections {
		if s2 == s {
			return i
		}
	}
	return -1
}

func (f *elfFile) SymbolData(s Sym) ([]byte, error) {
	if s.section <= 0 || s.section >= len(f.elf.Sections) {
		return nil, errors.Errorf("symbol %q has no section data", s.Name)
	}
	sect := f.elf.Sections[s.section]
	out := make([]byte, s.Size)
	if s.Value < sect.Addr {
		return nil, errors.Errorf("symbol %q starts before section %q", s.Name, sect.Name)
	}
	pos := s.Value - sect.Addr
	if pos >= sect.Size {
		return out, nil
	}
	flen := s.Size
	if flen > sect.Size-pos {
		flen = sect.Size - pos
	}
	_, err := sect.ReadAt(out[:flen], int64(pos))
	return out, err
}
