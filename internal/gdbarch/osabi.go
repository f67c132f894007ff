// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gdbarch

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/obj"
)

// OSABI is an operating system ABI convention.
type OSABI uint8

const (
	OSABIUnknown OSABI = iota
	OSABINone
	OSABILinux
)

func (o OSABI) String() string {
	switch o {
	case OSABIUnknown:
		return "unknown"
	case OSABINone:
		return "none"
	case OSABILinux:
		return "GNU/Linux"
	}
	return fmt.Sprintf("OSABI(%d)", uint8(o))
}

// ParseOSABI parses the OS ABI names accepted by the OS ABI
// override setting. "auto" parses as OSABIUnknown.
func ParseOSABI(s string) (OSABI, error) {
	switch s {
	case "", "auto":
		return OSABIUnknown, nil
	case "none":
		return OSABINone, nil
	case "linux", "GNU/Linux":
		return OSABILinux, nil
	}
	return OSABIUnknown, fmt.Errorf("unknown OS ABI %q", s)
}

// GNU ABI tag note values.
const (
	ntGNUABITag    = 1
	gnuABITagLinux = 0
)

// SniffELF determines the OS ABI of f from its header and notes.
func SniffELF(f *elf.File) OSABI {
	switch f.OSABI {
	case elf.ELFOSABI_LINUX:
		return OSABILinux
	case elf.ELFOSABI_NONE:
	default:
		return OSABIUnknown
	}

	for _, n := range elfNotes(f) {
		switch {
		case n.Name == "GNU" && n.Type == ntGNUABITag && len(n.Desc) >= 4:
			if f.ByteOrder.Uint32(n.Desc) == gnuABITagLinux {
				return OSABILinux
			}
		case f.Type == elf.ET_CORE && n.Name == "CORE" && n.Type == elf.NT_PRSTATUS:
			// The kernel writes CORE notes and leaves
			// EI_OSABI as none.
			return OSABILinux
		case n.Name == "LINUX":
			return OSABILinux
		}
	}
	return OSABINone
}

func elfNotes(f *elf.File) []obj.Note {
	var out []obj.Note
	add := func(r io.Reader) {
		data, err := io.ReadAll(r)
		if err != nil {
			return
		}
		notes, err := obj.ParseNotes(data, f.ByteOrder)
		if err != nil {
			return
		}
		out = append(out, notes...)
	}
	for _, s := range f.Sections {
		if s.Type == elf.SHT_NOTE {
			add(s.Open())
		}
	}
	if len(out) == 0 {
		for _, p := range f.Progs {
			if p.Type == elf.PT_NOTE {
				add(p.Open())
			}
		}
	}
	return out
}

// InfoFromELF returns the Info describing the debuggee in f. If
// override is not OSABIUnknown, it is used instead of the sniffed OS
// ABI.
func InfoFromELF(f *elf.File, override OSABI) (Info, error) {
	a := arch.FromELF(f.Machine, f.Class)
	if a == nil {
		return Info{}, errors.Errorf("unsupported ELF machine %v (%v)", f.Machine, f.Class)
	}
	osabi := override
	if osabi == OSABIUnknown {
		osabi = SniffELF(f)
	}
	return Info{a, osabi}, nil
}
