// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch provides basic descriptions of CPU architectures.
package arch

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
)

// Mach identifies a machine variant within an architecture family.
type Mach uint8

const (
	MachUnknown Mach = iota
	MachLoongArch32
	MachLoongArch64
)

func (m Mach) String() string {
	switch m {
	case MachLoongArch32:
		return "loongarch32"
	case MachLoongArch64:
		return "loongarch64"
	}
	return fmt.Sprintf("mach(%d)", uint8(m))
}

// Layout is the byte order and word size of an architecture.
type Layout struct {
	Order    binary.ByteOrder
	WordSize int // 4 or 8
}

// Uint decodes a WordSize-byte word from buf.
func (l Layout) Uint(buf []byte) uint64 {
	switch l.WordSize {
	case 4:
		return uint64(l.Order.Uint32(buf[:4]))
	case 8:
		return l.Order.Uint64(buf[:8])
	}
	panic("bad WordSize")
}

// PutUint encodes v as a WordSize-byte word into buf.
func (l Layout) PutUint(buf []byte, v uint64) {
	switch l.WordSize {
	case 4:
		l.Order.PutUint32(buf[:4], uint32(v))
	case 8:
		l.Order.PutUint64(buf[:8], v)
	default:
		panic("bad WordSize")
	}
}

// An Arch describes a CPU architecture.
type Arch struct {
	// Name is the architecture family, shared by all of its
	// machine variants.
	Name string

	Mach Mach

	// Layout is the byte order and word size of this architecture.
	Layout Layout
}

const LoongArch = "loongarch"

var (
	LoongArch32 = &Arch{LoongArch, MachLoongArch32, Layout{binary.LittleEndian, 4}}
	LoongArch64 = &Arch{LoongArch, MachLoongArch64, Layout{binary.LittleEndian, 8}}
)

// String returns the machine name of a.
func (a *Arch) String() string {
	if a == nil {
		return "<nil>"
	}
	return a.Mach.String()
}

// FromELF returns the Arch for an ELF machine and class, or nil if
// the combination is not known.
func FromELF(machine elf.Machine, class elf.Class) *Arch {
	if machine != elf.EM_LOONGARCH {
		return nil
	}
	switch class {
	case elf.ELFCLASS32:
		return LoongArch32
	case elf.ELFCLASS64:
		return LoongArch64
	}
	return nil
}
