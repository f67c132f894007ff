// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loongarch is the debugger backend for LoongArch on
// GNU/Linux. It describes the general-purpose register layout,
// transfers the kernel's general-purpose register image to and from a
// register cache, and recognizes the kernel's signal return
// trampoline.
//
// Register registers the backend with a gdbarch.Registry.
package loongarch

import (
	"encoding/binary"
	"fmt"

	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/frame"
	"github.com/loongdbg/loongtdep/internal/gdbarch"
	"github.com/loongdbg/loongtdep/internal/regcache"
)

// NumGPRs is the number of general-purpose registers, r0 through r31.
const NumGPRs = 32

// SPRegnum is the register number of the stack pointer, r3.
const SPRegnum = 3

// Layout gives the register numbers of the general-purpose register
// set and the size of each register. r0 through r31 are numbered
// contiguously from R.
type Layout struct {
	R      int
	OrigA0 int
	PC     int
	BADV   int

	// WordSize is the size in bytes of every register in the set.
	WordSize int
}

// NewLayout returns the register layout for registers of wordSize
// bytes.
func NewLayout(wordSize int) Layout {
	return Layout{
		R:        0,
		OrigA0:   NumGPRs,
		PC:       NumGPRs + 1,
		BADV:     NumGPRs + 2,
		WordSize: wordSize,
	}
}

// NumRegs returns the number of raw registers described by l.
func (l Layout) NumRegs() int {
	return l.BADV + 1
}

// gprNames are the ABI names of r0 through r31.
var gprNames = [NumGPRs]string{
	"zero", "ra", "tp", "sp", "a0", "a1", "a2", "a3",
	"a4", "a5", "a6", "a7", "t0", "t1", "t2", "t3",
	"t4", "t5", "t6", "t7", "t8", "r21", "fp", "s0",
	"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8",
}

// Description returns the register cache description for l.
func (l Layout) Description() *regcache.Description {
	d := &regcache.Description{
		Names: make([]string, l.NumRegs()),
		Sizes: make([]int, l.NumRegs()),
		Order: binary.LittleEndian,
	}
	for i := 0; i < NumGPRs; i++ {
		d.Names[l.R+i] = fmt.Sprintf("r%d", i)
	}
	d.Names[l.OrigA0] = "orig_a0"
	d.Names[l.PC] = "pc"
	d.Names[l.BADV] = "badv"
	for i := range d.Sizes {
		d.Sizes[i] = l.WordSize
	}
	return d
}

// LookupRegister returns the register number for a register name or
// ABI alias, such as "r4", "a0" or "pc".
func (l Layout) LookupRegister(name string) (int, bool) {
	for i, n := range gprNames {
		if n == name {
			return l.R + i, true
		}
	}
	switch name {
	case "s9":
		return l.R + 22, true
	case "orig_a0":
		return l.OrigA0, true
	case "pc":
		return l.PC, true
	case "badv":
		return l.BADV, true
	}
	var n int
	if _, err := fmt.Sscanf(name, "r%d", &n); err == nil && 0 <= n && n < NumGPRs && name == fmt.Sprintf("r%d", n) {
		return l.R + n, true
	}
	return 0, false
}

// ABIName returns the ABI alias of register regno, or "" if it has
// none.
func (l Layout) ABIName(regno int) string {
	if l.R <= regno && regno < l.R+NumGPRs {
		return gprNames[regno-l.R]
	}
	return ""
}

// Tdep is the LoongArch state of a Gdbarch. It is created once per
// Gdbarch, and the hooks installed in the Gdbarch close over it.
type Tdep struct {
	Regs Layout

	gregset    *gdbarch.Regset
	rtSigframe *frame.TrampFrame
}

func newTdep(wordSize int) *Tdep {
	t := &Tdep{Regs: NewLayout(wordSize)}
	t.gregset = t.Regs.Gregset()
	t.rtSigframe = newRtSigframe(t.Regs)
	return t
}

// Gregset returns the general-purpose regset of t.
func (t *Tdep) Gregset() *gdbarch.Regset {
	return t.gregset
}

func gdbarchInit(info gdbarch.Info) (*gdbarch.Gdbarch, error) {
	if info.Arch == nil || info.Arch.Name != arch.LoongArch {
		return nil, fmt.Errorf("loongarch: cannot initialize %v", info)
	}
	ws := info.Arch.Layout.WordSize
	if ws != 4 && ws != 8 {
		return nil, fmt.Errorf("loongarch: unsupported word size %d", ws)
	}
	tdep := newTdep(ws)
	return &gdbarch.Gdbarch{
		Info:     info,
		Tdep:     tdep,
		Regs:     tdep.Regs.Description(),
		PCRegnum: tdep.Regs.PC,
		SPRegnum: tdep.Regs.R + SPRegnum,
	}, nil
}
