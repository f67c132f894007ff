// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/binary"

	"golang.org/x/arch/loong64/loong64asm"
)

// Loong64Seq is a sequence of decoded LoongArch instructions.
type Loong64Seq []Loong64Inst

type Loong64Inst struct {
	loong64asm.Inst
	pc   uint64
	word uint32
	err  error
}

// DisasmLoong64 decodes text, which starts at address pc, into
// LoongArch instructions. Every instruction is 4 bytes; a trailing
// partial word is dropped.
func DisasmLoong64(text []byte, pc uint64) Loong64Seq {
	var out []Loong64Inst
	for len(text) >= 4 {
		word := binary.LittleEndian.Uint32(text)
		inst, err := loong64asm.Decode(text[:4])
		out = append(out, Loong64Inst{inst, pc, word, err})
		text = text[4:]
		pc += 4
	}
	return out
}

func (s Loong64Seq) Len() int {
	return len(s)
}

func (s Loong64Seq) Get(i int) Inst {
	return &s[i]
}

func (i *Loong64Inst) GNUSyntax() string {
	if i.err != nil {
		return "?"
	}
	return loong64asm.GNUSyntax(i.Inst)
}

func (i *Loong64Inst) PC() uint64 {
	return i.pc
}

func (i *Loong64Inst) Word() uint32 {
	return i.word
}

func signExtend(v uint32, bits uint) int64 {
	return int64(int32(v<<(32-bits)) >> (32 - bits))
}

func (i *Loong64Inst) Control() Control {
	var c Control
	w := i.word
	// 26-bit offset branches.
	offs26 := func() uint64 {
		v := (w>>10)&0xffff | (w&0x3ff)<<16
		return i.pc + uint64(signExtend(v, 26)<<2)
	}
	offs16 := func() uint64 {
		return i.pc + uint64(signExtend((w>>10)&0xffff, 16)<<2)
	}
	offs21 := func() uint64 {
		v := (w>>10)&0xffff | (w&0x1f)<<16
		return i.pc + uint64(signExtend(v, 21)<<2)
	}

	if w>>15 == insnSyscall>>15 {
		c.Type = ControlSyscall
		return c
	}
	switch op := w >> 26; op {
	case 0x14: // b
		c.Type, c.TargetPC = ControlJump, offs26()
	case 0x15: // bl
		c.Type, c.TargetPC = ControlCall, offs26()
	case 0x13: // jirl
		rd, rj := w&0x1f, (w>>5)&0x1f
		switch {
		case rd == 0 && rj == 1 && (w>>10)&0xffff == 0:
			c.Type = ControlRet
		case rd == 1:
			c.Type = ControlCall
		default:
			c.Type = ControlJump
		}
	case 0x10, 0x11, 0x12: // beqz, bnez, bceqz/bcnez
		c.Type, c.Conditional, c.TargetPC = ControlJump, true, offs21()
	case 0x16, 0x17, 0x18, 0x19, 0x1a, 0x1b: // beq, bne, blt, bge, bltu, bgeu
		c.Type, c.Conditional, c.TargetPC = ControlJump, true, offs16()
	}
	return c
}

// syscall 0
const insnSyscall = 0x002b0000
