// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"github.com/loongdbg/loongtdep/internal/logflags"
)

// TrampSentinel terminates a TrampFrame instruction table.
const TrampSentinel = ^uint64(0)

// TrampInsn is one instruction of a trampoline pattern. An
// instruction word w matches if w&Mask == Bytes.
type TrampInsn struct {
	Bytes, Mask uint64
}

// TrampFrame recognizes code the kernel or runtime places on the
// stack or in a vDSO, such as signal return stubs, by its exact
// instruction sequence. It needs no symbol information.
type TrampFrame struct {
	Name      string
	FrameKind Kind

	// InsnSize is the size in bytes of each instruction.
	InsnSize int

	// Insns is the instruction pattern, terminated by an entry
	// whose Bytes is TrampSentinel.
	Insns []TrampInsn

	// Init fills cache for a frame f that matched, where fn is the
	// address of the first instruction of the trampoline.
	Init func(self *TrampFrame, f *Frame, cache *TradCache, fn uint64)
}

func (t *TrampFrame) Kind() Kind {
	return t.FrameKind
}

// Len returns the number of instructions before the sentinel.
func (t *TrampFrame) Len() int {
	for i, insn := range t.Insns {
		if insn.Bytes == TrampSentinel {
			return i
		}
	}
	return len(t.Insns)
}

// Match reports whether the code at f.PC is this trampoline.
func (t *TrampFrame) Match(f *Frame) bool {
	n := t.Len()
	if n == 0 || f.Mem == nil {
		return false
	}
	buf := make([]byte, n*t.InsnSize)
	if got, err := f.Mem.ReadMemory(buf, f.PC); err != nil || got != len(buf) {
		return false
	}
	for i, insn := range t.Insns[:n] {
		if t.word(f, buf[i*t.InsnSize:])&insn.Mask != insn.Bytes {
			return false
		}
	}
	return true
}

func (t *TrampFrame) word(f *Frame, b []byte) uint64 {
	switch t.InsnSize {
	case 2:
		return uint64(f.Order.Uint16(b))
	case 4:
		return uint64(f.Order.Uint32(b))
	case 8:
		return f.Order.Uint64(b)
	}
	panic("bad InsnSize")
}

func (t *TrampFrame) Sniff(f *Frame) (*TradCache, bool) {
	if !t.Match(f) {
		return nil, false
	}
	logflags.UnwindLogger().Debugf("%s trampoline at pc=%#x sp=%#x", t.Name, f.PC, f.SP)
	cache := NewTradCache()
	t.Init(t, f, cache, f.PC)
	return cache, true
}
