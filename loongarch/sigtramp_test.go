// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loongarch

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/loongdbg/loongtdep/internal/frame"
)

type memory struct {
	base uint64
	data []byte
}

func (m *memory) ReadMemory(buf []byte, addr uint64) (int, error) {
	if addr < m.base || addr-m.base+uint64(len(buf)) > uint64(len(m.data)) {
		return 0, fmt.Errorf("address %#x out of range", addr)
	}
	return copy(buf, m.data[addr-m.base:]), nil
}

func code(words ...uint32) []byte {
	var out []byte
	for _, w := range words {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}

const (
	trampPC = 0x7fff0000
	testSP  = 0x7ffe0000
)

func trampFrame(mem frame.Memory, pc uint64) *frame.Frame {
	return &frame.Frame{PC: pc, SP: testSP, Mem: mem, Order: binary.LittleEndian}
}

func TestRtSigframeMatch(t *testing.T) {
	tramp := newRtSigframe(NewLayout(8))
	mem := &memory{trampPC, code(insnLiwA7RtSigreturn, insnSyscall, 0)}
	if _, ok := tramp.Sniff(trampFrame(mem, trampPC)); !ok {
		t.Fatalf("trampoline not recognized")
	}
	if _, ok := tramp.Sniff(trampFrame(mem, trampPC+4)); ok {
		t.Errorf("matched at second instruction")
	}

	for word := 0; word < 2; word++ {
		for bit := 0; bit < 32; bit++ {
			insns := []uint32{insnLiwA7RtSigreturn, insnSyscall}
			insns[word] ^= 1 << bit
			mem := &memory{trampPC, code(insns...)}
			if _, ok := tramp.Sniff(trampFrame(mem, trampPC)); ok {
				t.Errorf("matched with bit %d of word %d flipped", bit, word)
			}
		}
	}

	// Unreadable code declines.
	if _, ok := tramp.Sniff(trampFrame(&memory{0, nil}, trampPC)); ok {
		t.Errorf("matched unreadable code")
	}
}

func TestRtSigframeCache(t *testing.T) {
	for _, ws := range []int{4, 8} {
		l := NewLayout(ws)
		tramp := newRtSigframe(l)
		mem := &memory{trampPC, code(insnLiwA7RtSigreturn, insnSyscall)}
		cache, ok := tramp.Sniff(trampFrame(mem, trampPC))
		if !ok {
			t.Fatalf("%d: trampoline not recognized", ws)
		}

		base := uint64(testSP + 128 + 176)
		if addr, ok := cache.RegAddr(l.PC); !ok || addr != base {
			t.Errorf("%d: pc saved at %#x, want %#x", ws, addr, base)
		}
		for i := 0; i < NumGPRs; i++ {
			want := base + 8 + 8*uint64(i)
			if addr, ok := cache.RegAddr(l.R + i); !ok || addr != want {
				t.Errorf("%d: r%d saved at %#x, want %#x", ws, i, addr, want)
			}
		}
		if _, ok := cache.RegAddr(l.BADV); ok {
			t.Errorf("%d: badv has a saved address", ws)
		}
		id, ok := cache.ID()
		if want := (frame.FrameID{StackAddr: testSP, CodeAddr: trampPC}); !ok || id != want {
			t.Errorf("%d: want id %v, got %v", ws, want, id)
		}
		if k := tramp.Kind(); k != frame.SigtrampFrame {
			t.Errorf("%d: want sigtramp kind, got %v", ws, k)
		}
	}
}
