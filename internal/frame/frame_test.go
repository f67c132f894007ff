// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"testing"
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

func words(ws ...uint32) []byte {
	var out []byte
	for _, w := range ws {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}

var testTramp = &TrampFrame{
	Name:      "test",
	FrameKind: SigtrampFrame,
	InsnSize:  4,
	Insns: []TrampInsn{
		{0x11110000, 0xffff0000},
		{0x22222222, 0xffffffff},
		{TrampSentinel, 0},
	},
	Init: func(self *TrampFrame, f *Frame, cache *TradCache, fn uint64) {
		cache.SetRegAddr(1, f.SP+8)
		cache.SetID(FrameID{f.SP, fn})
	},
}

func TestTrampMatch(t *testing.T) {
	mem := &memory{0x1000, words(0, 0x1111abcd, 0x22222222, 0)}
	for _, test := range []struct {
		pc   uint64
		want bool
	}{
		{0x1004, true},
		{0x1000, false},
		{0x1008, false},
		// Runs off the end of memory.
		{0x100c, false},
	} {
		f := &Frame{PC: test.pc, SP: 0x8000, Mem: mem, Order: binary.LittleEndian}
		cache, ok := testTramp.Sniff(f)
		if ok != test.want {
			t.Errorf("pc %#x: want %v, got %v", test.pc, test.want, ok)
			continue
		}
		if !ok {
			continue
		}
		if id, _ := cache.ID(); id != (FrameID{0x8000, test.pc}) {
			t.Errorf("pc %#x: bad frame id %v", test.pc, id)
		}
		if addr, _ := cache.RegAddr(1); addr != 0x8008 {
			t.Errorf("pc %#x: want saved r1 at 0x8008, got %#x", test.pc, addr)
		}
	}
	if n := testTramp.Len(); n != 2 {
		t.Errorf("want 2 instructions, got %d", n)
	}
}

type nopUnwinder struct{ name string }

func (*nopUnwinder) Kind() Kind { return NormalFrame }
func (*nopUnwinder) Sniff(*Frame) (*TradCache, bool) { return NewTradCache(), true }

func TestChain(t *testing.T) {
	var c Chain
	a, b := &nopUnwinder{"a"}, &nopUnwinder{"b"}
	c.Append(a)
	c.Prepend(testTramp)
	c.Prepend(testTramp)
	c.Append(b)
	c.Append(a)
	want := []Unwinder{testTramp, a, b}
	if got := c.Unwinders(); !reflect.DeepEqual(want, got) {
		t.Errorf("want %v, got %v", want, got)
	}

	// The trampoline does not match, so the first generic
	// unwinder claims the frame.
	f := &Frame{PC: 0, Mem: &memory{0, words(0, 0)}, Order: binary.LittleEndian}
	if u, _, ok := c.Sniff(f); !ok || u != a {
		t.Errorf("want unwinder a, got %v", u)
	}
}

func TestSavedRegs(t *testing.T) {
	c := NewTradCache()
	c.SetRegAddr(5, 50)
	c.SetRegAddr(1, 10)
	c.SetRegAddr(3, 30)
	if want, got := []int{1, 3, 5}, c.SavedRegs(); !reflect.DeepEqual(want, got) {
		t.Errorf("want %v, got %v", want, got)
	}
	if _, ok := c.ID(); ok {
		t.Errorf("fresh cache has an id")
	}
}
