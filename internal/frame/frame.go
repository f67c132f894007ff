// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frame implements the unwinder chain and the frame caches
// produced by unwinders.
package frame

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Memory reads target memory.
type Memory interface {
	ReadMemory(buf []byte, addr uint64) (n int, err error)
}

// Frame is the state of the frame an unwinder is asked to identify.
type Frame struct {
	PC, SP uint64
	Mem    Memory

	// Order is the byte order of code in Mem.
	Order binary.ByteOrder
}

// Kind classifies a frame.
type Kind uint8

const (
	NormalFrame Kind = iota
	SigtrampFrame
)

func (k Kind) String() string {
	switch k {
	case NormalFrame:
		return "normal"
	case SigtrampFrame:
		return "sigtramp"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// FrameID identifies a frame across unwinds: the stack address of
// the frame and the start of its code.
type FrameID struct {
	StackAddr, CodeAddr uint64
}

func (id FrameID) String() string {
	return fmt.Sprintf("{stack=%#x,code=%#x}", id.StackAddr, id.CodeAddr)
}

// TradCache records, for a single frame, where the caller's register
// values were saved.
type TradCache struct {
	id    FrameID
	idSet bool
	saved map[int]uint64
}

func NewTradCache() *TradCache {
	return &TradCache{saved: make(map[int]uint64)}
}

// SetRegAddr records that the value of register regno is saved at
// addr.
func (c *TradCache) SetRegAddr(regno int, addr uint64) {
	c.saved[regno] = addr
}

// RegAddr returns the address at which register regno is saved.
func (c *TradCache) RegAddr(regno int) (uint64, bool) {
	addr, ok := c.saved[regno]
	return addr, ok
}

// SavedRegs returns the numbers of all registers with a saved
// address, in increasing order.
func (c *TradCache) SavedRegs() []int {
	regs := make([]int, 0, len(c.saved))
	for r := range c.saved {
		regs = append(regs, r)
	}
	sort.Ints(regs)
	return regs
}

func (c *TradCache) SetID(id FrameID) {
	c.id, c.idSet = id, true
}

func (c *TradCache) ID() (FrameID, bool) {
	return c.id, c.idSet
}

// An Unwinder identifies frames it knows how to unwind.
type Unwinder interface {
	Kind() Kind

	// Sniff reports whether the unwinder claims f. If it does, it
	// returns the saved register locations of f's caller.
	Sniff(f *Frame) (*TradCache, bool)
}

// Chain is an ordered list of unwinders. The first unwinder that
// claims a frame wins.
type Chain struct {
	list []Unwinder
}

// Prepend adds u to the front of the chain. Adding an unwinder that
// is already on the chain does nothing.
func (c *Chain) Prepend(u Unwinder) {
	for _, have := range c.list {
		if have == u {
			return
		}
	}
	c.list = append([]Unwinder{u}, c.list...)
}

// Append adds u to the end of the chain, unless it is already on it.
func (c *Chain) Append(u Unwinder) {
	for _, have := range c.list {
		if have == u {
			return
		}
	}
	c.list = append(c.list, u)
}

// Unwinders returns the unwinders in chain order.
func (c *Chain) Unwinders() []Unwinder {
	return append([]Unwinder(nil), c.list...)
}

// Sniff offers f to each unwinder in order and returns the first one
// that claims it.
func (c *Chain) Sniff(f *Frame) (Unwinder, *TradCache, bool) {
	for _, u := range c.list {
		if cache, ok := u.Sniff(f); ok {
			return u, cache, true
		}
	}
	return nil, nil, false
}
