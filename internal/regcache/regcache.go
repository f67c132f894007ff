// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regcache implements a per-thread cache of raw register
// values keyed by logical register number.
//
// A Cache is not safe for concurrent use. Each inferior thread
// should have its own Cache.
package regcache

import (
	"encoding/binary"
	"fmt"
)

// All selects every register in a regset supply or collect.
const All = -1

// Description describes the registers of an architecture. Register
// numbers are indexes into Names and Sizes.
type Description struct {
	Names []string
	Sizes []int // in bytes
	Order binary.ByteOrder
}

// NumRegs returns the number of raw registers in d.
func (d *Description) NumRegs() int {
	return len(d.Names)
}

// Lookup returns the register number of the register named name.
func (d *Description) Lookup(name string) (int, bool) {
	for i, n := range d.Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Status is the state of a register in a Cache.
type Status uint8

const (
	Unknown Status = iota
	Valid
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Valid:
		return "valid"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Cache holds the raw register values of one thread.
type Cache struct {
	desc   *Description
	data   []byte
	offset []int
	status []Status
}

// New returns an empty Cache for registers described by desc.
func New(desc *Description) *Cache {
	offset := make([]int, len(desc.Sizes))
	n := 0
	for i, size := range desc.Sizes {
		offset[i] = n
		n += size
	}
	return &Cache{
		desc:   desc,
		data:   make([]byte, n),
		offset: offset,
		status: make([]Status, len(desc.Sizes)),
	}
}

// Description returns the register description of c.
func (c *Cache) Description() *Description {
	return c.desc
}

func (c *Cache) reg(regno int) []byte {
	if regno < 0 || regno >= len(c.offset) {
		panic(fmt.Sprintf("register %d out of range", regno))
	}
	return c.data[c.offset[regno] : c.offset[regno]+c.desc.Sizes[regno]]
}

// RawSupply sets register regno from the first RegisterSize(regno)
// bytes of buf. If buf is nil, the register is marked unavailable.
func (c *Cache) RawSupply(regno int, buf []byte) {
	dst := c.reg(regno)
	if buf == nil {
		clear(dst)
		c.status[regno] = Unavailable
		return
	}
	copy(dst, buf[:len(dst)])
	c.status[regno] = Valid
}

// RawSupplyZeroed sets register regno to zero without reading any
// source buffer.
func (c *Cache) RawSupplyZeroed(regno int) {
	clear(c.reg(regno))
	c.status[regno] = Valid
}

// RawCollect copies register regno into the first
// RegisterSize(regno) bytes of buf.
func (c *Cache) RawCollect(regno int, buf []byte) {
	src := c.reg(regno)
	copy(buf[:len(src)], src)
}

// RegisterSize returns the size in bytes of register regno.
func (c *Cache) RegisterSize(regno int) int {
	return c.desc.Sizes[regno]
}

// Status returns the status of register regno.
func (c *Cache) Status(regno int) Status {
	c.reg(regno)
	return c.status[regno]
}

// Valid reports whether register regno holds a supplied value.
func (c *Cache) Valid(regno int) bool {
	return c.Status(regno) == Valid
}

// Uint returns the value of register regno as an unsigned integer.
func (c *Cache) Uint(regno int) (uint64, error) {
	if st := c.Status(regno); st != Valid {
		return 0, fmt.Errorf("register %s is %s", c.desc.Names[regno], st)
	}
	b := c.reg(regno)
	switch len(b) {
	case 4:
		return uint64(c.desc.Order.Uint32(b)), nil
	case 8:
		return c.desc.Order.Uint64(b), nil
	}
	return 0, fmt.Errorf("register %s has unsupported size %d", c.desc.Names[regno], len(b))
}

// SetUint sets register regno to v.
func (c *Cache) SetUint(regno int, v uint64) {
	b := c.reg(regno)
	switch len(b) {
	case 4:
		c.desc.Order.PutUint32(b, uint32(v))
	case 8:
		c.desc.Order.PutUint64(b, v)
	default:
		panic(fmt.Sprintf("register %s has unsupported size %d", c.desc.Names[regno], len(b)))
	}
	c.status[regno] = Valid
}
