// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gdbarch holds the per-architecture dispatch object that an
// architecture backend fills in, and the registry that selects a
// backend for a debuggee.
package gdbarch

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/frame"
	"github.com/loongdbg/loongtdep/internal/regcache"
	"github.com/loongdbg/loongtdep/internal/svr4"
	"github.com/loongdbg/loongtdep/internal/symtab"
)

// Info identifies the kind of debuggee a Gdbarch is for.
type Info struct {
	Arch  *arch.Arch
	OSABI OSABI
}

func (i Info) String() string {
	return fmt.Sprintf("%v/%v", i.Arch, i.OSABI)
}

// A Regset transfers registers between a raw register image and a
// register cache. regno is a register number or regcache.All.
type Regset struct {
	Supply  func(rc *regcache.Cache, regno int, buf []byte)
	Collect func(rc *regcache.Cache, regno int, buf []byte)
}

// A RegsetSection is a named register image, as found in core file
// notes or fetched from a live thread.
type RegsetSection struct {
	Name        string
	SupplySize  int
	CollectSize int
	Regset      *Regset
}

// Gdbarch is the set of architecture and OS specific hooks for one
// kind of debuggee. Hooks that a backend does not install are nil.
type Gdbarch struct {
	Info Info

	// Tdep is the architecture backend's own state, created once
	// when the Gdbarch is created.
	Tdep any

	Regs               *regcache.Description
	PCRegnum, SPRegnum int

	// Unwinders is consulted in order to identify each frame.
	Unwinders frame.Chain

	FetchLinkMapOffsets       func() *svr4.LinkMapOffsets
	SkipTrampolineCode        func(tab *symtab.Table, pc uint64) uint64
	SkipSolibResolver         func(tab *symtab.Table, pc uint64, callerPC func() (uint64, bool)) uint64
	FetchTLSLoadModuleAddress func(mem svr4.Memory, rDebug uint64, module string) (uint64, error)
	IterateOverRegsetSections func(cb func(RegsetSection))
}

func (g *Gdbarch) String() string {
	return g.Info.String()
}

// RegsetSections returns the register sections g knows how to
// transfer.
func (g *Gdbarch) RegsetSections() []RegsetSection {
	var out []RegsetSection
	if g.IterateOverRegsetSections != nil {
		g.IterateOverRegsetSections(func(s RegsetSection) {
			out = append(out, s)
		})
	}
	return out
}

// NewFrame returns the innermost frame of the thread whose registers
// are in rc.
func (g *Gdbarch) NewFrame(rc *regcache.Cache, mem frame.Memory) (*frame.Frame, error) {
	pc, err := rc.Uint(g.PCRegnum)
	if err != nil {
		return nil, err
	}
	sp, err := rc.Uint(g.SPRegnum)
	if err != nil {
		return nil, err
	}
	return &frame.Frame{PC: pc, SP: sp, Mem: mem, Order: g.Info.Arch.Layout.Order}, nil
}

// UnwindRegisters returns a register cache for the caller of the
// frame described by tc. Registers without a saved location are
// unavailable.
func (g *Gdbarch) UnwindRegisters(tc *frame.TradCache, mem frame.Memory) (*regcache.Cache, error) {
	rc := regcache.New(g.Regs)
	for regno := 0; regno < g.Regs.NumRegs(); regno++ {
		addr, ok := tc.RegAddr(regno)
		if !ok {
			rc.RawSupply(regno, nil)
			continue
		}
		buf := make([]byte, rc.RegisterSize(regno))
		if _, err := mem.ReadMemory(buf, addr); err != nil {
			return nil, errors.Wrapf(err, "reading saved %s", g.Regs.Names[regno])
		}
		rc.RawSupply(regno, buf)
	}
	return rc, nil
}
