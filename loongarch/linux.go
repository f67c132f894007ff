// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loongarch

import (
	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/gdbarch"
	"github.com/loongdbg/loongtdep/internal/svr4"
)

// Register registers the LoongArch architecture and its GNU/Linux OS
// ABI handlers for both word sizes with r.
func Register(r *gdbarch.Registry) {
	r.RegisterArch(arch.LoongArch, gdbarchInit)
	r.RegisterOSABI(arch.LoongArch, arch.MachLoongArch32, gdbarch.OSABILinux, initLinuxABI)
	r.RegisterOSABI(arch.LoongArch, arch.MachLoongArch64, gdbarch.OSABILinux, initLinuxABI)
}

func initLinuxABI(info gdbarch.Info, g *gdbarch.Gdbarch) {
	tdep := g.Tdep.(*Tdep)

	if info.Arch.Layout.WordSize == 4 {
		g.FetchLinkMapOffsets = svr4.ILP32LinkMapOffsets
	} else {
		g.FetchLinkMapOffsets = svr4.LP64LinkMapOffsets
	}

	// GNU/Linux uses SVR4-style shared libraries and the glibc
	// dynamic linker.
	g.SkipTrampolineCode = svr4.FindSolibTrampolineTarget
	g.SkipSolibResolver = svr4.GlibcSkipSolibResolver

	layout := info.Arch.Layout
	g.FetchTLSLoadModuleAddress = func(mem svr4.Memory, rDebug uint64, module string) (uint64, error) {
		return svr4.FetchObjfileLinkMap(g.FetchLinkMapOffsets(), layout, mem, rDebug, module)
	}

	g.Unwinders.Prepend(tdep.rtSigframe)

	g.IterateOverRegsetSections = tdep.iterateOverRegsetSections
}

func (t *Tdep) iterateOverRegsetSections(cb func(gdbarch.RegsetSection)) {
	size := t.Regs.ImageSize()
	cb(gdbarch.RegsetSection{
		Name:        ".reg",
		SupplySize:  size,
		CollectSize: size,
		Regset:      t.gregset,
	})
}
