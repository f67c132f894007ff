// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/loongdbg/loongtdep/internal/asm"
	"github.com/loongdbg/loongtdep/internal/frame"
	"github.com/loongdbg/loongtdep/internal/gdbarch"
	"github.com/loongdbg/loongtdep/internal/logflags"
	"github.com/loongdbg/loongtdep/internal/obj"
	"github.com/loongdbg/loongtdep/internal/regcache"
	"github.com/loongdbg/loongtdep/internal/symtab"
	"github.com/loongdbg/loongtdep/loongarch"
)

type config struct {
	registry *gdbarch.Registry
	osabi    gdbarch.OSABI
	regs     []string
	write    bool
	syms     *symtab.Table

	// aligned prints one register per line in columns rather
	// than all registers on one line.
	aligned bool
}

// dumpCore prints every thread of the core file at path to w.
func (c *config) dumpCore(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	core, err := obj.OpenCore(f)
	if err != nil {
		return errors.Wrap(err, path)
	}
	info, err := gdbarch.InfoFromELF(core.ELF(), c.osabi)
	if err != nil {
		return errors.Wrap(err, path)
	}
	g, err := c.registry.Lookup(info)
	if err != nil {
		return errors.Wrap(err, path)
	}
	logflags.CoreLogger().Debugf("%s: %d threads, %v", path, len(core.Threads()), g)

	fmt.Fprintf(w, "%s: %v\n", path, g)
	for _, th := range core.Threads() {
		fmt.Fprintf(w, "thread %d signal %d\n", th.LWP, th.Signal)
		sections := func(name string) ([]byte, error) {
			raw, ok := th.Sections[name]
			if !ok {
				return nil, errors.Errorf("thread %d has no %s section", th.LWP, name)
			}
			return raw, nil
		}
		rc, err := supply(g, sections)
		if err != nil {
			return errors.Wrap(err, path)
		}
		if err := c.dumpThread(w, g, rc, core); err != nil {
			return errors.Wrap(err, path)
		}
		if c.write {
			if _, err := c.checkFill(w, g, rc, sections); err != nil {
				return errors.Wrap(err, path)
			}
		}
	}
	return nil
}

// supply fills a new register cache from the register sections of g.
func supply(g *gdbarch.Gdbarch, sections func(name string) ([]byte, error)) (*regcache.Cache, error) {
	sects := g.RegsetSections()
	if len(sects) == 0 {
		return nil, errors.Errorf("%v has no register sections", g)
	}
	rc := regcache.New(g.Regs)
	for _, s := range sects {
		raw, err := sections(s.Name)
		if err != nil {
			return nil, err
		}
		if len(raw) < s.SupplySize {
			return nil, errors.Errorf("section %s: want %d bytes, got %d", s.Name, s.SupplySize, len(raw))
		}
		s.Regset.Supply(rc, regcache.All, raw[:s.SupplySize])
	}
	return rc, nil
}

// checkFill rebuilds each register section from rc and reports
// whether it matches the original image. It returns the rebuilt
// sections.
func (c *config) checkFill(w io.Writer, g *gdbarch.Gdbarch, rc *regcache.Cache, sections func(name string) ([]byte, error)) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, s := range g.RegsetSections() {
		raw, err := sections(s.Name)
		if err != nil {
			return nil, err
		}
		img := bytes.Clone(raw[:s.CollectSize])
		s.Regset.Collect(rc, regcache.All, img)
		out[s.Name] = img

		// Slot 0 holds r0, which always reads as zero.
		want := bytes.Clone(raw[:s.CollectSize])
		clear(want[:g.Info.Arch.Layout.WordSize])
		if off := diff(want, img); off >= 0 {
			fmt.Fprintf(w, "  fill %s: differs at offset %d\n", s.Name, off)
		} else {
			fmt.Fprintf(w, "  fill %s: ok\n", s.Name)
		}
	}
	return out, nil
}

func diff(a, b []byte) int {
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			return i
		}
	}
	if len(b) > len(a) {
		return len(a)
	}
	return -1
}

// dumpThread prints the selected registers of rc and, if the thread
// is in a signal trampoline, the interrupted context.
func (c *config) dumpThread(w io.Writer, g *gdbarch.Gdbarch, rc *regcache.Cache, mem frame.Memory) error {
	if err := c.printRegs(w, "  ", g, rc); err != nil {
		return err
	}

	f, err := g.NewFrame(rc, mem)
	if err != nil {
		return err
	}
	c.printPLT(w, g, rc, f.PC)

	u, tc, ok := g.Unwinders.Sniff(f)
	if !ok || u.Kind() != frame.SigtrampFrame {
		return nil
	}
	id, _ := tc.ID()
	fmt.Fprintf(w, "  signal frame %v\n", id)
	if t, ok := u.(*frame.TrampFrame); ok {
		printTramp(w, t, f)
	}
	caller, err := g.UnwindRegisters(tc, mem)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  interrupted:\n")
	return c.printRegs(w, "    ", g, caller)
}

// printPLT reports where a thread stopped in a PLT stub or in the
// dynamic linker's lazy binding resolver will go next.
func (c *config) printPLT(w io.Writer, g *gdbarch.Gdbarch, rc *regcache.Cache, pc uint64) {
	if c.syms == nil {
		return
	}
	if g.SkipTrampolineCode != nil {
		if target := g.SkipTrampolineCode(c.syms, pc); target != 0 {
			name, _ := c.syms.SymName(target)
			fmt.Fprintf(w, "  in PLT stub, target %#x <%s>\n", target, name)
		}
	}
	if g.SkipSolibResolver != nil {
		ra := func() (uint64, bool) {
			regno := lookupReg(g, "ra")
			if regno < 0 {
				return 0, false
			}
			v, err := rc.Uint(regno)
			return v, err == nil
		}
		if ret := g.SkipSolibResolver(c.syms, pc, ra); ret != 0 {
			fmt.Fprintf(w, "  in dynamic linker resolver, returns to %#x\n", ret)
		}
	}
}

func printTramp(w io.Writer, t *frame.TrampFrame, f *frame.Frame) {
	text := make([]byte, t.Len()*t.InsnSize)
	if _, err := f.Mem.ReadMemory(text, f.PC); err != nil {
		return
	}
	seq := asm.DisasmLoong64(text, f.PC)
	for i := 0; i < seq.Len(); i++ {
		inst := seq.Get(i)
		fmt.Fprintf(w, "    %#x: %08x  %s", inst.PC(), inst.Word(), inst.GNUSyntax())
		if ct := inst.Control().Type; ct != asm.ControlNone {
			fmt.Fprintf(w, "  # %v", ct)
		}
		fmt.Fprintf(w, "\n")
	}
}

// lookupReg returns the register number of name in g, accepting ABI
// aliases where the backend knows them. It returns -1 if name is
// unknown.
func lookupReg(g *gdbarch.Gdbarch, name string) int {
	if t, ok := g.Tdep.(*loongarch.Tdep); ok {
		if regno, ok := t.Regs.LookupRegister(name); ok {
			return regno
		}
		return -1
	}
	if regno, ok := g.Regs.Lookup(name); ok {
		return regno
	}
	return -1
}

func (c *config) printRegs(w io.Writer, indent string, g *gdbarch.Gdbarch, rc *regcache.Cache) error {
	var fields []string
	for _, name := range c.regs {
		regno := lookupReg(g, name)
		if regno < 0 {
			return errors.Errorf("unknown register %q", name)
		}
		val := "<unavailable>"
		if v, err := rc.Uint(regno); err == nil {
			val = fmt.Sprintf("%#x", v)
		}
		fields = append(fields, name+"\t"+val)
	}
	if !c.aligned {
		fmt.Fprintf(w, "%s%s\n", indent, strings.ReplaceAll(strings.Join(fields, " "), "\t", "="))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s%s\n", indent, f)
	}
	return tw.Flush()
}
