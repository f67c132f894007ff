// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loongarch

import (
	"bytes"
	"debug/elf"
	"reflect"
	"testing"

	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/frame"
	"github.com/loongdbg/loongtdep/internal/gdbarch"
	"github.com/loongdbg/loongtdep/internal/obj"
	"github.com/loongdbg/loongtdep/internal/obj/objtest"
	"github.com/loongdbg/loongtdep/internal/regcache"
	"github.com/loongdbg/loongtdep/internal/svr4"
)

func lookup(t *testing.T, r *gdbarch.Registry, a *arch.Arch) *gdbarch.Gdbarch {
	t.Helper()
	g, err := r.Lookup(gdbarch.Info{Arch: a, OSABI: gdbarch.OSABILinux})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestRegister(t *testing.T) {
	r := gdbarch.NewRegistry()
	Register(r)
	once := r.Handlers()
	Register(r)
	if got := r.Handlers(); !reflect.DeepEqual(once, got) {
		t.Errorf("registering twice changed handlers: %v -> %v", once, got)
	}
	if len(once) != 2 {
		t.Errorf("want 2 handlers, got %v", once)
	}

	for _, test := range []struct {
		a    *arch.Arch
		size int
		lmo  *svr4.LinkMapOffsets
	}{
		{arch.LoongArch32, 180, svr4.ILP32LinkMapOffsets()},
		{arch.LoongArch64, 360, svr4.LP64LinkMapOffsets()},
	} {
		g := lookup(t, r, test.a)
		sects := g.RegsetSections()
		if len(sects) != 1 || sects[0].Name != ".reg" || sects[0].SupplySize != test.size || sects[0].CollectSize != test.size {
			t.Errorf("%v: bad regset sections %+v", test.a, sects)
		}
		if got := g.FetchLinkMapOffsets(); got != test.lmo {
			t.Errorf("%v: wrong link map offsets", test.a)
		}
		if g.SkipTrampolineCode == nil || g.SkipSolibResolver == nil || g.FetchTLSLoadModuleAddress == nil {
			t.Errorf("%v: shared library hooks not installed", test.a)
		}
		us := g.Unwinders.Unwinders()
		if len(us) != 1 || us[0] != g.Tdep.(*Tdep).rtSigframe {
			t.Errorf("%v: want the sigframe unwinder, got %v", test.a, us)
		}
		if g.PCRegnum != 33 || g.SPRegnum != 3 {
			t.Errorf("%v: pc=%d sp=%d", test.a, g.PCRegnum, g.SPRegnum)
		}

		// Applying the handler again leaves g unchanged.
		initLinuxABI(g.Info, g)
		if n := len(g.Unwinders.Unwinders()); n != 1 {
			t.Errorf("%v: %d unwinders after second init", test.a, n)
		}
		if again := g.RegsetSections(); !reflect.DeepEqual(sects, again) {
			t.Errorf("%v: regset sections changed: %+v", test.a, again)
		}
	}
}

func TestNoOSABI(t *testing.T) {
	r := gdbarch.NewRegistry()
	Register(r)
	g, err := r.Lookup(gdbarch.Info{Arch: arch.LoongArch64, OSABI: gdbarch.OSABINone})
	if err != nil {
		t.Fatal(err)
	}
	if len(g.RegsetSections()) != 0 || len(g.Unwinders.Unwinders()) != 0 {
		t.Errorf("GNU/Linux hooks installed for OS ABI none")
	}
}

// TestCoreSignalFrame reads a core file of a thread stopped at the
// signal return trampoline and recovers the interrupted registers.
func TestCoreSignalFrame(t *testing.T) {
	for _, a := range []*arch.Arch{arch.LoongArch32, arch.LoongArch64} {
		l := NewLayout(a.Layout.WordSize)

		regs := make([]byte, l.ImageSize())
		putWord(l, regs[l.offset(l.PC):], trampPC)
		putWord(l, regs[l.offset(l.R+SPRegnum):], testSP)
		putWord(l, regs[l.offset(l.R+1):], 0x1111)

		// Stack with the kernel's rt_sigframe.
		stack := make([]byte, 1024)
		sc := SigcontextAddr(testSP) - testSP
		le := a.Layout.Order
		le.PutUint64(stack[sc:], 0x120000abc)
		for i := 0; i < NumGPRs; i++ {
			le.PutUint64(stack[sc+8+8*uint64(i):], 0x5000+uint64(i))
		}

		data := objtest.Core(a, elf.ELFOSABI_NONE,
			[]objtest.Thread{{LWP: 7, Signal: 11, Regs: regs}},
			[]objtest.Segment{
				{Vaddr: trampPC, Data: code(insnLiwA7RtSigreturn, insnSyscall)},
				{Vaddr: testSP, Data: stack},
			})
		core, err := obj.OpenCore(bytes.NewReader(data))
		if err != nil {
			t.Fatal(err)
		}
		info, err := gdbarch.InfoFromELF(core.ELF(), gdbarch.OSABIUnknown)
		if err != nil {
			t.Fatal(err)
		}
		r := gdbarch.NewRegistry()
		Register(r)
		g, err := r.Lookup(info)
		if err != nil {
			t.Fatal(err)
		}

		rc := regcache.New(g.Regs)
		for _, s := range g.RegsetSections() {
			raw, ok := core.Section(s.Name)
			if !ok || len(raw) < s.SupplySize {
				t.Fatalf("%v: section %s: %d bytes, %v", a, s.Name, len(raw), ok)
			}
			s.Regset.Supply(rc, regcache.All, raw)
		}

		f, err := g.NewFrame(rc, core)
		if err != nil {
			t.Fatal(err)
		}
		u, tc, ok := g.Unwinders.Sniff(f)
		if !ok || u.Kind() != frame.SigtrampFrame {
			t.Fatalf("%v: signal frame not recognized", a)
		}
		caller, err := g.UnwindRegisters(tc, core)
		if err != nil {
			t.Fatal(err)
		}
		if v := mustUint(t, caller, l.PC); v != 0x120000abc&(1<<(8*a.Layout.WordSize)-1) {
			t.Errorf("%v: interrupted pc %#x", a, v)
		}
		if v := mustUint(t, caller, l.R+4); v != 0x5004 {
			t.Errorf("%v: interrupted a0 %#x", a, v)
		}
		if caller.Valid(l.BADV) {
			t.Errorf("%v: badv recovered from signal frame", a)
		}
	}
}
