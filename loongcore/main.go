// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command loongcore prints the registers of LoongArch GNU/Linux
// threads recorded in core files, or of a stopped live process.
//
// Usage:
//
//	loongcore [flags] core...
//	loongcore [flags] -pid N
//
// For a thread stopped in the kernel's signal return trampoline,
// loongcore also prints the registers of the interrupted context.
//
// The LOONGCORE_LOG, LOONGCORE_OSABI and LOONGCORE_REGS environment
// variables supply defaults for -log, -osabi and -regs.
package main

import (
	"bytes"
	"debug/elf"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/kballard/go-shellquote"
	"github.com/xyproto/env/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/loongdbg/loongtdep/internal/gdbarch"
	"github.com/loongdbg/loongtdep/internal/logflags"
	"github.com/loongdbg/loongtdep/internal/obj"
	"github.com/loongdbg/loongtdep/internal/symtab"
	"github.com/loongdbg/loongtdep/loongarch"
)

const defaultRegs = "pc sp ra a0 a1 a7"

func main() {
	flagPid := flag.Int("pid", 0, "read the registers of stopped process `pid`")
	flagWrite := flag.Bool("write", false, "check that the register image can be rebuilt from the register cache")
	flagExe := flag.String("exe", "", "read symbols from `binary` to resolve PLT stubs")
	flagLog := flag.String("log", env.Str("LOONGCORE_LOG"), "enable debug logging for comma-separated `layers` (gdbarch, unwind, core, ptrace, all)")
	flagOSABI := flag.String("osabi", env.Str("LOONGCORE_OSABI", "auto"), "override the OS ABI (auto, none, linux)")
	flagRegs := flag.String("regs", env.Str("LOONGCORE_REGS", defaultRegs), "registers to print, as a shell-quoted `list`")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] core...\n       %s [flags] -pid N\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if (*flagPid == 0) == (flag.NArg() == 0) {
		flag.Usage()
		os.Exit(2)
	}

	if err := logflags.Setup(*flagLog, os.Stderr); err != nil {
		log.Fatal(err)
	}
	osabi, err := gdbarch.ParseOSABI(*flagOSABI)
	if err != nil {
		log.Fatal(err)
	}
	regs, err := parseRegs(*flagRegs)
	if err != nil {
		log.Fatal(err)
	}

	c := &config{
		registry: gdbarch.NewRegistry(),
		osabi:    osabi,
		regs:     regs,
		write:    *flagWrite,
		aligned:  term.IsTerminal(int(os.Stdout.Fd())),
	}
	loongarch.Register(c.registry)

	if *flagExe != "" {
		c.syms, err = loadSymbols(*flagExe)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *flagPid != 0 {
		if err := c.dumpPid(os.Stdout, *flagPid); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Read the cores in parallel, but print them in order.
	outs := make([]bytes.Buffer, flag.NArg())
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(-1))
	for i, path := range flag.Args() {
		i, path := i, path
		g.Go(func() error {
			return c.dumpCore(&outs[i], path)
		})
	}
	err = g.Wait()
	for i := range outs {
		os.Stdout.Write(outs[i].Bytes())
	}
	if err != nil {
		log.Fatal(err)
	}
}

// parseRegs splits a shell-quoted list of register names.
func parseRegs(s string) ([]string, error) {
	regs, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("bad register list %q: %v", s, err)
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("empty register list")
	}
	return regs, nil
}

func loadSymbols(path string) (*symtab.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	o, err := obj.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	syms, err := o.Symbols()
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return symtab.NewTable(syms), nil
}

// exeInfo returns the debuggee Info of the executable at path.
func exeInfo(path string, osabi gdbarch.OSABI) (gdbarch.Info, error) {
	f, err := elf.Open(path)
	if err != nil {
		return gdbarch.Info{}, err
	}
	defer f.Close()
	return gdbarch.InfoFromELF(f, osabi)
}
