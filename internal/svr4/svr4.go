// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package svr4 implements the SVR4 shared library helpers used on
// GNU/Linux: the dynamic linker's r_debug and link_map layouts,
// PLT stub resolution and the glibc lazy-binding resolver.
package svr4

import (
	"bytes"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/obj"
	"github.com/loongdbg/loongtdep/internal/symtab"
)

// Memory reads target memory.
type Memory interface {
	ReadMemory(buf []byte, addr uint64) (n int, err error)
}

// LinkMapOffsets gives the byte offsets of the fields of the dynamic
// linker's struct r_debug and struct link_map.
type LinkMapOffsets struct {
	RVersionOffset int
	RVersionSize   int
	RMapOffset     int
	RBrkOffset     int
	RLdsomapOffset int
	RNextOffset    int

	LinkMapSize int
	LAddrOffset int
	LNameOffset int
	LLdOffset   int
	LNextOffset int
	LPrevOffset int
}

var ilp32 = &LinkMapOffsets{
	RVersionOffset: 0,
	RVersionSize:   4,
	RMapOffset:     4,
	RBrkOffset:     8,
	RLdsomapOffset: 20,
	RNextOffset:    24,

	LinkMapSize: 20,
	LAddrOffset: 0,
	LNameOffset: 4,
	LLdOffset:   8,
	LNextOffset: 12,
	LPrevOffset: 16,
}

var lp64 = &LinkMapOffsets{
	RVersionOffset: 0,
	RVersionSize:   4,
	RMapOffset:     8,
	RBrkOffset:     16,
	RLdsomapOffset: 40,
	RNextOffset:    48,

	LinkMapSize: 40,
	LAddrOffset: 0,
	LNameOffset: 8,
	LLdOffset:   16,
	LNextOffset: 24,
	LPrevOffset: 32,
}

// ILP32LinkMapOffsets returns the glibc layout for 32-bit pointers.
func ILP32LinkMapOffsets() *LinkMapOffsets { return ilp32 }

// LP64LinkMapOffsets returns the glibc layout for 64-bit pointers.
func LP64LinkMapOffsets() *LinkMapOffsets { return lp64 }

// maxLinkMaps bounds the link map walk in case the list is corrupt
// and cyclic.
const maxLinkMaps = 1 << 16

const maxPathLen = 4096

func readPtr(mem Memory, l arch.Layout, addr uint64) (uint64, error) {
	buf := make([]byte, l.WordSize)
	if _, err := mem.ReadMemory(buf, addr); err != nil {
		return 0, errors.Wrapf(err, "reading pointer at %#x", addr)
	}
	return l.Uint(buf), nil
}

func readCString(mem Memory, addr uint64) (string, error) {
	var out []byte
	chunk := make([]byte, 64)
	for len(out) < maxPathLen {
		n, err := mem.ReadMemory(chunk, addr)
		if err != nil {
			// The string may end just before unmapped memory.
			n, err = mem.ReadMemory(chunk[:1], addr)
			if err != nil {
				return "", errors.Wrapf(err, "reading string at %#x", addr)
			}
		}
		if i := bytes.IndexByte(chunk[:n], 0); i >= 0 {
			return string(append(out, chunk[:i]...)), nil
		}
		out = append(out, chunk[:n]...)
		addr += uint64(n)
	}
	return "", errors.Errorf("string at %#x too long", addr)
}

// FetchObjfileLinkMap walks the link map list of the r_debug
// structure at rDebug and returns the address of the link_map entry
// whose name is module, or whose base name matches module's.
func FetchObjfileLinkMap(lmo *LinkMapOffsets, l arch.Layout, mem Memory, rDebug uint64, module string) (uint64, error) {
	lm, err := readPtr(mem, l, rDebug+uint64(lmo.RMapOffset))
	if err != nil {
		return 0, errors.Wrap(err, "reading r_debug.r_map")
	}
	for i := 0; lm != 0 && i < maxLinkMaps; i++ {
		nameAddr, err := readPtr(mem, l, lm+uint64(lmo.LNameOffset))
		if err != nil {
			return 0, errors.Wrap(err, "reading link_map.l_name")
		}
		if nameAddr != 0 {
			name, err := readCString(mem, nameAddr)
			if err != nil {
				return 0, err
			}
			if name == module || (name != "" && path.Base(name) == path.Base(module)) {
				return lm, nil
			}
		}
		lm, err = readPtr(mem, l, lm+uint64(lmo.LNextOffset))
		if err != nil {
			return 0, errors.Wrap(err, "reading link_map.l_next")
		}
	}
	return 0, errors.Errorf("no link map entry for %s", module)
}

// FindSolibTrampolineTarget returns the address of the function that
// the PLT stub containing pc jumps to, or 0 if pc is not in a stub or
// the target is not known.
func FindSolibTrampolineTarget(tab *symtab.Table, pc uint64) uint64 {
	if tab == nil {
		return 0
	}
	stub, ok := tab.Addr(pc)
	if !ok || stub.Kind != obj.SymTrampoline {
		return 0
	}
	name := strings.TrimSuffix(stub.Name, "@plt")
	if target, ok := tab.NameKind(name, obj.SymText); ok {
		return target.Value
	}
	return 0
}

// GlibcSkipSolibResolver returns the address to stop at after the
// lazy-binding resolver if pc is the entry of glibc's _dl_fixup,
// reached through _dl_runtime_resolve. Otherwise it returns 0.
func GlibcSkipSolibResolver(tab *symtab.Table, pc uint64, callerPC func() (uint64, bool)) uint64 {
	if tab == nil {
		return 0
	}
	if _, ok := tab.Name("_dl_runtime_resolve"); !ok {
		return 0
	}
	fixup, ok := tab.Name("_dl_fixup")
	if !ok || fixup.Value != pc || callerPC == nil {
		return 0
	}
	if ret, ok := callerPC(); ok {
		return ret
	}
	return 0
}
