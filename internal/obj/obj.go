// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package obj reads the symbols of executables and the thread state
// and memory of core files.
package obj

import (
	"io"

	"github.com/loongdbg/loongtdep/internal/arch"
)

type Obj interface {
	Arch() *arch.Arch
	Symbols() ([]Sym, error)
	SymbolData(s Sym) ([]byte, error)
}

type Sym struct {
	Name        string
	Value, Size uint64
	Kind        SymKind
	Local       bool
	section     int
}

type SymKind uint8

const (
	SymUnknown SymKind = '?'
	SymText            = 'T'
	SymData            = 'D'
	SymROData          = 'R'
	SymBSS             = 'B'
	SymUndef           = 'U'

	// SymTrampoline is a dynamic linking stub, such as a PLT
	// entry, that jumps to a function in another module.
	SymTrampoline = 'P'
)

// Open opens r as an ELF executable or shared object.
func Open(r io.ReaderAt) (Obj, error) {
	return openElf(r)
}
