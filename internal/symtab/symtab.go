// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"sort"

	"github.com/loongdbg/loongtdep/internal/obj"
)

// Table facilitates fast symbol lookup.
type Table struct {
	addr []obj.Sym
	name map[string][]int
}

// NewTable creates a new table for syms. Undefined symbols are
// dropped.
func NewTable(syms []obj.Sym) *Table {
	defined := make([]obj.Sym, 0, len(syms))
	for _, s := range syms {
		if s.Kind != obj.SymUndef {
			defined = append(defined, s)
		}
	}
	// Put syms in address order for fast address lookup.
	sort.SliceStable(defined, func(i, j int) bool {
		return defined[i].Value < defined[j].Value
	})

	name := make(map[string][]int)
	for i, s := range defined {
		name[s.Name] = append(name[s.Name], i)
	}

	return &Table{defined, name}
}

// Syms returns all symbols in Table in address order. The caller must
// not modify the returned slice.
func (t *Table) Syms() []obj.Sym {
	return t.addr
}

// Name returns the first symbol with the given name.
func (t *Table) Name(name string) (obj.Sym, bool) {
	if is := t.name[name]; len(is) > 0 {
		return t.addr[is[0]], true
	}
	return obj.Sym{}, false
}

// NameKind returns the first symbol with the given name and kind.
func (t *Table) NameKind(name string, kind obj.SymKind) (obj.Sym, bool) {
	for _, i := range t.name[name] {
		if t.addr[i].Kind == kind {
			return t.addr[i], true
		}
	}
	return obj.Sym{}, false
}

// Addr returns the symbol containing addr.
func (t *Table) Addr(addr uint64) (obj.Sym, bool) {
	i := sort.Search(len(t.addr), func(i int) bool {
		return addr < t.addr[i].Value
	})
	for i > 0 {
		s := t.addr[i-1]
		if s.Value != 0 && s.Value <= addr && addr < s.Value+s.Size {
			return s, true
		}
		// A zero-sized symbol at the same address may hide a
		// sized one.
		if s.Size != 0 || s.Value != addr {
			break
		}
		i--
	}
	return obj.Sym{}, false
}

// SymName returns the name and base of the symbol containing addr. It
// returns "", 0 if no symbol contains addr.
func (t *Table) SymName(addr uint64) (name string, base uint64) {
	if sym, ok := t.Addr(addr); ok {
		return sym.Name, sym.Value
	}
	return "", 0
}
