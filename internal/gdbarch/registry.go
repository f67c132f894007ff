// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gdbarch

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/logflags"
)

// ArchInitFunc creates the Gdbarch for an architecture family,
// including its Tdep.
type ArchInitFunc func(info Info) (*Gdbarch, error)

// OSABIInitFunc installs OS ABI specific hooks into g. It must be
// safe to call more than once on the same Gdbarch.
type OSABIInitFunc func(info Info, g *Gdbarch)

// HandlerKey identifies an OS ABI handler.
type HandlerKey struct {
	Arch  string
	Mach  arch.Mach
	OSABI OSABI
}

func (k HandlerKey) String() string {
	return fmt.Sprintf("%s/%v/%v", k.Arch, k.Mach, k.OSABI)
}

// UnknownArchError is returned by Lookup when no architecture is
// registered for a debuggee.
type UnknownArchError struct {
	Info Info
}

func (e *UnknownArchError) Error() string {
	return fmt.Sprintf("no architecture registered for %v", e.Info)
}

// Registry maps debuggee kinds to the backends that handle them. It
// is populated once at startup and read-only afterwards.
type Registry struct {
	archs    map[string]ArchInitFunc
	handlers map[HandlerKey]OSABIInitFunc
}

func NewRegistry() *Registry {
	return &Registry{
		archs:    make(map[string]ArchInitFunc),
		handlers: make(map[HandlerKey]OSABIInitFunc),
	}
}

// RegisterArch registers the initializer for an architecture family.
// Later registrations for the same family are ignored.
func (r *Registry) RegisterArch(name string, init ArchInitFunc) {
	if _, ok := r.archs[name]; ok {
		logflags.GdbarchLogger().Debugf("architecture %s already registered", name)
		return
	}
	r.archs[name] = init
}

// RegisterOSABI registers the handler for an architecture machine
// variant and OS ABI. Later registrations for the same key are
// ignored.
func (r *Registry) RegisterOSABI(name string, mach arch.Mach, osabi OSABI, init OSABIInitFunc) {
	key := HandlerKey{name, mach, osabi}
	if _, ok := r.handlers[key]; ok {
		logflags.GdbarchLogger().Debugf("OS ABI handler %v already registered", key)
		return
	}
	r.handlers[key] = init
}

// Handlers returns the keys of all registered OS ABI handlers in a
// stable order.
func (r *Registry) Handlers() []HandlerKey {
	keys := maps.Keys(r.handlers)
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Arch != b.Arch {
			return a.Arch < b.Arch
		}
		if a.Mach != b.Mach {
			return a.Mach < b.Mach
		}
		return a.OSABI < b.OSABI
	})
	return keys
}

// Lookup creates the Gdbarch for info and applies the matching OS ABI
// handler, if any.
func (r *Registry) Lookup(info Info) (*Gdbarch, error) {
	log := logflags.GdbarchLogger()
	if info.Arch == nil {
		return nil, &UnknownArchError{info}
	}
	init, ok := r.archs[info.Arch.Name]
	if !ok {
		return nil, &UnknownArchError{info}
	}
	g, err := init(info)
	if err != nil {
		return nil, err
	}
	if h, ok := r.handlers[HandlerKey{info.Arch.Name, info.Arch.Mach, info.OSABI}]; ok {
		log.Debugf("applying OS ABI handler for %v", info)
		h(info, g)
	} else {
		log.Debugf("no OS ABI handler for %v", info)
	}
	return g, nil
}
