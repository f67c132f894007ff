// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors"

	"github.com/loongdbg/loongtdep/internal/ptrace"
)

// dumpPid attaches to pid and prints its registers. With -write, the
// rebuilt register image is stored back into the thread.
func (c *config) dumpPid(w io.Writer, pid int) error {
	info, err := exeInfo(fmt.Sprintf("/proc/%d/exe", pid), c.osabi)
	if err != nil {
		return errors.Wrapf(err, "process %d", pid)
	}
	g, err := c.registry.Lookup(info)
	if err != nil {
		return err
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if err := ptrace.Attach(pid); err != nil {
		return err
	}
	defer ptrace.Detach(pid)

	images := make(map[string][]byte)
	for _, s := range g.RegsetSections() {
		if s.Name != ".reg" {
			continue
		}
		raw, err := ptrace.GetRegset(pid, s.SupplySize)
		if err != nil {
			return err
		}
		images[s.Name] = raw
	}
	sections := func(name string) ([]byte, error) {
		raw, ok := images[name]
		if !ok {
			return nil, errors.Errorf("process %d: no %s section", pid, name)
		}
		return raw, nil
	}

	fmt.Fprintf(w, "process %d: %v\n", pid, g)
	rc, err := supply(g, sections)
	if err != nil {
		return err
	}
	mem := ptrace.Memory{Pid: pid}
	if err := c.dumpThread(w, g, rc, mem); err != nil {
		return err
	}
	if !c.write {
		return nil
	}
	filled, err := c.checkFill(w, g, rc, sections)
	if err != nil {
		return err
	}
	for _, img := range filled {
		if err := ptrace.SetRegset(pid, img); err != nil {
			return err
		}
	}
	return nil
}
