// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ptrace reads the general-purpose register image and memory
// of a stopped thread.
//
// All calls for a given tracee must come from the OS thread that
// attached to it. Callers should runtime.LockOSThread before Attach.
package ptrace

import "github.com/pkg/errors"

// ErrUnsupported is returned on systems without ptrace support.
var ErrUnsupported = errors.New("ptrace not supported on this system")

// Memory reads the memory of a traced thread.
type Memory struct {
	Pid int
}
