// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package ptrace

func Attach(pid int) error { return ErrUnsupported }

func Detach(pid int) error { return ErrUnsupported }

func GetRegset(pid int, size int) ([]byte, error) { return nil, ErrUnsupported }

func SetRegset(pid int, buf []byte) error { return ErrUnsupported }

func (m Memory) ReadMemory(buf []byte, addr uint64) (int, error) {
	return 0, ErrUnsupported
}
