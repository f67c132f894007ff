// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regcache

import (
	"encoding/binary"
	"testing"
)

var testDesc = &Description{
	Names: []string{"a", "b", "c"},
	Sizes: []int{8, 4, 8},
	Order: binary.LittleEndian,
}

func TestSupplyCollect(t *testing.T) {
	c := New(testDesc)
	if c.Valid(1) {
		t.Fatalf("fresh register is valid")
	}

	c.RawSupply(1, []byte{1, 2, 3, 4, 5, 6})
	if v, err := c.Uint(1); err != nil || v != 0x04030201 {
		t.Errorf("want 0x04030201, got %#x, %v", v, err)
	}

	out := []byte{9, 9, 9, 9, 9}
	c.RawCollect(1, out)
	if want := []byte{1, 2, 3, 4, 9}; string(out) != string(want) {
		t.Errorf("want % x, got % x", want, out)
	}

	c.SetUint(0, 0x1122334455667788)
	c.RawSupplyZeroed(0)
	if v, err := c.Uint(0); err != nil || v != 0 {
		t.Errorf("want 0, got %#x, %v", v, err)
	}

	c.RawSupply(2, nil)
	if st := c.Status(2); st != Unavailable {
		t.Errorf("want unavailable, got %v", st)
	}
	if _, err := c.Uint(2); err == nil {
		t.Errorf("want error reading unavailable register")
	}
}

func TestLookup(t *testing.T) {
	if n, ok := testDesc.Lookup("c"); !ok || n != 2 {
		t.Errorf("want 2, got %d, %v", n, ok)
	}
	if _, ok := testDesc.Lookup("d"); ok {
		t.Errorf("found nonexistent register")
	}
}
