// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loongarch

import (
	"github.com/loongdbg/loongtdep/internal/gdbarch"
	"github.com/loongdbg/loongtdep/internal/regcache"
)

// NumGregset is the number of word-sized slots in the kernel's
// general-purpose register image: r0-r31, orig_a0, pc, badv, and 10
// words glibc reserves for extension.
const NumGregset = 45

// SlotRange is a half-open range [Start, End) of image slots.
type SlotRange struct {
	Start, End int
}

// ReservedSlots are the image slots the regset never interprets.
// orig_a0 is recorded by the kernel but is not part of the
// general-purpose register set.
var ReservedSlots = []SlotRange{
	{NumGPRs, NumGPRs + 1},
	{NumGPRs + 3, NumGregset},
}

// ImageSize returns the size in bytes of a general-purpose register
// image.
func (l Layout) ImageSize() int {
	return NumGregset * l.WordSize
}

// Reserved reports whether image slot i is reserved.
func (l Layout) Reserved(slot int) bool {
	for _, r := range ReservedSlots {
		if r.Start <= slot && slot < r.End {
			return true
		}
	}
	return false
}

// offset returns the offset of register regno in the image.
func (l Layout) offset(regno int) int {
	return l.WordSize * (regno - l.R)
}

// SupplyGregset transfers registers from the general-purpose register
// image gprs into rc. regno selects one register, or all of them if
// it is regcache.All. r0 is always supplied as zero and its slot in
// gprs is never read. Registers outside the set are ignored.
//
// gprs must be at least ImageSize bytes.
func (l Layout) SupplyGregset(rc *regcache.Cache, regno int, gprs []byte) {
	if regno == regcache.All {
		rc.RawSupplyZeroed(l.R)
		for i := 1; i < NumGPRs; i++ {
			rc.RawSupply(l.R+i, gprs[l.WordSize*i:])
		}
		rc.RawSupply(l.PC, gprs[l.offset(l.PC):])
		rc.RawSupply(l.BADV, gprs[l.offset(l.BADV):])
	} else if regno == l.R {
		rc.RawSupplyZeroed(regno)
	} else if (l.R < regno && regno < l.R+NumGPRs) || regno == l.PC || regno == l.BADV {
		rc.RawSupply(regno, gprs[l.offset(regno):])
	}
}

// FillGregset transfers registers from rc into the general-purpose
// register image gprs. regno selects one register, or all of them if
// it is regcache.All. Unlike SupplyGregset, r0 is written from rc.
// Registers outside the set and reserved slots are left untouched.
//
// gprs must be at least ImageSize bytes.
func (l Layout) FillGregset(rc *regcache.Cache, regno int, gprs []byte) {
	if regno == regcache.All {
		for i := 0; i < NumGPRs; i++ {
			rc.RawCollect(l.R+i, gprs[l.WordSize*i:])
		}
		rc.RawCollect(l.PC, gprs[l.offset(l.PC):])
		rc.RawCollect(l.BADV, gprs[l.offset(l.BADV):])
	} else if (l.R <= regno && regno < l.R+NumGPRs) || regno == l.PC || regno == l.BADV {
		rc.RawCollect(regno, gprs[l.offset(regno):])
	}
}

// Gregset returns the regset transferring the general-purpose
// register image with layout l.
func (l Layout) Gregset() *gdbarch.Regset {
	return &gdbarch.Regset{
		Supply:  l.SupplyGregset,
		Collect: l.FillGregset,
	}
}
