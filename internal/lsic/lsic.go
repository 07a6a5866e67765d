/*
Copyright (c) 2024 the lsmachine contributors

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

// Package lsic implements the Lean System Interrupt Controller: a 64-vector
// pending/mask bitmap with a claim/complete port, mapped into the platform
// board's MMIO window.
package lsic

import "github.com/kvasari/lsmachine/internal/bus"

// Controller is the interrupt controller. It satisfies bus.Area so the
// platform board can forward its LSIC window directly onto it.
type Controller struct {
	regs    [5]uint32 // 0,1: mask words; 2,3: pending words; 4: claim/complete port
	pending bool
}

// New returns a reset interrupt controller.
func New() *Controller {
	c := &Controller{}
	c.Reset()
	return c
}

// Reset clears every register and the pending signal.
func (c *Controller) Reset() {
	for i := range c.regs {
		c.regs[i] = 0
	}
	c.pending = false
}

// Raise sets the pending bit for vector and asserts the pending signal if
// the vector isn't masked. vector must be in [1,63].
func (c *Controller) Raise(vector int) bool {
	if vector <= 0 || vector >= 64 {
		return false
	}

	word := vector / 32
	bit := uint32(vector & 0x1F)

	c.regs[word+2] |= 1 << bit
	if (c.regs[word]>>bit)&1 == 0 {
		c.pending = true
	}
	return true
}

// Pending reports whether any unmasked vector is pending.
func (c *Controller) Pending() bool {
	return c.pending
}

// claim scans vectors 1..63 ascending and returns the lowest pending,
// unmasked vector, or 0 if none.
func (c *Controller) claim() uint32 {
	for i := 1; i < 64; i++ {
		word := i / 32
		bit := uint32(i & 0x1F)
		if (^c.regs[word]&c.regs[word+2])>>bit&1 != 0 {
			return uint32(i)
		}
	}
	return 0
}

func (c *Controller) recomputePending() {
	c.pending = (^c.regs[0]&c.regs[2]) != 0 || (^c.regs[1]&c.regs[3]) != 0
}

// ReadByte implements bus.Area. Only long-width reads of registers 0-4 are
// defined; register 4 is the claim port.
func (c *Controller) ReadByte(addr uint32, size bus.Size) (uint32, bool) {
	reg := addr / 4
	switch reg {
	case 0, 1, 2, 3:
		return c.regs[reg], true
	case 4:
		return c.claim(), true
	}
	return 0, false
}

// WriteByte implements bus.Area. Registers 0-3 overwrite mask/pending words
// wholesale; register 4 is the complete port, clearing one vector's pending
// bit.
func (c *Controller) WriteByte(addr uint32, size bus.Size, value uint32) bool {
	reg := addr / 4
	switch reg {
	case 0, 1, 2, 3:
		c.regs[reg] = value
	case 4:
		if value >= 64 {
			return false
		}
		c.regs[(value/32)+2] &^= 1 << (value & 31)
	default:
		return false
	}

	c.recomputePending()
	return true
}
