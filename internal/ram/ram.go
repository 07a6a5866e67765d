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

// Package ram implements the physical RAM backing store mapped into bus
// areas 0 and 1, plus the area-2 descriptor page that advertises how the
// memory is carved into slots.
package ram

import (
	"errors"

	"github.com/kvasari/lsmachine/internal/bus"
)

const (
	// SlotSize is the granularity the descriptor page reports memory in.
	SlotSize = 32 * 1024 * 1024
	// SlotCount is the number of descriptor slots.
	SlotCount = 8
	// MaxSize is the largest amount of RAM the bus can back (2 areas x 128 MiB).
	MaxSize = 2 * bus.AreaSize
)

// RAM is the physical memory backing store.
type RAM struct {
	mem        []byte
	slotSizes  [SlotCount]uint32
	areas      [2]*area
	descriptor *descriptor
}

// New allocates size bytes of RAM (zero-filled) and prepares the area-0/1
// backing areas and the area-2 descriptor. size must not exceed MaxSize.
func New(size uint32) (*RAM, error) {
	if size == 0 || size > MaxSize {
		return nil, errors.New("ram: size out of range")
	}

	r := &RAM{mem: make([]byte, size)}

	fullSlots := size / SlotSize
	var count uint32
	for ; count < fullSlots; count++ {
		r.slotSizes[count] = SlotSize
	}
	if leftover := size - fullSlots*SlotSize; leftover > 0 && count < SlotCount {
		r.slotSizes[count] = leftover
	}

	r.areas[0] = &area{ram: r, page: 0}
	if size > bus.AreaSize {
		r.areas[1] = &area{ram: r, page: 1}
	}
	r.descriptor = &descriptor{ram: r}

	return r, nil
}

// Install maps the RAM areas and descriptor onto the bus.
func (r *RAM) Install(b *bus.Bus) error {
	if err := b.Map(0, r.areas[0]); err != nil {
		return err
	}
	if err := b.Map(2, r.descriptor); err != nil {
		return err
	}
	if r.areas[1] != nil {
		if err := b.Map(1, r.areas[1]); err != nil {
			return err
		}
	}
	return nil
}

// Bytes exposes the backing store directly, for host-side diagnostics and
// tests; guest code never sees this slice, only bus-mediated access.
func (r *RAM) Bytes() []byte {
	return r.mem
}

type area struct {
	ram  *RAM
	page uint32
}

func (a *area) Reset() {}

func (a *area) ReadByte(addr uint32, size bus.Size) (uint32, bool) {
	offset := a.page*bus.AreaSize + addr
	mem := a.ram.mem
	switch size {
	case bus.Byte:
		if int(offset) >= len(mem) {
			return 0, false
		}
		return uint32(mem[offset]), true
	case bus.Int:
		if int(offset)+1 >= len(mem) {
			return 0, false
		}
		return uint32(mem[offset]) | uint32(mem[offset+1])<<8, true
	case bus.Long:
		if int(offset)+3 >= len(mem) {
			return 0, false
		}
		return uint32(mem[offset]) | uint32(mem[offset+1])<<8 |
			uint32(mem[offset+2])<<16 | uint32(mem[offset+3])<<24, true
	}
	return 0, false
}

func (a *area) WriteByte(addr uint32, size bus.Size, value uint32) bool {
	offset := a.page*bus.AreaSize + addr
	mem := a.ram.mem
	switch size {
	case bus.Byte:
		if int(offset) >= len(mem) {
			return false
		}
		mem[offset] = byte(value)
	case bus.Int:
		if int(offset)+1 >= len(mem) {
			return false
		}
		mem[offset] = byte(value)
		mem[offset+1] = byte(value >> 8)
	case bus.Long:
		if int(offset)+3 >= len(mem) {
			return false
		}
		mem[offset] = byte(value)
		mem[offset+1] = byte(value >> 8)
		mem[offset+2] = byte(value >> 16)
		mem[offset+3] = byte(value >> 24)
	default:
		return false
	}
	return true
}

// descriptor exposes area 2: a long at offset 0 giving the slot count
// (always SlotCount), then one long per slot giving that slot's byte size,
// zero for an unpopulated slot.
type descriptor struct {
	ram *RAM
}

func (d *descriptor) Reset() {}

func (d *descriptor) ReadByte(addr uint32, size bus.Size) (uint32, bool) {
	if size != bus.Long {
		return 0, false
	}
	if addr == 0 {
		return SlotCount, true
	}
	regNum := addr/4 - 1
	if regNum >= SlotCount {
		return 0, false
	}
	return d.ram.slotSizes[regNum], true
}

func (d *descriptor) WriteByte(addr uint32, size bus.Size, value uint32) bool {
	return false
}
