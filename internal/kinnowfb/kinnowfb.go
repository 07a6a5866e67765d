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

// Package kinnowfb implements the 16-bpp KinnowFB framebuffer: a slot-info
// header, a small register block, raw VRAM, and dirty-rectangle tracking
// the host driver consults at display cadence.
package kinnowfb

import "github.com/kvasari/lsmachine/internal/bus"

const (
	slotInfoEnd   = 0x100
	regsStart     = 0x3000
	regsEnd       = 0x3100
	vramStart     = 0x100000

	regSize = 0
	regVRAM = 1
)

const (
	slotMagic1 = 0x0C007CA1
	slotMagic2 = 0x4B494E35 // "KIN5"
)

// FrameBuffer is bus area 24.
type FrameBuffer struct {
	width, height int

	vram     []byte
	slotInfo [256]byte
	regs     [256]byte

	dirty                  bool
	x1, y1, x2, y2 int
}

// New returns a width x height 16bpp framebuffer, VRAM zeroed and the whole
// surface marked dirty so the first flush paints everything.
func New(width, height int) *FrameBuffer {
	f := &FrameBuffer{
		width:  width,
		height: height,
		vram:   make([]byte, width*height*2),
	}

	putLong(f.slotInfo[0:4], slotMagic1)
	putLong(f.slotInfo[4:8], slotMagic2)
	copy(f.slotInfo[8:], "kinnowfb,16")

	putLong(f.regs[regSize*4:], uint32(height<<12|width))
	putLong(f.regs[regVRAM*4:], uint32(len(f.vram)))

	f.dirty = true
	f.x1, f.y1 = 0, 0
	f.x2, f.y2 = width-1, height-1

	return f
}

// Reset re-marks the whole surface dirty; VRAM contents are untouched,
// matching the reference board's behavior across a soft reset.
func (f *FrameBuffer) Reset() {
	f.setDirty(0, 0, f.width-1, f.height-1)
}

// Width and Height report the framebuffer's fixed dimensions.
func (f *FrameBuffer) Width() int  { return f.width }
func (f *FrameBuffer) Height() int { return f.height }

// Dirty reports whether any pixel has changed since the last Flush, and if
// so the bounding box of the changes (inclusive on all four edges).
func (f *FrameBuffer) Dirty() (x1, y1, x2, y2 int, ok bool) {
	return f.x1, f.y1, f.x2, f.y2, f.dirty
}

// Flush converts the dirty rectangle of VRAM from 16-bit 5-6-5 RGB into the
// host's streaming ARGB8888 texture, addressed as texture[y*width+x], and
// clears the dirty flag. It is a no-op if nothing is dirty.
func (f *FrameBuffer) Flush(texture []uint32) {
	if !f.dirty {
		return
	}
	for y := f.y1; y <= f.y2; y++ {
		for x := f.x1; x <= f.x2; x++ {
			i := (y*f.width + x) * 2
			pixel := uint16(f.vram[i]) | uint16(f.vram[i+1])<<8
			texture[y*f.width+x] = rgb565ToARGB(pixel)
		}
	}
	f.dirty = false
}

// rgb565ToARGB expands a 5-6-5 pixel to opaque ARGB8888, replicating the high
// bits of each channel into its low bits so full white/black map exactly.
func rgb565ToARGB(p uint16) uint32 {
	r := uint32(p>>11) & 0x1F
	g := uint32(p>>5) & 0x3F
	b := uint32(p) & 0x1F

	r = r<<3 | r>>2
	g = g<<2 | g>>4
	b = b<<3 | b>>2

	return 0xFF000000 | r<<16 | g<<8 | b
}

func (f *FrameBuffer) setDirty(x1, y1, x2, y2 int) {
	if !f.dirty {
		f.dirty = true
		f.x1, f.y1, f.x2, f.y2 = x1, y1, x2, y2
		return
	}
	if x1 < f.x1 {
		f.x1 = x1
	}
	if y1 < f.y1 {
		f.y1 = y1
	}
	if x2 > f.x2 {
		f.x2 = x2
	}
	if y2 > f.y2 {
		f.y2 = y2
	}
}

// ReadByte implements bus.Area. Byte, int, and long widths are each handled
// explicitly; the reference implementation's equivalent collapsed all three
// into a single byte-sized branch, which this corrects.
func (f *FrameBuffer) ReadByte(addr uint32, size bus.Size) (uint32, bool) {
	switch {
	case addr < slotInfoEnd:
		return readWidth(f.slotInfo[:], addr, size)
	case addr >= regsStart && addr < regsEnd:
		return readWidth(f.regs[:], addr-regsStart, size)
	case addr >= vramStart:
		offset := addr - vramStart
		if int(offset) >= len(f.vram) {
			return 0, false
		}
		return readWidth(f.vram, offset, size)
	}
	return 0, false
}

// WriteByte implements bus.Area. A write that changes VRAM contents unions
// the affected pixel (two pixels for a long write) into the dirty
// rectangle.
func (f *FrameBuffer) WriteByte(addr uint32, size bus.Size, value uint32) bool {
	switch {
	case addr < slotInfoEnd:
		return false
	case addr >= regsStart && addr < regsEnd:
		return writeWidth(f.regs[:], addr-regsStart, size, value)
	case addr >= vramStart:
		offset := addr - vramStart
		var span int
		switch size {
		case bus.Int:
			span = 1
		case bus.Long:
			span = 3
		}
		if int(offset)+span >= len(f.vram) {
			return false
		}

		pixel := int(offset) / 2
		x := pixel % f.width
		y := pixel / f.width

		switch size {
		case bus.Byte:
			if f.vram[offset] != byte(value) {
				f.setDirty(x, y, x, y)
				f.vram[offset] = byte(value)
			}
		case bus.Int:
			if f.vram[offset] != byte(value) || f.vram[offset+1] != byte(value>>8) {
				f.setDirty(x, y, x, y)
				f.vram[offset] = byte(value)
				f.vram[offset+1] = byte(value >> 8)
			}
		case bus.Long:
			if f.vram[offset] != byte(value) || f.vram[offset+1] != byte(value>>8) ||
				f.vram[offset+2] != byte(value>>16) || f.vram[offset+3] != byte(value>>24) {
				f.setDirty(x, y, x+1, y)
				f.vram[offset] = byte(value)
				f.vram[offset+1] = byte(value >> 8)
				f.vram[offset+2] = byte(value >> 16)
				f.vram[offset+3] = byte(value >> 24)
			}
		default:
			return false
		}
		return true
	}
	return false
}

func putLong(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func readWidth(mem []byte, offset uint32, size bus.Size) (uint32, bool) {
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

func writeWidth(mem []byte, offset uint32, size bus.Size, value uint32) bool {
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
