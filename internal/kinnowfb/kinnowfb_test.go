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

package kinnowfb

import (
	"testing"

	"github.com/kvasari/lsmachine/internal/bus"
)

func TestSlotInfoHeaderIdentifiesTheDevice(t *testing.T) {
	f := New(8, 4)

	magic1, _ := f.ReadByte(0, bus.Long)
	magic2, _ := f.ReadByte(4, bus.Long)
	if magic1 != slotMagic1 || magic2 != slotMagic2 {
		t.Fatalf("slot magic = %#x, %#x, want %#x, %#x", magic1, magic2, slotMagic1, slotMagic2)
	}

	name := make([]byte, 11)
	for i := range name {
		v, _ := f.ReadByte(uint32(8+i), bus.Byte)
		name[i] = byte(v)
	}
	if string(name) != "kinnowfb,16" {
		t.Fatalf("slot name = %q, want %q", name, "kinnowfb,16")
	}
}

func TestRegisterBlockReportsSizeAndVRAMLength(t *testing.T) {
	f := New(640, 480)

	size, _ := f.ReadByte(regsStart, bus.Long)
	if size != uint32(480<<12|640) {
		t.Fatalf("SIZE reg = %#x, want %#x", size, uint32(480<<12|640))
	}
	vram, _ := f.ReadByte(regsStart+4, bus.Long)
	if vram != uint32(640*480*2) {
		t.Fatalf("VRAM reg = %d, want %d", vram, 640*480*2)
	}
}

func TestNewFrameBufferStartsFullyDirty(t *testing.T) {
	f := New(8, 4)
	x1, y1, x2, y2, dirty := f.Dirty()
	if !dirty || x1 != 0 || y1 != 0 || x2 != 7 || y2 != 3 {
		t.Fatalf("dirty rect = (%d,%d)-(%d,%d) dirty=%v, want the whole surface", x1, y1, x2, y2, dirty)
	}
}

func TestByteWriteUnionsExactlyOnePixel(t *testing.T) {
	f := New(8, 4)
	f.Flush(make([]uint32, 8*4)) // clear the initial whole-surface dirty flag

	addr := uint32(vramStart) + uint32((1*f.width+3)*2) // pixel (3,1), low byte
	f.WriteByte(addr, bus.Byte, 0xAB)

	x1, y1, x2, y2, dirty := f.Dirty()
	if !dirty || x1 != 3 || y1 != 1 || x2 != 3 || y2 != 1 {
		t.Fatalf("dirty rect = (%d,%d)-(%d,%d) dirty=%v, want a single pixel (3,1)", x1, y1, x2, y2, dirty)
	}
}

func TestLongWriteUnionsTwoAdjacentPixels(t *testing.T) {
	f := New(8, 4)
	f.Flush(make([]uint32, 8*4))

	addr := uint32(vramStart) + uint32((2*f.width+0)*2) // pixels (0,2) and (1,2)
	f.WriteByte(addr, bus.Long, 0xFFFFFFFF)

	x1, y1, x2, y2, dirty := f.Dirty()
	if !dirty || x1 != 0 || y1 != 2 || x2 != 1 || y2 != 2 {
		t.Fatalf("dirty rect = (%d,%d)-(%d,%d) dirty=%v, want pixels (0,2)-(1,2)", x1, y1, x2, y2, dirty)
	}
}

func TestWriteSameValueDoesNotMarkDirty(t *testing.T) {
	f := New(8, 4)
	f.Flush(make([]uint32, 8*4))

	addr := uint32(vramStart)
	f.WriteByte(addr, bus.Byte, 0x00) // VRAM is already zeroed
	_, _, _, _, dirty := f.Dirty()
	if dirty {
		t.Fatal("expected a write of the existing value to leave the surface clean")
	}
}

func TestFlushConvertsRGB565ToOpaqueARGBAndClearsDirty(t *testing.T) {
	f := New(2, 1)
	// pure white in 5-6-5: R=0x1F, G=0x3F, B=0x1F -> 0xFFFF
	addr := uint32(vramStart)
	f.WriteByte(addr, bus.Int, 0xFFFF)

	texture := make([]uint32, 2)
	f.Flush(texture)

	if texture[0] != 0xFFFFFFFF {
		t.Fatalf("texture[0] = %#x, want 0xFFFFFFFF", texture[0])
	}
	if _, _, _, _, dirty := f.Dirty(); dirty {
		t.Fatal("expected Flush to clear the dirty flag")
	}
}

func TestFlushIsNoopWhenClean(t *testing.T) {
	f := New(2, 1)
	f.Flush(make([]uint32, 2))

	texture := make([]uint32, 2)
	texture[0] = 0xDEADBEEF
	f.Flush(texture)
	if texture[0] != 0xDEADBEEF {
		t.Fatal("expected Flush to be a no-op while clean")
	}
}

func TestResetRemarksTheWholeSurfaceDirty(t *testing.T) {
	f := New(8, 4)
	f.Flush(make([]uint32, 8*4))
	f.Reset()

	x1, y1, x2, y2, dirty := f.Dirty()
	if !dirty || x1 != 0 || y1 != 0 || x2 != 7 || y2 != 3 {
		t.Fatalf("dirty rect = (%d,%d)-(%d,%d) dirty=%v, want the whole surface", x1, y1, x2, y2, dirty)
	}
}

func TestVRAMWriteBeyondBoundsFails(t *testing.T) {
	f := New(2, 1)
	if f.WriteByte(uint32(vramStart+100), bus.Byte, 1) {
		t.Fatal("expected a write past the end of VRAM to fail")
	}
}

func TestVRAMLongWriteAtLastValidByteFailsInsteadOfPanicking(t *testing.T) {
	f := New(2, 1) // 2 pixels * 2 bytes = 4-byte VRAM, valid offsets 0..3
	addr := uint32(vramStart) + 3
	if f.WriteByte(addr, bus.Long, 0xFFFFFFFF) {
		t.Fatal("expected a long write starting one byte before the end of VRAM to fail")
	}
}

func TestSlotInfoIsReadOnly(t *testing.T) {
	f := New(2, 1)
	if f.WriteByte(0, bus.Long, 0) {
		t.Fatal("expected the slot-info window to reject writes")
	}
}
