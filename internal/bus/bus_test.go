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

package bus

import "testing"

type fakeArea struct {
	mem    [16]byte
	resets int
}

func (f *fakeArea) Reset() { f.resets++ }

func (f *fakeArea) ReadByte(addr uint32, size Size) (uint32, bool) {
	if int(addr) >= len(f.mem) {
		return 0, false
	}
	return uint32(f.mem[addr]), true
}

func (f *fakeArea) WriteByte(addr uint32, size Size, value uint32) bool {
	if int(addr) >= len(f.mem) {
		return false
	}
	f.mem[addr] = byte(value)
	return true
}

func TestMapDispatchesByAreaShift(t *testing.T) {
	b := New()
	a := &fakeArea{}
	if err := b.Map(5, a); err != nil {
		t.Fatal(err)
	}

	addr := uint32(5) << 27
	if !b.Write(addr+3, Byte, 0x42) {
		t.Fatal("write to mapped area failed")
	}
	v, ok := b.Read(addr+3, Byte)
	if !ok || v != 0x42 {
		t.Fatalf("got %#x, %v", v, ok)
	}
}

func TestMapRejectsDoubleMapping(t *testing.T) {
	b := New()
	if err := b.Map(0, &fakeArea{}); err != nil {
		t.Fatal(err)
	}
	if err := b.Map(0, &fakeArea{}); err == nil {
		t.Fatal("expected error remapping an occupied area")
	}
}

func TestUnmappedHighAreaReadsZeroAndIgnoresWrites(t *testing.T) {
	b := New()
	addr := uint32(SlotStart) << 27

	v, ok := b.Read(addr, Long)
	if !ok || v != 0 {
		t.Fatalf("unmapped area >= SlotStart should read zero, got %#x, %v", v, ok)
	}
	if !b.Write(addr, Long, 0xFFFFFFFF) {
		t.Fatal("unmapped area >= SlotStart should silently accept writes")
	}
}

func TestUnmappedLowAreaFails(t *testing.T) {
	b := New()
	if _, ok := b.Read(0, Long); ok {
		t.Fatal("unmapped area below SlotStart should fail")
	}
	if b.Write(0, Long, 1) {
		t.Fatal("unmapped area below SlotStart should fail")
	}
}

func TestResetCascades(t *testing.T) {
	b := New()
	a := &fakeArea{}
	b.Map(3, a)
	b.Reset()
	if a.resets != 1 {
		t.Fatalf("expected one reset, got %d", a.resets)
	}
}
