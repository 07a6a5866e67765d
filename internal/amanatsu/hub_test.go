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

package amanatsu

import (
	"testing"

	"github.com/kvasari/lsmachine/internal/bus"
)

func selectSlot(h *Hub, slot uint32) {
	h.Write(portSelect, bus.Long, slot)
}

func TestSelectAndMagicProbe(t *testing.T) {
	h := New()
	kb := NewKeyboard()
	h.SetDevice(2, kb)

	selectSlot(h, 2)
	v, ok := h.Read(portMagic, bus.Long)
	if !ok || v != KeyboardMagic {
		t.Fatalf("magic = %#x, %v, want %#x", v, ok, KeyboardMagic)
	}
}

func TestSelectOutOfRangeSlotRejected(t *testing.T) {
	h := New()
	if h.Write(portSelect, bus.Long, NumSlots) {
		t.Fatal("expected an out-of-range slot select to fail")
	}
}

func TestEmptySlotMagicReadsZero(t *testing.T) {
	h := New()
	selectSlot(h, 5)
	v, ok := h.Read(portMagic, bus.Long)
	if !ok || v != 0 {
		t.Fatalf("magic of empty slot = %#x, %v, want 0, true", v, ok)
	}
}

func TestSetDeviceRejectsDoubleOccupancy(t *testing.T) {
	h := New()
	if err := h.SetDevice(3, NewMouse()); err != nil {
		t.Fatal(err)
	}
	if err := h.SetDevice(3, NewMouse()); err == nil {
		t.Fatal("expected an error reusing a populated slot")
	}
}

func TestControllerEnablesAndDisablesInterruptLine(t *testing.T) {
	h := New()
	kb := NewKeyboard()
	h.SetDevice(4, kb)

	selectSlot(h, 0)
	h.Write(portB, bus.Long, 4)
	h.Write(portAction, bus.Long, 1) // enable interrupts on slot 4

	if kb.InterruptLine() == 0 {
		t.Fatal("expected slot 4's interrupt line to be set")
	}

	h.Write(portAction, bus.Long, 3) // disable
	if kb.InterruptLine() != 0 {
		t.Fatal("expected slot 4's interrupt line to be cleared")
	}
}

func TestControllerActionResetsEveryPopulatedSlot(t *testing.T) {
	h := New()
	kb := NewKeyboard()
	h.SetDevice(1, kb)
	kb.PushKeyDown(5)

	selectSlot(h, 0)
	h.Write(portAction, bus.Long, 2) // reset

	selectSlot(h, 1)
	h.Write(portAction, bus.Long, 1) // drain scan queue
	v, _ := h.Read(portA, bus.Long)
	if v != 0xFFFF {
		t.Fatalf("scan queue after hub reset = %#x, want empty (0xFFFF)", v)
	}
}

func TestMagicPortIsReadOnly(t *testing.T) {
	h := New()
	if h.Write(portMagic, bus.Long, 0x12345678) {
		t.Fatal("expected the magic port to reject writes")
	}
}

func TestMouseProbesButReportsNoMovement(t *testing.T) {
	h := New()
	m := NewMouse()
	h.SetDevice(6, m)

	selectSlot(h, 6)
	if v, ok := h.Read(portMagic, bus.Long); !ok || v != MouseMagic {
		t.Fatalf("magic = %#x, %v, want %#x", v, ok, MouseMagic)
	}
	h.Write(portAction, bus.Long, 1)
	v, _ := h.Read(portA, bus.Long)
	if v != 0 {
		t.Fatalf("mouse portA = %d, want 0", v)
	}
}
