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

package serial

import (
	"bytes"
	"testing"

	"github.com/kvasari/lsmachine/internal/bus"
)

func TestWriteCommandSinksDataByte(t *testing.T) {
	var out bytes.Buffer
	p := New(0, &out)

	p.Write(p.base+1, bus.Byte, 'h')
	p.Write(p.base, bus.Long, CmdWrite)

	if out.String() != "h" {
		t.Fatalf("sink contents = %q, want %q", out.String(), "h")
	}
}

func TestReadCommandLatchesPushedByteThenDrains(t *testing.T) {
	var out bytes.Buffer
	p := New(0, &out)

	p.PushByte('x')
	p.Write(p.base, bus.Long, CmdRead)

	v, _ := p.Read(p.base+1, bus.Byte)
	if v != 'x' {
		t.Fatalf("data = %q, want %q", v, 'x')
	}

	p.Write(p.base, bus.Long, CmdRead)
	v, _ = p.Read(p.base+1, bus.Byte)
	if v != 0xFF {
		t.Fatalf("drained data = %#x, want 0xFF (lastData reset masked to a byte)", v)
	}
}

func TestCommandPortReadAlwaysReturnsZero(t *testing.T) {
	p := New(0, &bytes.Buffer{})
	p.Write(p.base+1, bus.Long, 0x1234)
	v, ok := p.Read(p.base, bus.Long)
	if !ok || v != 0 {
		t.Fatalf("command port read = %#x, %v, want 0, true", v, ok)
	}
}

func TestDataPortSizeMasking(t *testing.T) {
	p := New(0, &bytes.Buffer{})

	p.Write(p.base+1, bus.Long, 0xAABBCCDD)
	if v, _ := p.Read(p.base+1, bus.Long); v != 0xAABBCCDD {
		t.Fatalf("long = %#x, want 0xAABBCCDD", v)
	}

	p.Write(p.base+1, bus.Int, 0xAABBCCDD)
	if v, _ := p.Read(p.base+1, bus.Int); v != 0xCCDD {
		t.Fatalf("int = %#x, want 0xCCDD", v)
	}

	p.Write(p.base+1, bus.Byte, 0xAABBCCDD)
	if v, _ := p.Read(p.base+1, bus.Byte); v != 0xDD {
		t.Fatalf("byte = %#x, want 0xDD", v)
	}
}

func TestSetAndClearInterrupts(t *testing.T) {
	p := New(0, &bytes.Buffer{})

	p.Write(p.base, bus.Long, CmdSetInterrupts)
	if !p.interrupts {
		t.Fatal("expected interrupts enabled")
	}
	p.Write(p.base, bus.Long, CmdClearInterrupts)
	if p.interrupts {
		t.Fatal("expected interrupts disabled")
	}
}

func TestResetDisablesInterruptsButKeepsDataLatch(t *testing.T) {
	p := New(0, &bytes.Buffer{})
	p.PushByte('z')
	p.Write(p.base, bus.Long, CmdSetInterrupts)

	p.Reset()

	if p.interrupts {
		t.Fatal("expected reset to disable interrupts")
	}
	p.Write(p.base, bus.Long, CmdRead)
	v, _ := p.Read(p.base+1, bus.Byte)
	if v != 'z' {
		t.Fatalf("expected the pushed byte to survive reset, got %q", v)
	}
}

func TestSecondPortOccupiesNextPortPair(t *testing.T) {
	p0 := New(0, &bytes.Buffer{})
	p1 := New(1, &bytes.Buffer{})
	if p1.base != p0.base+2 {
		t.Fatalf("port 1 base = %#x, want %#x", p1.base, p0.base+2)
	}
}
