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

// Package serial implements a citron-attached UART pair: a command port and
// a data port, sinking transmitted bytes to the host and latching the last
// byte the host side pushed for the guest to read.
package serial

import (
	"bufio"
	"io"

	"github.com/kvasari/lsmachine/internal/bus"
)

// Command port opcodes.
const (
	CmdWrite = iota + 1
	CmdRead
	CmdSetInterrupts
	CmdClearInterrupts
)

// Port is one UART, occupying two consecutive citron ports.
type Port struct {
	base uint32
	out  *bufio.Writer

	data       uint32
	lastData   uint32
	interrupts bool
}

// New returns a UART at citron ports (0x10+num*2, 0x10+num*2+1), writing
// transmitted bytes to w.
func New(num int, w io.Writer) *Port {
	p := &Port{base: uint32(0x10 + num*2), out: bufio.NewWriter(w)}
	p.Reset()
	return p
}

// Reset disables interrupts; the data latches survive a reset, matching the
// reference firmware's expectation that a reset mid-transfer doesn't erase
// buffered input.
func (p *Port) Reset() {
	p.interrupts = false
}

// Read implements the citron read half of the protocol.
func (p *Port) Read(port uint32, size bus.Size) (uint32, bool) {
	switch port {
	case p.base:
		return 0, true
	case p.base + 1:
		switch size {
		case bus.Byte:
			return p.data & 0xFF, true
		case bus.Int:
			return p.data & 0xFFFF, true
		case bus.Long:
			return p.data, true
		}
	}
	return 0, true
}

// Write implements the citron write half of the protocol.
func (p *Port) Write(port uint32, size bus.Size, value uint32) bool {
	switch port {
	case p.base:
		switch value {
		case CmdWrite:
			p.out.WriteByte(byte(p.data))
			p.out.Flush()
			return true
		case CmdRead:
			p.data = p.lastData
			p.lastData = 0xFFFF
			return true
		case CmdSetInterrupts:
			p.interrupts = true
			return true
		case CmdClearInterrupts:
			p.interrupts = false
			return true
		}
		return false
	case p.base + 1:
		switch size {
		case bus.Byte:
			p.data = value & 0xFF
		case bus.Int:
			p.data = value & 0xFFFF
		case bus.Long:
			p.data = value
		}
		return true
	}
	return false
}

// PushByte latches b as the next byte a CmdRead will return, as if the host
// side of the wire had transmitted it.
func (p *Port) PushByte(b byte) {
	p.lastData = uint32(b)
}
