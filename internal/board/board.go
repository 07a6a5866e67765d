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

// Package board implements the platform board mapped at bus area 31: the
// citron port window, board identification registers, NVRAM, the disk
// transfer buffer alias, the LSIC window, the boot ROM, and the software
// reset trigger.
package board

import (
	"errors"
	"io"
	"io/ioutil"

	"github.com/kvasari/lsmachine/internal/bus"
)

const (
	citronStart, citronEnd = 0x000, 0x400
	regsStart, regsEnd     = 0x800, 0x880
	nvramStart, nvramEnd   = 0x1000, 0x11000
	diskBufStart           = 0x20000
	lsicStart, lsicEnd     = 0x30000, 0x30100
	bootROMStart           = 0x7FE0000
	resetAddr              = 0x800000
	resetMagic             = 0xAABBCCDD

	// NumRegs is the number of 32-bit board registers.
	NumRegs = 32
	// NumPorts is the number of citron I/O ports.
	NumPorts = 256
	// NVRAMSize is the size in bytes of the battery-backed NVRAM window.
	NVRAMSize = 64 * 1024
	// MaxBootROM is the largest boot ROM image the board window can address.
	MaxBootROM = 128 * 1024
)

// CitronPort is a device reachable through the 256-port citron I/O window.
type CitronPort interface {
	Reset()
	Read(port uint32, size bus.Size) (uint32, bool)
	Write(port uint32, size bus.Size, value uint32) bool
}

// Resettable is satisfied by the interrupt controller, which the board must
// reset as part of its own reset cascade.
type Resettable interface {
	Reset()
}

// DiskBuffer is satisfied by the disk controller, exposing the shared
// transfer buffer aliased at 0x20000.
type DiskBuffer interface {
	Buffer() *[512]byte
}

// LSICArea is satisfied by the interrupt controller, mapped directly at the
// LSIC window.
type LSICArea interface {
	bus.Area
}

// Board is bus area 31.
type Board struct {
	int  Resettable
	lsic LSICArea
	disk DiskBuffer

	regs  [NumRegs]uint32
	nvram [NVRAMSize]byte
	rom   []byte

	ports [NumPorts]CitronPort
}

// New returns a board wired to the interrupt controller, LSIC MMIO area, and
// disk controller it must forward to.
func New(int Resettable, lsic LSICArea, disk DiskBuffer) *Board {
	b := &Board{int: int, lsic: lsic, disk: disk}
	b.regs[0] = 0x00030001
	return b
}

// LoadBootROM reads r fully as the boot ROM image, mapped read-only at
// 0x7FE0000. The image must not exceed MaxBootROM bytes.
func (b *Board) LoadBootROM(r io.Reader) error {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	if len(data) > MaxBootROM {
		return errors.New("board: boot ROM image too large")
	}
	b.rom = data
	return nil
}

// SetPort registers port as the handler for the given citron port number.
// A port may be claimed at most once.
func (b *Board) SetPort(num uint32, port CitronPort) error {
	if num >= NumPorts {
		return errors.New("board: port index out of range")
	}
	if b.ports[num] != nil {
		return errors.New("board: port already in use")
	}
	b.ports[num] = port
	return nil
}

// Install maps the board onto area 31.
func (b *Board) Install(bs *bus.Bus) error {
	return bs.Map(31, b)
}

// Reset cascades into the interrupt controller and every registered port,
// matching a hardware reset triggered by the reset-trigger address.
func (b *Board) Reset() {
	if b.int != nil {
		b.int.Reset()
	}
	for _, p := range b.ports {
		if p != nil {
			p.Reset()
		}
	}
}

// ReadByte implements bus.Area for the platform board's MMIO window.
func (b *Board) ReadByte(addr uint32, size bus.Size) (uint32, bool) {
	switch {
	case addr < citronEnd:
		portNum := addr / 4
		if port := b.ports[portNum]; port != nil {
			return port.Read(portNum, size)
		}
		return 0, true
	case addr >= regsStart && addr < regsEnd:
		if size != bus.Long {
			return 0, true
		}
		return b.regs[(addr-regsStart)/4], true
	case addr >= nvramStart && addr < nvramEnd:
		return readWidth(b.nvram[:], addr-nvramStart, size)
	case addr >= diskBufStart && addr < diskBufStart+512:
		if b.disk == nil {
			return 0, false
		}
		buf := b.disk.Buffer()
		return readWidth(buf[:], addr-diskBufStart, size)
	case addr >= lsicStart && addr < lsicEnd:
		if size != bus.Long || b.lsic == nil {
			return 0, false
		}
		return b.lsic.ReadByte(addr-lsicStart, size)
	case addr >= bootROMStart:
		return readWidth(b.rom, addr-bootROMStart, size)
	default:
		return 0, false
	}
}

// WriteByte implements bus.Area for the platform board's MMIO window.
func (b *Board) WriteByte(addr uint32, size bus.Size, value uint32) bool {
	switch {
	case addr < citronEnd:
		portNum := addr / 4
		if port := b.ports[portNum]; port != nil {
			return port.Write(portNum, size, value)
		}
		return true
	case addr >= regsStart && addr < regsEnd:
		regNum := (addr - regsStart) / 4
		if size == bus.Long && regNum != 0 {
			b.regs[regNum] = value
		}
		return true
	case addr >= nvramStart && addr < nvramEnd:
		return writeWidth(b.nvram[:], addr-nvramStart, size, value)
	case addr >= diskBufStart && addr < diskBufStart+512:
		if b.disk == nil {
			return false
		}
		buf := b.disk.Buffer()
		return writeWidth(buf[:], addr-diskBufStart, size, value)
	case addr >= lsicStart && addr < lsicEnd:
		if size != bus.Long || b.lsic == nil {
			return false
		}
		return b.lsic.WriteByte(addr-lsicStart, size, value)
	case addr >= bootROMStart:
		return false
	case addr == resetAddr:
		if size == bus.Long && value == resetMagic {
			b.Reset()
			return true
		}
		return false
	default:
		return false
	}
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
