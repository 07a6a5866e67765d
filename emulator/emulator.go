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

// Package emulator wires the bus, CPU, and every peripheral into one
// machine and drives the single-threaded cooperative scheduler loop a host
// binary runs it under.
package emulator

import (
	"errors"
	"io"

	"github.com/gdamore/tcell"
	"github.com/spf13/afero"

	"github.com/kvasari/lsmachine/internal/amanatsu"
	"github.com/kvasari/lsmachine/internal/board"
	"github.com/kvasari/lsmachine/internal/bus"
	"github.com/kvasari/lsmachine/internal/cpu"
	"github.com/kvasari/lsmachine/internal/disk"
	"github.com/kvasari/lsmachine/internal/kinnowfb"
	"github.com/kvasari/lsmachine/internal/lsic"
	"github.com/kvasari/lsmachine/internal/ram"
	"github.com/kvasari/lsmachine/internal/rtc"
	"github.com/kvasari/lsmachine/internal/serial"
)

// Config describes the peripheral set a Machine is built from. It is the Go
// equivalent of the host driver's construction step.
type Config struct {
	// RAMSize is the amount of RAM to install across areas 0 and 1, in
	// bytes. Must not exceed 2*bus.AreaSize (256 MiB).
	RAMSize uint32

	// BootROM, if non-nil, is read fully and mapped read-only into the
	// board's boot ROM window.
	BootROM io.Reader

	// Fs is the filesystem disk images are opened against.
	Fs afero.Fs
	// DiskImages are attached to the disk controller in order.
	DiskImages []string

	// FBWidth and FBHeight size the KinnowFB framebuffer.
	FBWidth, FBHeight int

	// SerialWriters sinks transmitted bytes from each UART, in port order.
	// One Port is created per writer.
	SerialWriters []io.Writer
}

// Machine is a fully wired ls architecture system: one bus, one CPU, and the
// peripheral set a Config describes.
type Machine struct {
	Bus   *bus.Bus
	RAM   *ram.RAM
	LSIC  *lsic.Controller
	Disk  *disk.Controller
	Board *board.Board
	RTC   *rtc.RTC
	Hub   *amanatsu.Hub
	Keys  *amanatsu.Keyboard
	Mouse *amanatsu.Mouse
	FB    *kinnowfb.FrameBuffer
	CPU   *cpu.CPU

	Serial []*serial.Port

	TermKeys *amanatsu.TermKeySource
}

// New constructs a Machine per the host driver contract: Bus, RAM,
// InterruptController, DiskController, Platform board, serial ports, RTC,
// Amanatsu hub with keyboard and mouse, Framebuffer, then CPU.
func New(cfg Config) (*Machine, error) {
	if cfg.RAMSize == 0 || cfg.RAMSize > ram.MaxSize {
		return nil, errors.New("emulator: invalid RAM size")
	}
	if cfg.FBWidth <= 0 || cfg.FBHeight <= 0 {
		return nil, errors.New("emulator: invalid framebuffer dimensions")
	}

	m := &Machine{}

	m.Bus = bus.New()

	var err error
	if m.RAM, err = ram.New(cfg.RAMSize); err != nil {
		return nil, err
	}
	if err := m.RAM.Install(m.Bus); err != nil {
		return nil, err
	}

	m.LSIC = lsic.New()

	m.Disk = disk.New(m.LSIC)
	for _, path := range cfg.DiskImages {
		if err := m.Disk.Attach(cfg.Fs, path); err != nil {
			return nil, err
		}
	}

	m.Board = board.New(m.LSIC, m.LSIC, m.Disk)
	if cfg.BootROM != nil {
		if err := m.Board.LoadBootROM(cfg.BootROM); err != nil {
			return nil, err
		}
	}
	dp := diskPorts{m.Disk}
	for _, port := range []uint32{0x19, 0x1a, 0x1b} {
		if err := m.Board.SetPort(port, dp); err != nil {
			return nil, err
		}
	}

	for i, w := range cfg.SerialWriters {
		port := serial.New(i, w)
		m.Serial = append(m.Serial, port)
		sp := serialPort{port}
		base := uint32(0x10 + i*2)
		if err := m.Board.SetPort(base, sp); err != nil {
			return nil, err
		}
		if err := m.Board.SetPort(base+1, sp); err != nil {
			return nil, err
		}
	}

	m.RTC = rtc.New(m.LSIC)
	rp := rtcPort{m.RTC}
	if err := m.Board.SetPort(0x20, rp); err != nil {
		return nil, err
	}
	if err := m.Board.SetPort(0x21, rp); err != nil {
		return nil, err
	}

	m.Hub = amanatsu.New()
	m.Keys = amanatsu.NewKeyboard()
	m.Mouse = amanatsu.NewMouse()
	if err := m.Hub.SetDevice(1, m.Keys); err != nil {
		return nil, err
	}
	if err := m.Hub.SetDevice(2, m.Mouse); err != nil {
		return nil, err
	}
	hp := hubPort{m.Hub}
	for _, port := range []uint32{0x30, 0x31, 0x32, 0x33, 0x34} {
		if err := m.Board.SetPort(port, hp); err != nil {
			return nil, err
		}
	}

	if err := m.Board.Install(m.Bus); err != nil {
		return nil, err
	}

	m.FB = kinnowfb.New(cfg.FBWidth, cfg.FBHeight)
	if err := m.Bus.Map(24, m.FB); err != nil {
		return nil, err
	}

	m.CPU = cpu.New(m.Bus, m.LSIC)
	m.TermKeys = amanatsu.NewTermKeySource(m.Keys)

	return m, nil
}

// Reset cascades a full system reset: every mapped bus area (RAM, board, and
// in turn the LSIC and every citron port through the board's own reset) is
// reset, then the CPU returns to its reset vector.
func (m *Machine) Reset() {
	m.Bus.Reset()
	m.CPU.Reset()
}

// HandleKeyEvent feeds one host key event to the keyboard and raises its
// interrupt line on the LSIC if the controller has enabled interrupts for
// the keyboard's slot, so the guest can be interrupt-driven instead of
// polling the scan queue every tick.
func (m *Machine) HandleKeyEvent(ev *tcell.EventKey) {
	m.TermKeys.HandleKeyEvent(ev)
	if vector := m.Keys.InterruptLine(); vector != 0 {
		m.LSIC.Raise(vector)
	}
}

// Step runs a budgeted batch of CPU steps, halting the batch early if the
// guest executes HLT, then advances the RTC by tickMS. This is one iteration
// of the host driver's per-tick work, minus input polling and framebuffer
// flush, which the host performs itself (the former needs host event
// plumbing this package doesn't own, the latter a host-owned texture).
func (m *Machine) Step(budget int, tickMS uint32) {
	for i := 0; i < budget; i++ {
		if m.CPU.Halted() {
			break
		}
		m.CPU.Step()
	}
	m.RTC.Tick(tickMS)
}

// diskPorts adapts disk.Controller's size-aware Read/Write to
// board.CitronPort. The controller already switches on the absolute citron
// port numbers (0x19-0x1b), so the port number is passed through unchanged.
type diskPorts struct{ c *disk.Controller }

func (d diskPorts) Reset()                                  { d.c.Reset() }
func (d diskPorts) Read(port uint32, size bus.Size) (uint32, bool)  { return d.c.Read(port, size) }
func (d diskPorts) Write(port uint32, size bus.Size, v uint32) bool { return d.c.Write(port, size, v) }

type serialPort struct{ p *serial.Port }

func (s serialPort) Reset()                                  { s.p.Reset() }
func (s serialPort) Read(port uint32, size bus.Size) (uint32, bool)  { return s.p.Read(port, size) }
func (s serialPort) Write(port uint32, size bus.Size, v uint32) bool { return s.p.Write(port, size, v) }

type rtcPort struct{ r *rtc.RTC }

func (r rtcPort) Reset()                                  { r.r.Reset() }
func (r rtcPort) Read(port uint32, size bus.Size) (uint32, bool)  { return r.r.Read(port, size) }
func (r rtcPort) Write(port uint32, size bus.Size, v uint32) bool { return r.r.Write(port, size, v) }

type hubPort struct{ h *amanatsu.Hub }

func (h hubPort) Reset()                                  { h.h.Reset() }
func (h hubPort) Read(port uint32, size bus.Size) (uint32, bool)  { return h.h.Read(port, size) }
func (h hubPort) Write(port uint32, size bus.Size, v uint32) bool { return h.h.Write(port, size, v) }
