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

// Package amanatsu implements the 16-slot device multiplexer hub, its
// always-present controller in slot 0, and the keyboard and mouse devices
// that plug into it.
package amanatsu

import (
	"errors"

	"github.com/kvasari/lsmachine/internal/bus"
)

// NumSlots is the number of device slots the hub multiplexes.
const NumSlots = 16

const (
	portSelect = 0x30
	portMagic  = 0x31
	portAction = 0x32
	portA      = 0x33
	portB      = 0x34
)

// InterruptRaiser is the subset of the interrupt controller a plugged-in
// device needs to signal events.
type InterruptRaiser interface {
	Raise(vector int) bool
}

// Device is a device that can occupy one hub slot.
type Device interface {
	Magic() uint32
	PortA() uint32
	SetPortA(uint32)
	PortB() uint32
	SetPortB(uint32)
	SetInterruptLine(int)
	Reset()
	Action(value uint32) bool
}

// baseDevice gives Device implementations the port-A/port-B register pair
// and an interrupt line, matching every concrete device's shared layout.
type baseDevice struct {
	magic         uint32
	portA, portB  uint32
	interruptLine int
}

func (d *baseDevice) Magic() uint32          { return d.magic }
func (d *baseDevice) PortA() uint32          { return d.portA }
func (d *baseDevice) SetPortA(v uint32)      { d.portA = v }
func (d *baseDevice) PortB() uint32          { return d.portB }
func (d *baseDevice) SetPortB(v uint32)      { d.portB = v }
func (d *baseDevice) SetInterruptLine(v int) { d.interruptLine = v }

// InterruptLine returns the LSIC vector this device raises on events, or 0
// if the controller hasn't enabled interrupts for its slot.
func (d *baseDevice) InterruptLine() int { return d.interruptLine }

// Hub is the Amanatsu device multiplexer, occupying citron ports 0x30-0x34.
// Slot 0 is always the built-in controller.
type Hub struct {
	devices  [NumSlots]Device
	selected uint32

	controller *Controller
}

// New returns a hub with its slot-0 controller installed.
func New() *Hub {
	h := &Hub{}
	h.controller = &Controller{hub: h}
	h.devices[0] = h.controller
	return h
}

// SetDevice installs device in slot num. A slot may be populated at most
// once.
func (h *Hub) SetDevice(num int, device Device) error {
	if num < 0 || num >= NumSlots {
		return errors.New("amanatsu: slot index out of range")
	}
	if h.devices[num] != nil {
		return errors.New("amanatsu: device slot already in use")
	}
	h.devices[num] = device
	return nil
}

// Reset resets every populated slot.
func (h *Hub) Reset() {
	for _, d := range h.devices {
		if d != nil {
			d.Reset()
		}
	}
}

// Read implements the citron read half of the protocol.
func (h *Hub) Read(port uint32, size bus.Size) (uint32, bool) {
	switch port {
	case portSelect:
		return h.selected, true
	case portMagic:
		if d := h.devices[h.selected]; d != nil {
			return d.Magic(), true
		}
		return 0, true
	case portAction:
		if h.devices[h.selected] != nil {
			return 0, true
		}
	case portA:
		if d := h.devices[h.selected]; d != nil {
			return d.PortA(), true
		}
	case portB:
		if d := h.devices[h.selected]; d != nil {
			return d.PortB(), true
		}
	}
	return 0, false
}

// Write implements the citron write half of the protocol.
func (h *Hub) Write(port uint32, size bus.Size, value uint32) bool {
	switch port {
	case portSelect:
		if value < NumSlots {
			h.selected = value
			return true
		}
	case portMagic:
		return false
	case portAction:
		if d := h.devices[h.selected]; d != nil {
			return d.Action(value)
		}
	case portA:
		if d := h.devices[h.selected]; d != nil {
			d.SetPortA(value)
			return true
		}
	case portB:
		if d := h.devices[h.selected]; d != nil {
			d.SetPortB(value)
			return true
		}
	}
	return false
}

// Controller is the always-present slot-0 device: enables or disables a
// slot's interrupt line, and can force a full hub reset.
type Controller struct {
	baseDevice
	hub *Hub
}

func (c *Controller) Reset() {}

func (c *Controller) Action(value uint32) bool {
	switch value {
	case 1: // enable interrupts on device in port B
		if c.portB < NumSlots && c.hub.devices[c.portB] != nil {
			c.hub.devices[c.portB].SetInterruptLine(48 + int(c.portB))
			return true
		}
	case 2: // reset
		c.hub.Reset()
		return true
	case 3: // disable interrupts on device in port B
		if c.portB < NumSlots && c.hub.devices[c.portB] != nil {
			c.hub.devices[c.portB].SetInterruptLine(0)
			return true
		}
	}
	return false
}
