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

// Package rtc implements the real-time clock: host epoch readback, a
// settable epoch override, and a periodic interval-tick interrupt driven by
// the host driver's millisecond clock.
package rtc

import (
	"time"

	"github.com/kvasari/lsmachine/internal/bus"
)

// IRQVector is the LSIC vector raised on each elapsed interval.
const IRQVector = 1

// Command port opcodes.
const (
	CmdSetInterval = iota + 1
	CmdGetEpochSec
	CmdGetEpochMS
	CmdSetEpochSec
	CmdSetEpochMS
)

const (
	portCommand = 0x20
	portA       = 0x21
)

// InterruptRaiser is the subset of the interrupt controller the RTC needs.
type InterruptRaiser interface {
	Raise(vector int) bool
}

// RTC is the real-time clock, occupying citron ports 0x20-0x21.
type RTC struct {
	int InterruptRaiser

	modified      bool
	epochSec      uint32
	epochMS       uint32
	intervalMS    uint32
	intervalCount uint32
	portA         uint32

	snapshot time.Time
	now      func() time.Time
}

// New returns an RTC tracking the host wall clock until overridden by a
// SetEpoch command.
func New(int InterruptRaiser) *RTC {
	r := &RTC{int: int, now: time.Now}
	r.snapshot = r.now()
	return r
}

// Reset clears the interval timer and register latch. It does not clear an
// epoch override; that persists until the guest reprograms it.
func (r *RTC) Reset() {
	r.intervalMS = 0
	r.intervalCount = 0
	r.portA = 0
}

// Read implements the citron read half of the protocol.
func (r *RTC) Read(port uint32, size bus.Size) (uint32, bool) {
	switch port {
	case portCommand:
		return 0, true
	case portA:
		return r.portA, true
	}
	return 0, false
}

// Write implements the citron write half of the protocol.
func (r *RTC) Write(port uint32, size bus.Size, value uint32) bool {
	switch port {
	case portCommand:
		switch value {
		case CmdSetInterval:
			r.intervalMS = r.portA
			r.intervalCount = 0
			return true
		case CmdGetEpochSec:
			r.portA = r.epochSeconds()
			return true
		case CmdGetEpochMS:
			r.portA = r.epochMillis()
			return true
		case CmdSetEpochSec:
			r.epochSec = r.portA
			r.modified = true
			return true
		case CmdSetEpochMS:
			r.epochMS = r.portA
			r.modified = true
			return true
		}
		return false
	case portA:
		r.portA = value
		return true
	}
	return false
}

func (r *RTC) epochSeconds() uint32 {
	if r.modified {
		return r.epochSec
	}
	return uint32(r.snapshot.Unix())
}

func (r *RTC) epochMillis() uint32 {
	if r.modified {
		return r.epochMS
	}
	return uint32(r.snapshot.UnixMilli())
}

// Tick advances the clock by ms milliseconds and raises IRQVector once the
// interval accumulator reaches the programmed interval. An interval of zero
// fires on every tick. The free-running host snapshot only advances here,
// not on read, so two reads between ticks see the same value.
func (r *RTC) Tick(ms uint32) {
	if r.modified {
		r.epochMS += ms
		if r.epochMS >= 1000 {
			r.epochMS -= 1000
			r.epochSec++
		}
	} else {
		r.snapshot = r.now()
	}

	r.intervalCount += ms
	if r.intervalCount >= r.intervalMS {
		if r.int != nil {
			r.int.Raise(IRQVector)
		}
		r.intervalCount -= r.intervalMS
	}
}
