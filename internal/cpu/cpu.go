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

// Package cpu implements the ls architecture processor core: the general
// and control register files, the two-level MMU walk, exception dispatch,
// and the instruction decoder.
package cpu

import (
	"github.com/kvasari/lsmachine/internal/bus"
	"github.com/kvasari/lsmachine/internal/diag"
)

// Status register bits, held in control register RS.
const (
	StatusUser Status = 1 << iota
	StatusInterruptEnable
	StatusMMU
)

// Status is the CTL_RS control register.
type Status uint32

// Control register indices.
const (
	CtlRS uint32 = iota
	CtlECause
	CtlERS
	CtlEPC
	CtlEVec
	CtlPGTB
	CtlASID
	CtlEBadAddr
	CtlCPUID
	CtlFWVec
)

// Exception cause codes.
const (
	ExcInterrupt  = 1
	ExcSyscall    = 2
	ExcFWCall     = 3
	ExcBusError   = 4
	ExcBreakpoint = 6
	ExcInvInst    = 7
	ExcInvPrivg   = 8
	ExcUnaligned  = 9
	ExcPageFault  = 12
	ExcPageWrite  = 13
)

var exceptionNames = map[uint32]string{
	ExcInterrupt:  "EXC_INTERRUPT",
	ExcSyscall:    "EXC_SYSCALL",
	ExcFWCall:     "EXC_FWCALL",
	ExcBusError:   "EXC_BUSERROR",
	ExcBreakpoint: "EXC_BRKPOINT",
	ExcInvInst:    "EXC_INVINST",
	ExcInvPrivg:   "EXC_INVPRVG",
	ExcUnaligned:  "EXC_UNALIGNED",
	ExcPageFault:  "EXC_PAGEFAULT",
	ExcPageWrite:  "EXC_PAGEWRITE",
}

// LinkRegister is R31, where JAL and JALR park the return address.
const LinkRegister = 31

// CPUID is the fixed identity value control register CTL_CPUID resets to.
const CPUID = 0x80060000

// ResetVector is the physical address execution resumes at after reset.
const ResetVector = 0xFFFE0000

// InterruptSource reports whether the LSIC has an unmasked pending vector.
type InterruptSource interface {
	Pending() bool
}

// CPU is one ls architecture processor core.
type CPU struct {
	Bus    *bus.Bus
	Int    InterruptSource
	regs   [32]uint32
	ctl    [32]uint32
	pc     uint32
	exc    uint32
	locked bool
	halted bool
}

// New returns a CPU wired to bus and int, held at reset.
func New(b *bus.Bus, int InterruptSource) *CPU {
	c := &CPU{Bus: b, Int: int}
	c.Reset()
	return c
}

// Reset restores the CPU to its power-on state: PC at the reset vector,
// RS and EVEC cleared, CPUID reloaded, no exception latched, LL reservation
// dropped.
func (c *CPU) Reset() {
	c.pc = ResetVector
	c.ctl[CtlRS] = 0
	c.ctl[CtlEVec] = 0
	c.ctl[CtlCPUID] = CPUID
	c.exc = 0
	c.locked = false
	c.halted = false
}

// PC returns the program counter.
func (c *CPU) PC() uint32 { return c.pc }

// Reg returns general-purpose register n.
func (c *CPU) Reg(n uint32) uint32 { return c.regs[n&0x1F] }

// Ctl returns control register n.
func (c *CPU) Ctl(n uint32) uint32 { return c.ctl[n&0x1F] }

// Halted reports whether the guest has executed HLT.
func (c *CPU) Halted() bool { return c.halted }

// setReg writes dst unless it names R0, which is hardwired to zero.
func (c *CPU) setReg(dst, value uint32) {
	if dst != 0 {
		c.regs[dst] = value
	}
}

// Step dispatches any pending exception or interrupt, then decodes and
// executes exactly one instruction. It returns false when that instruction
// failed with an exception (a faulting load or store, an invalid instruction,
// a privileged one in user mode); SYS, BRK, FWC and a faulting fetch still
// return true. A fatal nested exception never returns, since diag.Fatal
// exits the process.
func (c *CPU) Step() bool {
	if c.exc != 0 || (c.ctl[CtlRS]&uint32(StatusInterruptEnable) != 0 && c.Int != nil && c.Int.Pending()) {
		c.dispatchException()
	}

	if c.halted {
		return true
	}

	currentPC := c.pc
	c.pc += 4

	instruction, ok := c.memRead(currentPC, bus.Long)
	if !ok {
		return true
	}

	major := instruction & 0b111
	majorOp := instruction & 0b111111

	switch {
	case major == 0b111: // JAL
		c.regs[LinkRegister] = c.pc
		c.pc = (currentPC & 0x80000000) | ((instruction >> 3) << 2)
		return true
	case major == 0b110: // J
		c.pc = (currentPC & 0x80000000) | ((instruction >> 3) << 2)
		return true
	case majorOp == 0b111001:
		return c.execALU(instruction)
	case majorOp == 0b110001:
		return c.execSpecial(instruction)
	case majorOp == 0b101001:
		return c.execPrivileged(instruction)
	default:
		return c.execMajor(majorOp, instruction, currentPC)
	}
}

// dispatchException vectors into the pending exception or interrupt,
// following the same latch-and-clear sequence the guest observes: EPC/ECAUSE/ERS
// are saved, RS has its USER and INT bits cleared (and the MMU bit too for a
// firmware call, or when RS bit 0x80 is set), and PC jumps to EVEC (or FWVEC
// for firmware calls). A vector of zero means no exception handler is
// installed yet, so the CPU resets instead of vectoring into address zero.
func (c *CPU) dispatchException() {
	excVector := uint32(0)
	newState := c.ctl[CtlRS] &^ uint32(0x3)

	if c.exc == ExcFWCall {
		excVector = c.ctl[CtlFWVec]
		newState &^= 0x7
	} else {
		if newState&0x80 != 0 {
			newState &^= 0x7
		}
		excVector = c.ctl[CtlEVec]
	}

	if excVector == 0 {
		c.Reset()
	} else {
		if c.exc == 0 {
			c.exc = ExcInterrupt
		}

		c.ctl[CtlEPC] = c.pc
		c.ctl[CtlECause] = c.exc
		c.ctl[CtlERS] = c.ctl[CtlRS]
		c.ctl[CtlRS] = newState
		c.pc = excVector
	}

	c.exc = 0
}

// raiseException latches exception as pending for the next Step call. If an
// exception is already latched when this one arrives, the guest has no
// handler capable of making progress, so the CPU dumps its state and halts
// the process. Interrupts, syscalls, firmware calls, and breakpoints are
// allowed to nest (the common case of an exception firing while the CPU
// is mid-instruction) without this being fatal.
func (c *CPU) raiseException(exception uint32) {
	nested := c.exc != 0
	c.exc = exception

	switch exception {
	case ExcInterrupt, ExcSyscall, ExcFWCall, ExcBreakpoint:
		return
	}

	if nested {
		diag.Fatal("cpu raised "+exceptionNames[exception]+" while another exception was pending", c.regs, c.ctl)
	}
}

// translateVA walks the two-level page table rooted at CTL_PGTB, returning
// the physical address for addr. Table walk failures raise EXC_BUSERROR;
// an unmapped or invalid entry raises EXC_PAGEFAULT (EXC_PAGEWRITE for a
// write access).
func (c *CPU) translateVA(addr uint32, isWriting bool) (uint32, bool) {
	virtPageNum := addr >> 12
	virtPageOff := addr & 0xFFF

	pdeAddr := c.ctl[CtlPGTB] + ((addr >> 22) << 2)
	pde, ok := c.Bus.Read(pdeAddr, bus.Long)
	if !ok {
		c.ctl[CtlEBadAddr] = pdeAddr
		c.raiseException(ExcBusError)
		return 0, false
	}

	if pde&0x1 == 0 {
		c.ctl[CtlEBadAddr] = addr
		c.raiseException(pageFaultCause(isWriting))
		return 0, false
	}

	tlbAddr := ((pde >> 5) << 12) + ((virtPageNum & 0x3FF) << 2)
	tlbHigh, ok := c.Bus.Read(tlbAddr, bus.Long)
	if !ok {
		c.ctl[CtlEBadAddr] = tlbAddr
		c.raiseException(ExcBusError)
		return 0, false
	}

	if tlbHigh&0x1 == 0 {
		c.ctl[CtlEBadAddr] = addr
		c.raiseException(pageFaultCause(isWriting))
		return 0, false
	}

	physPageNum := ((tlbHigh >> 5) & 0xFFFFF) << 12
	return physPageNum + virtPageOff, true
}

func pageFaultCause(isWriting bool) uint32 {
	if isWriting {
		return ExcPageWrite
	}
	return ExcPageFault
}

// reservedRange reports whether addr falls in the guard band the CPU refuses
// to route through the MMU or bus at all: the low 4 KiB and the top 4 KiB of
// the address space are permanently faulting.
func reservedRange(addr uint32) bool {
	return addr < 0x1000 || addr >= 0xFFFFF000
}

// memRead performs a size-width load from virtual address addr, translating
// through the MMU when CTL_RS.MMU is set.
func (c *CPU) memRead(addr uint32, size bus.Size) (uint32, bool) {
	if reservedRange(addr) {
		c.ctl[CtlEBadAddr] = addr
		c.raiseException(ExcPageFault)
		return 0, false
	}

	if c.ctl[CtlRS]&uint32(StatusMMU) != 0 {
		phys, ok := c.translateVA(addr, false)
		if !ok {
			return 0, false
		}
		addr = phys
	}

	value, ok := c.Bus.Read(addr, size)
	if !ok {
		c.ctl[CtlEBadAddr] = addr
		c.raiseException(ExcBusError)
		return 0, false
	}
	return value, true
}

// memWrite performs a size-width store to virtual address addr, translating
// through the MMU when CTL_RS.MMU is set.
func (c *CPU) memWrite(addr uint32, size bus.Size, value uint32) bool {
	if reservedRange(addr) {
		c.ctl[CtlEBadAddr] = addr
		c.raiseException(ExcPageWrite)
		return false
	}

	if c.ctl[CtlRS]&uint32(StatusMMU) != 0 {
		phys, ok := c.translateVA(addr, true)
		if !ok {
			return false
		}
		addr = phys
	}

	if !c.Bus.Write(addr, size, value) {
		c.ctl[CtlEBadAddr] = addr
		c.raiseException(ExcBusError)
		return false
	}
	return true
}
