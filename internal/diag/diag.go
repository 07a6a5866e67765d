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

// Package diag prints the register dump the CPU emits when it hits a fatal
// condition, such as an exception raised while another one is still being
// handled.
package diag

import "log"

// ControlNames labels the ten control registers in index order, for dumps.
var ControlNames = [10]string{
	"RS", "ECAUSE", "ERS", "EPC", "EVEC", "PGTB", "ASID", "EBADADDR", "CPUID", "FWVEC",
}

// DumpRegisters logs the 32 general-purpose registers, eight per line.
func DumpRegisters(regs [32]uint32) {
	log.Print("register dump:")
	for row := 0; row < 4; row++ {
		base := row * 8
		log.Printf("  %08x %08x %08x %08x %08x %08x %08x %08x",
			regs[base], regs[base+1], regs[base+2], regs[base+3],
			regs[base+4], regs[base+5], regs[base+6], regs[base+7])
	}
}

// DumpControl logs the named control registers.
func DumpControl(ctl [32]uint32) {
	log.Print("control register dump:")
	for i, name := range ControlNames {
		log.Printf("  CTL_%s = %08x", name, ctl[i])
	}
}

// Fatal logs why, the general and control register dumps, then terminates
// the process. Called only when the CPU raises an exception while another
// is already being handled, a condition the guest has no way to recover
// from.
func Fatal(why string, regs [32]uint32, ctl [32]uint32) {
	log.Print(why)
	DumpRegisters(regs)
	DumpControl(ctl)
	log.Fatal("halting: nested exception is unrecoverable")
}
