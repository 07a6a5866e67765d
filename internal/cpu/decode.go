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

package cpu

import "github.com/kvasari/lsmachine/internal/bus"

// execALU handles the register-register ALU major opcode (0b111001): NOR,
// OR, XOR, AND, SLT, SUB, ADD, variable shifts, and the register-indexed
// load/store family.
//
// Function codes 9-11 (long/int/byte store) still perform their memory
// access even when reg_d is R0, since reg_d there names the store-data
// register, not a destination; every other function with reg_d == R0,
// including the loads 13-15, raises EXC_INVINST.
func (c *CPU) execALU(instruction uint32) bool {
	function := instruction >> 28
	shiftType := (instruction >> 26) & 0b11
	shiftCount := (instruction >> 21) & 0b11111

	regD := (instruction >> 6) & 0x1F
	regA := (instruction >> 11) & 0x1F
	regB := (instruction >> 16) & 0x1F

	value := c.regs[regB]
	if shiftCount != 0 {
		value = shift(c.regs[regB], shiftCount, shiftType)
	}

	if regD == 0 && !(function >= 9 && function <= 11) {
		c.raiseException(ExcInvInst)
		return false
	}

	switch function {
	case 0: // NOR
		c.setReg(regD, ^(c.regs[regA] | value))
		return true
	case 1: // OR
		c.setReg(regD, c.regs[regA]|value)
		return true
	case 2: // XOR
		c.setReg(regD, c.regs[regA]^value)
		return true
	case 3: // AND
		c.setReg(regD, c.regs[regA]&value)
		return true
	case 4: // SLT signed
		c.setReg(regD, lessThan(c.regs[regA], value, true))
		return true
	case 5: // SLT
		c.setReg(regD, lessThan(c.regs[regA], value, false))
		return true
	case 6: // SUB
		c.setReg(regD, c.regs[regA]-value)
		return true
	case 7: // ADD
		c.setReg(regD, c.regs[regA]+value)
		return true
	case 8: // variable shift
		c.setReg(regD, shift(c.regs[regB], c.regs[regA], shiftType))
		return true
	case 9: // store long[regA+value] = regD
		return c.memWrite(c.regs[regA]+value, bus.Long, c.regs[regD])
	case 10: // store int[regA+value] = regD
		return c.memWrite(c.regs[regA]+value, bus.Int, c.regs[regD]&0xFFFF)
	case 11: // store byte[regA+value] = regD
		return c.memWrite(c.regs[regA]+value, bus.Byte, c.regs[regD]&0xFF)
	case 13: // load regD = long[regA+value]
		v, ok := c.memRead(c.regs[regA]+value, bus.Long)
		if ok {
			c.setReg(regD, v)
		}
		return ok
	case 14: // load regD = int[regA+value]
		v, ok := c.memRead(c.regs[regA]+value, bus.Int)
		if ok {
			c.setReg(regD, v)
		}
		return ok
	case 15: // load regD = byte[regA+value]
		v, ok := c.memRead(c.regs[regA]+value, bus.Byte)
		if ok {
			c.setReg(regD, v)
		}
		return ok
	}

	c.raiseException(ExcInvInst)
	return false
}

// execSpecial handles the unprivileged special major opcode (0b110001): SYS,
// BRK, LL/SC, MOD, DIV, MUL.
func (c *CPU) execSpecial(instruction uint32) bool {
	function := instruction >> 28

	regD := (instruction >> 6) & 0x1F
	regA := (instruction >> 11) & 0x1F
	regB := (instruction >> 16) & 0x1F

	switch function {
	case 0: // SYS
		c.raiseException(ExcSyscall)
		return true
	case 1: // BRK
		c.raiseException(ExcBreakpoint)
		return true
	case 8: // SC, leaves the lock flag set; only RFE clears it
		if c.locked && !c.memWrite(c.regs[regA], bus.Long, c.regs[regB]) {
			return false
		}
		if regD != 0 {
			c.setReg(regD, boolToWord(c.locked))
		}
		return true
	case 9: // LL
		c.locked = true
		if regD != 0 {
			v, ok := c.memRead(c.regs[regA], bus.Long)
			if !ok {
				return false
			}
			c.setReg(regD, v)
		}
		return true
	case 11: // MOD
		if regD != 0 {
			if c.regs[regB] != 0 {
				c.setReg(regD, c.regs[regA]%c.regs[regB])
			} else {
				c.setReg(regD, 0)
			}
		}
		return true
	case 12: // DIV signed
		if regD != 0 {
			if c.regs[regB] != 0 {
				c.setReg(regD, uint32(int32(c.regs[regA])/int32(c.regs[regB])))
			} else {
				c.setReg(regD, 0)
			}
		}
		return true
	case 13: // DIV
		if regD != 0 {
			if c.regs[regB] != 0 {
				c.setReg(regD, c.regs[regA]/c.regs[regB])
			} else {
				c.setReg(regD, 0)
			}
		}
		return true
	case 15: // MUL
		c.setReg(regD, c.regs[regA]*c.regs[regB])
		return true
	}

	c.raiseException(ExcInvInst)
	return false
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// execPrivileged handles the privileged major opcode (0b101001): FWC, RFE,
// HLT, FTLB, MTCR, MFCR. Executing it from user mode raises EXC_INVPRVG
// without decoding the function code.
func (c *CPU) execPrivileged(instruction uint32) bool {
	if c.ctl[CtlRS]&uint32(StatusUser) != 0 {
		c.raiseException(ExcInvPrivg)
		return false
	}

	function := instruction >> 28

	regD := (instruction >> 6) & 0x1F
	regA := (instruction >> 11) & 0x1F
	regB := (instruction >> 16) & 0x1F

	switch function {
	case 10: // FWC
		c.raiseException(ExcFWCall)
		return true
	case 11: // RFE
		c.locked = false
		c.pc = c.ctl[CtlEPC]
		c.ctl[CtlRS] = c.ctl[CtlERS]
		return true
	case 12: // HLT
		c.halted = true
		return true
	case 13: // FTLB, no TLB cache to flush
		return true
	case 14: // MTCR
		c.ctl[regB&0x1F] = c.regs[regA]
		return true
	case 15: // MFCR
		if regD != 0 {
			c.setReg(regD, c.ctl[regB&0x1F])
		}
		return true
	}

	c.raiseException(ExcInvInst)
	return false
}

// execMajor handles every other major opcode: branches, immediate ALU ops,
// LUI, JALR, and the immediate-addressed load/store family.
func (c *CPU) execMajor(majorOp, instruction, currentPC uint32) bool {
	imm := instruction >> 16
	regD := (instruction >> 6) & 0x1F
	regA := (instruction >> 11) & 0x1F

	branch := func() {
		c.pc = currentPC + signExtend23((instruction>>11)<<2)
	}

	switch majorOp {
	case 61: // BEQ
		if c.regs[regD] == 0 {
			branch()
		}
		return true
	case 53: // BNE
		if c.regs[regD] != 0 {
			branch()
		}
		return true
	case 45: // BLT
		if int32(c.regs[regD]) < 0 {
			branch()
		}
		return true
	case 60: // ADDI
		c.setReg(regD, c.regs[regA]+imm)
		return true
	case 52: // SUBI
		c.setReg(regD, c.regs[regA]-imm)
		return true
	case 44: // SLTI
		c.setReg(regD, lessThan(c.regs[regA], imm, false))
		return true
	case 36: // SLTI signed
		c.setReg(regD, lessThan(c.regs[regA], signExtend16(imm), true))
		return true
	case 28: // ANDI
		c.setReg(regD, c.regs[regA]&imm)
		return true
	case 20: // XORI
		c.setReg(regD, c.regs[regA]^imm)
		return true
	case 12: // ORI
		c.setReg(regD, c.regs[regA]|imm)
		return true
	case 4: // LUI
		c.setReg(regD, c.regs[regA]|imm<<16)
		return true
	case 56: // JALR
		if regD != 0 {
			c.setReg(regD, c.pc)
		}
		c.pc = c.regs[regA] + signExtend18(imm<<2)
		return true
	case 59: // load byte[regA+imm] -> regD
		if regD == 0 {
			return true
		}
		v, ok := c.memRead(c.regs[regA]+imm, bus.Byte)
		if ok {
			c.setReg(regD, v)
		}
		return ok
	case 51: // load int[regA+imm*2] -> regD
		if regD == 0 {
			return true
		}
		v, ok := c.memRead(c.regs[regA]+(imm<<1), bus.Int)
		if ok {
			c.setReg(regD, v)
		}
		return ok
	case 43: // load long[regA+imm*4] -> regD
		if regD == 0 {
			return true
		}
		v, ok := c.memRead(c.regs[regA]+(imm<<2), bus.Long)
		if ok {
			c.setReg(regD, v)
		}
		return ok
	case 58: // store byte[regD+imm] = regA
		return c.memWrite(c.regs[regD]+imm, bus.Byte, c.regs[regA])
	case 50: // store int[regD+imm*2] = regA
		return c.memWrite(c.regs[regD]+(imm<<1), bus.Int, c.regs[regA])
	case 42: // store long[regD+imm*4] = regA
		return c.memWrite(c.regs[regD]+(imm<<2), bus.Long, c.regs[regA])
	case 26: // store byte[regD+imm] = sign_ext_5(regA)
		return c.memWrite(c.regs[regD]+imm, bus.Byte, signExtend5(regA))
	case 18: // store int[regD+imm*2] = sign_ext_5(regA)
		return c.memWrite(c.regs[regD]+(imm<<1), bus.Int, signExtend5(regA))
	case 10: // store long[regD+imm*4] = sign_ext_5(regA)
		return c.memWrite(c.regs[regD]+(imm<<2), bus.Long, signExtend5(regA))
	}

	c.raiseException(ExcInvInst)
	return false
}
