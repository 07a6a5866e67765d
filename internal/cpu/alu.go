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

// signExtend sign-extends value from a field whose most significant bit is
// at position (31-bits), by shifting the field up against bit 31 and back
// down as a signed value.
func signExtend(value, bits uint32) uint32 {
	return uint32(int32(value<<bits) >> bits)
}

func signExtend23(value uint32) uint32 { return signExtend(value, 9) }
func signExtend18(value uint32) uint32 { return signExtend(value, 14) }
func signExtend5(value uint32) uint32  { return signExtend(value, 27) }
func signExtend16(value uint32) uint32 { return signExtend(value, 16) }

func rotateRight(value, bits uint32) uint32 {
	return (value >> bits) | (value << (32 - bits))
}

func lessThan(lhs, rhs uint32, signed bool) uint32 {
	var less bool
	if signed {
		less = int32(lhs) < int32(rhs)
	} else {
		less = lhs < rhs
	}
	if less {
		return 1
	}
	return 0
}

// Shift function codes, embedded in bits [27:26] of ALU-family instructions.
const (
	shiftLeft = iota
	shiftRight
	shiftArithmetic
	shiftRotateRight
)

func shift(lhs, rhs, kind uint32) uint32 {
	switch kind {
	case shiftLeft:
		return lhs << rhs
	case shiftRight:
		return lhs >> rhs
	case shiftArithmetic:
		return uint32(int32(lhs) >> rhs)
	case shiftRotateRight:
		return rotateRight(lhs, rhs)
	}
	return 0
}
