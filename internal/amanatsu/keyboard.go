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

package amanatsu

// KeyboardMagic identifies the keyboard device to guest probing code.
const KeyboardMagic = 0x8FC48FC4

// NumScancodes is the size of the internal scancode table, codes 1..85.
const NumScancodes = 85

// Keyboard is the Amanatsu keyboard device: a scan queue of outstanding
// press/release events, drained one at a time through Action.
type Keyboard struct {
	baseDevice

	isPressed           [NumScancodes]bool
	outstandingPress    [NumScancodes]bool
	outstandingRelease  [NumScancodes]bool
}

// NewKeyboard returns a reset keyboard device, ready to be installed into a
// hub slot with Hub.SetDevice.
func NewKeyboard() *Keyboard {
	k := &Keyboard{}
	k.magic = KeyboardMagic
	k.Reset()
	return k
}

// Reset clears every key's state and the scan queue.
func (k *Keyboard) Reset() {
	k.portA = 0xFFFF
	for i := range k.isPressed {
		k.isPressed[i] = false
		k.outstandingPress[i] = false
		k.outstandingRelease[i] = false
	}
}

// PushKeyDown marks code as pressed and enqueues it for the next scan-queue
// drain. code must be in [1,NumScancodes]; out-of-range codes are ignored.
func (k *Keyboard) PushKeyDown(code int) {
	if code < 1 || code > NumScancodes {
		return
	}
	i := code - 1
	k.isPressed[i] = true
	k.outstandingPress[i] = true
}

// PushKeyUp marks code as released and enqueues it for the next scan-queue
// drain.
func (k *Keyboard) PushKeyUp(code int) {
	if code < 1 || code > NumScancodes {
		return
	}
	i := code - 1
	k.isPressed[i] = false
	k.outstandingRelease[i] = true
}

// Action implements the keyboard's three commands: 1 drains the scan queue
// into port A (0x8000 bit set for a release), 2 resets the device, and 3
// reports whether the scancode currently latched in port A is pressed.
func (k *Keyboard) Action(value uint32) bool {
	switch value {
	case 1:
		for i := 0; i <= NumScancodes; i++ {
			if i < NumScancodes && k.outstandingRelease[i] {
				k.portA = uint32(i+1) | 0x8000
				k.outstandingRelease[i] = false
				k.outstandingPress[i] = false
				return true
			}
			if i < NumScancodes && k.outstandingPress[i] {
				k.portA = uint32(i + 1)
				k.outstandingPress[i] = false
				return true
			}
		}
		k.portA = 0xFFFF
	case 2:
		k.Reset()
	case 3:
		if k.portA <= NumScancodes {
			k.portA = boolToWord(k.portA >= 1 && k.isPressed[k.portA-1])
		}
	default:
		return false
	}
	return true
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
