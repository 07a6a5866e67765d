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

// MouseMagic identifies the mouse device to guest probing code.
const MouseMagic = 0x4D4F5553 // "MOUS"

// Mouse is the Amanatsu mouse device. The reference firmware only probes
// its magic; Action always reports no movement pending.
type Mouse struct {
	baseDevice
}

// NewMouse returns a reset mouse device, ready to be installed into a hub
// slot with Hub.SetDevice.
func NewMouse() *Mouse {
	m := &Mouse{}
	m.magic = MouseMagic
	return m
}

func (m *Mouse) Reset() {}

func (m *Mouse) Action(value uint32) bool {
	m.portA = 0
	return true
}
