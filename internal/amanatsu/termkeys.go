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

import "github.com/gdamore/tcell"

// scancodeFromTCELL maps a host tcell key event to the fixed internal
// scancode table: letters to 0x01-0x1A, digits to 0x1B-0x24, punctuation
// and whitespace to their own codes, arrows and modifiers to 0x37-0x56, and
// keypad keys aliased to their main-row equivalents. Keys with no entry in
// the table return 0, meaning "ignored".
func scancodeFromTCELL(ev *tcell.EventKey) int {
	switch ev.Key() {
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r >= 'a' && r <= 'z':
			return int(r-'a') + 0x01
		case r >= 'A' && r <= 'Z':
			return int(r-'A') + 0x01
		case r >= '0' && r <= '9':
			return digitScancode(r)
		}
		return runeScancode(r)
	case tcell.KeyEnter:
		return 0x33
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return 0x34
	case tcell.KeyTab:
		return 0x27
	case tcell.KeyEscape:
		return 0x36
	case tcell.KeyLeft:
		return 0x37
	case tcell.KeyRight:
		return 0x38
	case tcell.KeyDown:
		return 0x39
	case tcell.KeyUp:
		return 0x3A
	}

	switch ev.Modifiers() {
	case tcell.ModCtrl:
		return 0x51
	case tcell.ModShift:
		return 0x53
	case tcell.ModAlt:
		return 0x55
	}

	return 0
}

// digitScancode maps '0'-'9' to 0x1B..0x24 in ascending order ('0' is the
// lowest code, '9' the highest).
func digitScancode(r rune) int {
	switch r {
	case '1':
		return 0x1C
	case '2':
		return 0x1D
	case '3':
		return 0x1E
	case '4':
		return 0x1F
	case '5':
		return 0x20
	case '6':
		return 0x21
	case '7':
		return 0x22
	case '8':
		return 0x23
	case '9':
		return 0x24
	case '0':
		return 0x1B
	}
	return 0
}

func runeScancode(r rune) int {
	switch r {
	case ';':
		return 0x25
	case ' ':
		return 0x26
	case '-':
		return 0x28
	case '=':
		return 0x29
	case '[':
		return 0x2A
	case ']':
		return 0x2B
	case '\\':
		return 0x2C
	case '/':
		return 0x2E
	case '.':
		return 0x2F
	case '\'':
		return 0x30
	case ',':
		return 0x31
	case '`':
		return 0x32
	}
	return 0
}

// TermKeySource pumps tcell keyboard events into a Keyboard device,
// translating host key-down events into the fixed internal scancode table
// and synthesizing the matching key-up shortly after (tcell, run over a
// terminal, does not report key-up events directly).
type TermKeySource struct {
	keyboard *Keyboard
}

// NewTermKeySource returns a source that feeds kb.
func NewTermKeySource(kb *Keyboard) *TermKeySource {
	return &TermKeySource{keyboard: kb}
}

// HandleKeyEvent translates and enqueues one tcell key event. Keys with no
// entry in the internal scancode table are silently ignored.
func (s *TermKeySource) HandleKeyEvent(ev *tcell.EventKey) {
	code := scancodeFromTCELL(ev)
	if code == 0 {
		return
	}
	s.keyboard.PushKeyDown(code)
	s.keyboard.PushKeyUp(code)
}
