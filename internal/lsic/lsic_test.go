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

package lsic

import (
	"testing"

	"github.com/kvasari/lsmachine/internal/bus"
)

func complete(c *Controller, vector uint32) {
	c.WriteByte(4*4, bus.Long, vector)
}

func claim(c *Controller) uint32 {
	v, _ := c.ReadByte(4*4, bus.Long)
	return v
}

func TestRaiseClaimCompleteRoundTrip(t *testing.T) {
	c := New()
	if !c.Raise(5) {
		t.Fatal("raise failed")
	}
	if !c.Pending() {
		t.Fatal("expected pending after raise")
	}
	if v := claim(c); v != 5 {
		t.Fatalf("claim: got %d, want 5", v)
	}
	complete(c, 5)
	if c.Pending() {
		t.Fatal("expected not pending after complete")
	}
	if v := claim(c); v != 0 {
		t.Fatalf("claim after complete: got %d, want 0", v)
	}
}

func TestMaskedVectorDoesNotClaim(t *testing.T) {
	c := New()
	c.WriteByte(0, bus.Long, 1<<7) // mask vector 7
	c.Raise(7)
	if c.Pending() {
		t.Fatal("masked vector should not assert pending")
	}
	if v := claim(c); v != 0 {
		t.Fatalf("claim should skip masked vector, got %d", v)
	}
}

func TestClaimPicksLowestPendingVector(t *testing.T) {
	c := New()
	c.Raise(9)
	c.Raise(3)
	if v := claim(c); v != 3 {
		t.Fatalf("got %d, want 3", v)
	}
}

func TestRaiseRejectsOutOfRangeVector(t *testing.T) {
	c := New()
	if c.Raise(0) || c.Raise(64) {
		t.Fatal("expected vectors 0 and 64 to be rejected")
	}
}

func TestResetClearsPending(t *testing.T) {
	c := New()
	c.Raise(1)
	c.Reset()
	if c.Pending() {
		t.Fatal("expected reset to clear pending")
	}
}
