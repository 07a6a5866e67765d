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

// Package disk implements the citron-attached disk controller: up to eight
// attached sector images, a shared 512-byte transfer buffer, and a
// command-register protocol for selecting a drive and moving whole blocks.
package disk

import (
	"errors"
	"io"
	"os"

	"github.com/kvasari/lsmachine/internal/bus"
	"github.com/spf13/afero"
)

const (
	// SectorSize is the fixed block size every attached image is addressed in.
	SectorSize = 512
	// MaxDisks is the number of images the controller can hold at once.
	MaxDisks = 8

	portCommand = 0x19
	portA       = 0x1a
	portB       = 0x1b
)

// IRQVector is the LSIC vector the controller raises on completion when
// interrupts are enabled.
const IRQVector = 0x3

// InterruptRaiser is the subset of the interrupt controller the disk needs:
// raising its completion vector.
type InterruptRaiser interface {
	Raise(vector int) bool
}

type attachedDisk struct {
	file       afero.File
	blockCount uint32
}

// Controller is the disk controller. Reads and writes arrive through the
// citron port protocol at ports 0x19-0x1b, dispatched by the platform board.
type Controller struct {
	int InterruptRaiser

	disks  []*attachedDisk
	buffer [SectorSize]byte

	selected     int
	infoWhat     uint32
	infoDetails  uint32
	operation    uint32
	portA, portB uint32
	interrupts   bool
}

// New returns an empty disk controller with no images attached.
func New(int InterruptRaiser) *Controller {
	c := &Controller{int: int}
	c.Reset()
	return c
}

// Attach opens path on fs and adds it as the next disk index. Returns an
// error if eight disks are already attached or the image can't be opened.
func (c *Controller) Attach(fs afero.Fs, path string) error {
	if len(c.disks) >= MaxDisks {
		return errors.New("disk: reached the maximum amount of disks attached")
	}

	f, err := fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return err
	}

	c.disks = append(c.disks, &attachedDisk{file: f, blockCount: uint32(size) / SectorSize})
	return nil
}

// Buffer exposes the shared 512-byte transfer buffer the platform board's
// MMIO window aliases directly.
func (c *Controller) Buffer() *[SectorSize]byte {
	return &c.buffer
}

// Reset clears the command protocol state but leaves attached images alone.
func (c *Controller) Reset() {
	c.interrupts = false
	c.portA = 0
	c.portB = 0
	c.selected = -1
	c.infoWhat = 0
	c.infoDetails = 0
	c.operation = 0
}

// Read implements the citron read half of the protocol.
func (c *Controller) Read(port uint32, size bus.Size) (uint32, bool) {
	switch port {
	case portCommand:
		return c.operation, true
	case portA:
		return c.portA, true
	case portB:
		return c.portB, true
	}
	return 0, false
}

// Write implements the citron write half of the protocol.
func (c *Controller) Write(port uint32, size bus.Size, value uint32) bool {
	switch port {
	case portCommand:
		return c.command(value)
	case portA:
		c.portA = value
		return true
	case portB:
		c.portB = value
		return true
	}
	return false
}

func (c *Controller) command(value uint32) bool {
	switch value {
	case 1: // select drive
		if int(c.portA) < len(c.disks) {
			c.selected = int(c.portA)
		} else {
			c.selected = -1
		}
		return true
	case 2: // read block
		return c.transfer(false)
	case 3: // write block
		return c.transfer(true)
	case 4: // read info
		c.portA = c.infoWhat
		c.portB = c.infoDetails
		return true
	case 5: // drive block count
		if int(c.portA) < len(c.disks) {
			c.portB = c.disks[c.portA].blockCount
			c.portA = 1
		} else {
			c.portA = 0
			c.portB = 0
		}
		return true
	case 6: // enable interrupts
		c.interrupts = true
		return true
	case 7: // disable interrupts
		c.interrupts = false
		return true
	}
	return false
}

func (c *Controller) transfer(write bool) bool {
	if c.selected < 0 {
		return false
	}

	d := c.disks[c.selected]
	if c.portA >= d.blockCount {
		return false
	}

	offset := int64(c.portA) * SectorSize
	if write {
		if _, err := d.file.WriteAt(c.buffer[:], offset); err != nil {
			return false
		}
	} else {
		n, err := d.file.ReadAt(c.buffer[:], offset)
		if err != nil && !(err == io.EOF && n == SectorSize) {
			return false
		}
	}

	c.writeInfo(0, c.portA)
	return true
}

func (c *Controller) writeInfo(what, details uint32) {
	c.infoWhat = what
	c.infoDetails = details
	if c.interrupts && c.int != nil {
		c.int.Raise(IRQVector)
	}
}
