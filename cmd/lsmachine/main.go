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

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gdamore/tcell"
	"github.com/spf13/afero"

	"github.com/kvasari/lsmachine/emulator"
	"github.com/kvasari/lsmachine/version"
)

type diskFlags []string

func (d *diskFlags) String() string { return fmt.Sprint([]string(*d)) }
func (d *diskFlags) Set(v string) error {
	*d = append(*d, v)
	return nil
}

var (
	romPath        string
	disks          diskFlags
	ramSize        int
	fbWidth        int
	fbHeight       int
	stepsPerTick   int
	tickMS         int
	ppmEvery       int
	ppmPath        string
	headless       bool
	maxIterations  int
	ver            bool
)

func init() {
	flag.StringVar(&romPath, "rom", "", "Path to the boot ROM image")
	flag.Var(&disks, "disk", "Path to a disk image (repeatable, up to 8)")
	flag.IntVar(&ramSize, "ram", 16*1024*1024, "RAM size in bytes")
	flag.IntVar(&fbWidth, "fb-width", 640, "Framebuffer width")
	flag.IntVar(&fbHeight, "fb-height", 480, "Framebuffer height")
	flag.IntVar(&stepsPerTick, "steps", 10000, "CPU steps executed per loop iteration")
	flag.IntVar(&tickMS, "tick-ms", 16, "Milliseconds of RTC time advanced per loop iteration")
	flag.IntVar(&ppmEvery, "ppm-every", 0, "Dump the framebuffer to -ppm-path every N iterations (0 disables)")
	flag.StringVar(&ppmPath, "ppm-path", "framebuffer.ppm", "Output path for periodic framebuffer dumps")
	flag.BoolVar(&headless, "headless", false, "Run without a terminal keyboard source, for scripted smoke tests")
	flag.IntVar(&maxIterations, "max-iters", 0, "Stop after N loop iterations (0 runs until interrupted), for scripted smoke tests")
	flag.BoolVar(&ver, "v", false, "Print version information")
}

func main() {
	flag.Parse()

	if ver {
		fmt.Printf("%s (%s)\n", version.Current.FullString(), version.Hash)
		return
	}

	if romPath == "" {
		log.Fatal("lsmachine: -rom is required")
	}

	rom, err := os.Open(romPath)
	if err != nil {
		log.Fatalf("lsmachine: %v", err)
	}
	defer rom.Close()

	cfg := emulator.Config{
		RAMSize:       uint32(ramSize),
		BootROM:       rom,
		Fs:            afero.NewOsFs(),
		DiskImages:    disks,
		FBWidth:       fbWidth,
		FBHeight:      fbHeight,
		SerialWriters: []io.Writer{os.Stdout},
	}

	machine, err := emulator.New(cfg)
	if err != nil {
		log.Fatalf("lsmachine: %v", err)
	}
	machine.Reset()

	var screen tcell.Screen
	if !headless {
		screen, err = tcell.NewScreen()
		if err != nil {
			log.Fatalf("lsmachine: %v", err)
		}
		if err := screen.Init(); err != nil {
			log.Fatalf("lsmachine: %v", err)
		}
		defer screen.Fini()
	}

	events := make(chan tcell.Event, 16)
	if screen != nil {
		go func() {
			for {
				events <- screen.PollEvent()
			}
		}()
	}

	quit := false
	for iteration := 0; !quit; iteration++ {
		machine.Step(stepsPerTick, uint32(tickMS))

	drain:
		for {
			select {
			case ev := <-events:
				switch e := ev.(type) {
				case *tcell.EventKey:
					if e.Key() == tcell.KeyCtrlC {
						quit = true
						break drain
					}
					machine.HandleKeyEvent(e)
				case *tcell.EventResize:
				}
			default:
				break drain
			}
		}

		if ppmEvery > 0 && iteration%ppmEvery == 0 {
			if err := dumpPPM(machine.FB, ppmPath); err != nil {
				log.Printf("lsmachine: framebuffer dump: %v", err)
			}
		}

		if maxIterations > 0 && iteration+1 >= maxIterations {
			quit = true
		}
	}
}
