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
	"bufio"
	"fmt"
	"os"

	"github.com/kvasari/lsmachine/internal/kinnowfb"
)

// dumpPPM flushes fb's full surface and writes it as a binary PPM to path.
// This stands in for a real host renderer, which the core deliberately does
// not own; it exists only so the framebuffer's flush path has somewhere to
// go during headless smoke testing.
func dumpPPM(fb *kinnowfb.FrameBuffer, path string) error {
	fb.Reset() // force the whole surface dirty so Flush covers every pixel
	texture := make([]uint32, fb.Width()*fb.Height())
	fb.Flush(texture)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P6\n%d %d\n255\n", fb.Width(), fb.Height())
	for _, px := range texture {
		w.Write([]byte{byte(px >> 16), byte(px >> 8), byte(px)})
	}
	return w.Flush()
}
