/*
   Initial hart construction from a raw or file-backed program image.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Package loader builds the initial hart state from a program image,
// either supplied directly or read from disk.
package loader

import (
	"fmt"
	"os"

	"github.com/rcornwell/rv64sim/emu/cpu"
	"github.com/rcornwell/rv64sim/emu/memory"
)

// Load allocates a memSize-byte physical memory, copies image into its
// start, and returns a hart with pc=entry, x[2]=sp, mode=Machine, all other
// state zero. It fails if memSize is zero or image overflows it, rather
// than silently truncating.
func Load(image []byte, memSize, entry, sp uint64) (*cpu.State, error) {
	if memSize == 0 {
		return nil, fmt.Errorf("loader: memory size must be nonzero")
	}
	if uint64(len(image)) > memSize {
		return nil, fmt.Errorf("loader: image of %d bytes exceeds memory size %d", len(image), memSize)
	}
	mem := memory.New(memSize)
	mem.LoadImage(image)
	return cpu.NewState(mem, entry, sp), nil
}

// LoadFile reads path and delegates to Load.
func LoadFile(path string, memSize, entry, sp uint64) (*cpu.State, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	return Load(image, memSize, entry, sp)
}
