/*
   Core rv64sim execution loop.

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

// Package core drives a hart's fetch/decode/execute loop to completion.
// rv64sim has a single hart and a single caller, so Engine.Run is a plain
// sequential loop rather than a goroutine reacting to a control channel.
package core

import (
	"log/slog"

	"github.com/rcornwell/rv64sim/emu/cpu"
)

// Engine owns one hart exclusively for the duration of a run.
type Engine struct {
	State *cpu.State

	// MaxSteps bounds a run with no termination address, guarding against
	// a program that never reaches one (0 means unbounded).
	MaxSteps uint64

	Traps uint64
}

// New wraps an already-constructed hart (typically from loader.Load).
func New(s *cpu.State) *Engine {
	return &Engine{State: s}
}

// Run executes instructions until the PC reaches end, or until MaxSteps is
// exhausted if nonzero. It returns the number of instructions executed.
// Traps are delivered (mtvec redirect, mode switch) and logged, not
// treated as fatal -- a program that installs a trap handler is expected
// to keep running through them.
func (e *Engine) Run(end uint64) uint64 {
	var n uint64
	for e.State.PC != end {
		cause, trapped := cpu.Step(e.State)
		n++
		if trapped {
			e.Traps++
			slog.Debug("trap delivered", "cause", cause, "pc", e.State.PC)
		}
		if e.MaxSteps != 0 && n >= e.MaxSteps {
			slog.Warn("engine stopped: step limit reached", "steps", n)
			break
		}
	}
	return n
}
