/*
   CPU definitions for the RV64GC core (IMAFD subset) simulator.

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

// Package cpu implements the fetch/decode/execute engine: architectural
// state, the instruction semantics for the base integer ISA plus the M, A,
// and F/D extensions, the CSR file, and the privilege/exception machinery.
package cpu

import "github.com/rcornwell/rv64sim/emu/memory"

// Mode is the privilege level of the hart.
type Mode uint8

const (
	ModeUser       Mode = 0
	ModeSupervisor Mode = 1
	ModeMachine    Mode = 3
)

// Major opcodes (word[6:0]).
const (
	opLoad     uint8 = 0x03
	opLoadFP   uint8 = 0x07
	opMiscMem  uint8 = 0x0f
	opOpImm    uint8 = 0x13
	opAuipc    uint8 = 0x17
	opOpImm32  uint8 = 0x1b
	opStore    uint8 = 0x23
	opStoreFP  uint8 = 0x27
	opAmo      uint8 = 0x2f
	opOp       uint8 = 0x33
	opLui      uint8 = 0x37
	opOp32     uint8 = 0x3b
	opFmadd    uint8 = 0x43
	opFmsub    uint8 = 0x47
	opFnmsub   uint8 = 0x4b
	opFnmadd   uint8 = 0x4f
	opOpFP     uint8 = 0x53
	opBranch   uint8 = 0x63
	opJalr     uint8 = 0x67
	opJal      uint8 = 0x6f
	opSystem   uint8 = 0x73
)

// reservation is the atomic load-reserved/store-conditional byte range.
type reservation struct {
	valid bool
	lo    uint64
	hi    uint64
}

// State is the complete architectural state of the hart.
type State struct {
	X   [32]uint64 // integer registers; X[0] is hardwired to zero
	F   [32]uint64 // floating-point register cells, NaN-boxed when holding single precision
	PC  uint64
	CSR [4096]uint64
	Mode Mode

	res reservation

	Mem *memory.Memory
}

// NewState builds a hart bound to mem, with pc, sp and mode set per the
// construction contract: pc=entry, x[2]=sp, mode=Machine, all
// other cells zero.
func NewState(mem *memory.Memory, entry, sp uint64) *State {
	s := &State{Mem: mem, PC: entry, Mode: ModeMachine}
	s.X[2] = sp
	return s
}

// getX reads integer register i; x0 always reads zero.
func (s *State) getX(i uint8) uint64 {
	return s.X[i&0x1f]
}

// setX writes integer register i; writes to x0 are silently dropped.
func (s *State) setX(i uint8, v uint64) {
	if i != 0 {
		s.X[i&0x1f] = v
	}
}

const nanBoxHigh = 0xffffffff00000000

// getF32 reads a single-precision operand, NaN-unboxing an improperly
// boxed cell into the canonical quiet NaN.
func (s *State) getF32(i uint8) uint32 {
	v := s.F[i&0x1f]
	if v&nanBoxHigh != nanBoxHigh {
		return canonicalQNaN32
	}
	return uint32(v)
}

// setF32 writes a single-precision result, NaN-boxing it into the upper
// half of the 64-bit register cell.
func (s *State) setF32(i uint8, v uint32) {
	s.F[i&0x1f] = nanBoxHigh | uint64(v)
}

func (s *State) getF64(i uint8) uint64 {
	return s.F[i&0x1f]
}

func (s *State) setF64(i uint8, v uint64) {
	s.F[i&0x1f] = v
}

// Exception causes used by this core.
const (
	causeInstrAddrMisaligned uint16 = 0
	causeInstrAccessFault    uint16 = 1
	causeIllegalInstruction  uint16 = 2
	causeBreakpoint          uint16 = 3
	causeLoadAddrMisaligned  uint16 = 4
	causeLoadAccessFault     uint16 = 5
	causeStoreAddrMisaligned uint16 = 6
	causeStoreAccessFault    uint16 = 7
	causeEcallFromU          uint16 = 8
	causeEcallFromS          uint16 = 9
	causeEcallFromM          uint16 = 11
)

// CSR addresses named and masked by this core.
const (
	csrFflags  uint16 = 0x001
	csrFrm     uint16 = 0x002
	csrFcsr    uint16 = 0x003
	csrMstatus uint16 = 0x300
	csrMedeleg uint16 = 0x302
	csrMideleg uint16 = 0x303
	csrMtvec   uint16 = 0x305
	csrMepc    uint16 = 0x341
	csrMcause  uint16 = 0x342
	csrMhartid uint16 = 0xf14
)

const (
	mstatusWriteMask uint64 = 0x8000_003F_007F_FFEA
	medelegWriteMask uint64 = 0xFFFF_0000_FF00_BBFF
	fcsrWriteMask    uint64 = 0xFF

	mstatusMIE  uint64 = 1 << 3
	mstatusMPIE uint64 = 1 << 7
	mstatusMPPShift      = 11
	mstatusMPPMask uint64 = 0x3 << mstatusMPPShift
)
