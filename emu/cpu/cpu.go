/*
   Fetch/decode/execute dispatch.

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

package cpu

// handlerFunc executes one decoded instruction against s. It returns
// (cause, true) when the instruction traps and leaves s unmodified except
// for whatever partial work happened before the trapping condition was
// found; on success it returns (0, false) having already advanced s.PC
// (straight-line code to PC+4, taken branches/jumps to their target). A
// real cause value of 0 (instruction address misaligned) would otherwise
// be indistinguishable from a bare sentinel meaning "no trap", hence the
// explicit second return value.
type handlerFunc func(s *State, d *decoded) (cause uint16, trapped bool)

// table is the opcode-indexed dispatch array. Each entry covers every
// instruction sharing that major opcode; funct3/funct7 are switched on
// inside the handler rather than flattened into a combinatorial 4096-entry
// table, which would be unmaintainable for little benefit given how
// unevenly the encoding space is used.
var table [128]handlerFunc

func init() {
	table[opLoad] = opLoadHandler
	table[opLoadFP] = opLoadFPHandler
	table[opMiscMem] = opMiscMemHandler
	table[opOpImm] = opOpImmHandler
	table[opAuipc] = opAuipcHandler
	table[opOpImm32] = opOpImm32Handler
	table[opStore] = opStoreHandler
	table[opStoreFP] = opStoreFPHandler
	table[opAmo] = opAmoHandler
	table[opOp] = opOpHandler
	table[opLui] = opLuiHandler
	table[opOp32] = opOp32Handler
	table[opFmadd] = opFmaddHandler
	table[opFmsub] = opFmsubHandler
	table[opFnmsub] = opFnmsubHandler
	table[opFnmadd] = opFnmaddHandler
	table[opOpFP] = opOpFPHandler
	table[opBranch] = opBranchHandler
	table[opJalr] = opJalrHandler
	table[opJal] = opJalHandler
	table[opSystem] = opSystemHandler
}

// Step fetches, decodes and executes one instruction, delivering a trap if
// one occurs. It returns the same (cause, trapped) pair the handler
// produced (or a fetch-fault cause if the fetch itself failed) so callers
// such as the engine loop can log or count traps without re-deriving them.
func Step(s *State) (uint16, bool) {
	word, ok := s.Mem.Load32(s.PC)
	if !ok {
		raiseTrap(s, causeInstrAccessFault)
		return causeInstrAccessFault, true
	}
	if s.PC&0x3 != 0 {
		raiseTrap(s, causeInstrAddrMisaligned)
		return causeInstrAddrMisaligned, true
	}

	d := decode(uint32(word))
	h := table[d.opcode&0x7f]
	if h == nil {
		raiseTrap(s, causeIllegalInstruction)
		return causeIllegalInstruction, true
	}

	cause, trapped := h(s, &d)
	if trapped {
		raiseTrap(s, cause)
		return cause, true
	}
	return 0, false
}
