/*
   Base integer ISA (RV64I) instruction semantics.

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

func opLoadHandler(s *State, d *decoded) (uint16, bool) {
	addr := s.getX(d.rs1) + d.immI
	var raw uint64
	var ok bool
	width := uint64(0)
	switch d.funct3 {
	case 0, 4:
		raw, ok = s.Mem.Load8(addr)
		width = 1
	case 1, 5:
		raw, ok = s.Mem.Load16(addr)
		width = 2
	case 2, 6:
		raw, ok = s.Mem.Load32(addr)
		width = 4
	case 3:
		raw, ok = s.Mem.Load64(addr)
		width = 8
	default:
		return causeIllegalInstruction, true
	}
	if !ok {
		return causeLoadAccessFault, true
	}
	switch d.funct3 {
	case 0: // LB
		s.setX(d.rd, signExtend(raw, 8))
	case 1: // LH
		s.setX(d.rd, signExtend(raw, 16))
	case 2: // LW
		s.setX(d.rd, signExtend(raw, 32))
	case 3: // LD
		s.setX(d.rd, raw)
	case 4, 5, 6: // LBU, LHU, LWU
		s.setX(d.rd, raw)
	}
	_ = width
	s.PC += 4
	return 0, false
}

func opStoreHandler(s *State, d *decoded) (uint16, bool) {
	addr := s.getX(d.rs1) + d.immS
	v := s.getX(d.rs2)
	var ok bool
	switch d.funct3 {
	case 0:
		ok = s.Mem.Store8(addr, v)
	case 1:
		ok = s.Mem.Store16(addr, v)
	case 2:
		ok = s.Mem.Store32(addr, v)
	case 3:
		ok = s.Mem.Store64(addr, v)
	default:
		return causeIllegalInstruction, true
	}
	if !ok {
		return causeStoreAccessFault, true
	}
	s.res.valid = false
	s.PC += 4
	return 0, false
}

func opOpImmHandler(s *State, d *decoded) (uint16, bool) {
	a := s.getX(d.rs1)
	var r uint64
	switch d.funct3 {
	case 0: // ADDI
		r = a + d.immI
	case 1: // SLLI
		if d.word>>26 != 0 {
			return causeIllegalInstruction, true
		}
		r = a << (d.shamt & 0x3f)
	case 2: // SLTI
		r = boolToWord(int64(a) < int64(d.immI))
	case 3: // SLTIU
		r = boolToWord(a < d.immI)
	case 4: // XORI
		r = a ^ d.immI
	case 5: // SRLI / SRAI
		switch d.word >> 26 {
		case 0x00:
			r = a >> (d.shamt & 0x3f)
		case 0x10:
			r = uint64(int64(a) >> (d.shamt & 0x3f))
		default:
			return causeIllegalInstruction, true
		}
	case 6: // ORI
		r = a | d.immI
	case 7: // ANDI
		r = a & d.immI
	}
	s.setX(d.rd, r)
	s.PC += 4
	return 0, false
}

func opOpImm32Handler(s *State, d *decoded) (uint16, bool) {
	a := uint32(s.getX(d.rs1))
	shamt := uint32((d.word >> 20) & 0x1f)
	var r uint32
	switch d.funct3 {
	case 0: // ADDIW
		r = a + uint32(d.immI)
	case 1: // SLLIW
		if d.word>>25 != 0 {
			return causeIllegalInstruction, true
		}
		r = a << shamt
	case 5: // SRLIW / SRAIW
		switch d.word >> 25 {
		case 0x00:
			r = a >> shamt
		case 0x20:
			r = uint32(int32(a) >> shamt)
		default:
			return causeIllegalInstruction, true
		}
	default:
		return causeIllegalInstruction, true
	}
	s.setX(d.rd, signExtend(uint64(r), 32))
	s.PC += 4
	return 0, false
}

func opAuipcHandler(s *State, d *decoded) (uint16, bool) {
	s.setX(d.rd, s.PC+d.immU)
	s.PC += 4
	return 0, false
}

func opLuiHandler(s *State, d *decoded) (uint16, bool) {
	s.setX(d.rd, d.immU)
	s.PC += 4
	return 0, false
}

func opOpHandler(s *State, d *decoded) (uint16, bool) {
	if d.funct7 == 0x01 {
		return mulDiv64(s, d)
	}
	a, b := s.getX(d.rs1), s.getX(d.rs2)
	var r uint64
	switch d.funct3 {
	case 0: // ADD / SUB
		switch d.funct7 {
		case 0x00:
			r = a + b
		case 0x20:
			r = a - b
		default:
			return causeIllegalInstruction, true
		}
	case 1: // SLL
		r = a << (b & 0x3f)
	case 2: // SLT
		r = boolToWord(int64(a) < int64(b))
	case 3: // SLTU
		r = boolToWord(a < b)
	case 4: // XOR
		r = a ^ b
	case 5: // SRL / SRA
		switch d.funct7 {
		case 0x00:
			r = a >> (b & 0x3f)
		case 0x20:
			r = uint64(int64(a) >> (b & 0x3f))
		default:
			return causeIllegalInstruction, true
		}
	case 6: // OR
		r = a | b
	case 7: // AND
		r = a & b
	}
	s.setX(d.rd, r)
	s.PC += 4
	return 0, false
}

func opOp32Handler(s *State, d *decoded) (uint16, bool) {
	if d.funct7 == 0x01 {
		return mulDiv32(s, d)
	}
	a, b := uint32(s.getX(d.rs1)), uint32(s.getX(d.rs2))
	var r uint32
	switch d.funct3 {
	case 0: // ADDW / SUBW
		switch d.funct7 {
		case 0x00:
			r = a + b
		case 0x20:
			r = a - b
		default:
			return causeIllegalInstruction, true
		}
	case 1: // SLLW
		r = a << (b & 0x1f)
	case 5: // SRLW / SRAW
		switch d.funct7 {
		case 0x00:
			r = a >> (b & 0x1f)
		case 0x20:
			r = uint32(int32(a) >> (b & 0x1f))
		default:
			return causeIllegalInstruction, true
		}
	default:
		return causeIllegalInstruction, true
	}
	s.setX(d.rd, signExtend(uint64(r), 32))
	s.PC += 4
	return 0, false
}

func opBranchHandler(s *State, d *decoded) (uint16, bool) {
	a, b := s.getX(d.rs1), s.getX(d.rs2)
	var taken bool
	switch d.funct3 {
	case 0: // BEQ
		taken = a == b
	case 1: // BNE
		taken = a != b
	case 4: // BLT
		taken = int64(a) < int64(b)
	case 5: // BGE
		taken = int64(a) >= int64(b)
	case 6: // BLTU
		taken = a < b
	case 7: // BGEU
		taken = a >= b
	default:
		return causeIllegalInstruction, true
	}
	if !taken {
		s.PC += 4
		return 0, false
	}
	target := s.PC + d.immB
	if target&0x3 != 0 {
		return causeInstrAddrMisaligned, true
	}
	s.PC = target
	return 0, false
}

func opJalHandler(s *State, d *decoded) (uint16, bool) {
	target := s.PC + d.immJ
	if target&0x3 != 0 {
		return causeInstrAddrMisaligned, true
	}
	s.setX(d.rd, s.PC+4)
	s.PC = target
	return 0, false
}

func opJalrHandler(s *State, d *decoded) (uint16, bool) {
	target := (s.getX(d.rs1) + d.immI) &^ 1
	if target&0x3 != 0 {
		return causeInstrAddrMisaligned, true
	}
	link := s.PC + 4
	s.setX(d.rd, link)
	s.PC = target
	return 0, false
}

// opMiscMemHandler covers FENCE and FENCE.I. The engine is single-hart with
// no instruction cache to invalidate, so both are no-ops beyond advancing PC.
func opMiscMemHandler(s *State, d *decoded) (uint16, bool) {
	s.PC += 4
	return 0, false
}

func boolToWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
