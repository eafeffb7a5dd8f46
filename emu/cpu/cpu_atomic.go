/*
   A-extension: atomic memory operations.

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

// AMO funct5 encodings (word[31:27]). Every AMO shares the same shape:
// load old, compute new, store, return old in rd.
const (
	amoAdd    uint8 = 0x00
	amoSwap   uint8 = 0x01
	amoLR     uint8 = 0x02
	amoSC     uint8 = 0x03
	amoXor    uint8 = 0x04
	amoOr     uint8 = 0x08
	amoAnd    uint8 = 0x0c
	amoMin    uint8 = 0x10
	amoMax    uint8 = 0x14
	amoMinU   uint8 = 0x18
	amoMaxU   uint8 = 0x1c
)

func opAmoHandler(s *State, d *decoded) (uint16, bool) {
	funct5 := d.funct7 >> 2
	addr := s.getX(d.rs1)

	switch d.funct3 {
	case 2:
		return amoWord(s, d, funct5, addr)
	case 3:
		return amoDouble(s, d, funct5, addr)
	default:
		return causeIllegalInstruction, true
	}
}

func amoWord(s *State, d *decoded, funct5 uint8, addr uint64) (uint16, bool) {
	if funct5 == amoLR {
		raw, ok := s.Mem.Load32(addr)
		if !ok {
			return causeLoadAccessFault, true
		}
		s.res = reservation{valid: true, lo: addr, hi: addr + 4}
		s.setX(d.rd, signExtend(raw, 32))
		s.PC += 4
		return 0, false
	}
	if funct5 == amoSC {
		ok := s.res.valid && s.res.lo == addr && s.res.hi == addr+4
		s.res.valid = false
		if ok {
			if !s.Mem.Store32(addr, s.getX(d.rs2)&0xffffffff) {
				return causeStoreAccessFault, true
			}
			s.setX(d.rd, 0)
		} else {
			s.setX(d.rd, 1)
		}
		s.PC += 4
		return 0, false
	}

	old, ok := s.Mem.Load32(addr)
	if !ok {
		return causeLoadAccessFault, true
	}
	rs2 := uint32(s.getX(d.rs2))
	nv := amoCompute32(funct5, uint32(old), rs2)
	if !s.Mem.Store32(addr, uint64(nv)) {
		return causeStoreAccessFault, true
	}
	s.res.valid = false
	s.setX(d.rd, signExtend(old, 32))
	s.PC += 4
	return 0, false
}

func amoDouble(s *State, d *decoded, funct5 uint8, addr uint64) (uint16, bool) {
	if funct5 == amoLR {
		raw, ok := s.Mem.Load64(addr)
		if !ok {
			return causeLoadAccessFault, true
		}
		s.res = reservation{valid: true, lo: addr, hi: addr + 8}
		s.setX(d.rd, raw)
		s.PC += 4
		return 0, false
	}
	if funct5 == amoSC {
		ok := s.res.valid && s.res.lo == addr && s.res.hi == addr+8
		s.res.valid = false
		if ok {
			if !s.Mem.Store64(addr, s.getX(d.rs2)) {
				return causeStoreAccessFault, true
			}
			s.setX(d.rd, 0)
		} else {
			s.setX(d.rd, 1)
		}
		s.PC += 4
		return 0, false
	}

	old, ok := s.Mem.Load64(addr)
	if !ok {
		return causeLoadAccessFault, true
	}
	rs2 := s.getX(d.rs2)
	nv := amoCompute64(funct5, old, rs2)
	if !s.Mem.Store64(addr, nv) {
		return causeStoreAccessFault, true
	}
	s.res.valid = false
	s.setX(d.rd, old)
	s.PC += 4
	return 0, false
}

func amoCompute32(funct5 uint8, old, rs2 uint32) uint32 {
	switch funct5 {
	case amoAdd:
		return old + rs2
	case amoSwap:
		return rs2
	case amoXor:
		return old ^ rs2
	case amoOr:
		return old | rs2
	case amoAnd:
		return old & rs2
	case amoMin:
		if int32(old) < int32(rs2) {
			return old
		}
		return rs2
	case amoMax:
		if int32(old) > int32(rs2) {
			return old
		}
		return rs2
	case amoMinU:
		if old < rs2 {
			return old
		}
		return rs2
	case amoMaxU:
		if old > rs2 {
			return old
		}
		return rs2
	default:
		return old
	}
}

func amoCompute64(funct5 uint8, old, rs2 uint64) uint64 {
	switch funct5 {
	case amoAdd:
		return old + rs2
	case amoSwap:
		return rs2
	case amoXor:
		return old ^ rs2
	case amoOr:
		return old | rs2
	case amoAnd:
		return old & rs2
	case amoMin:
		if int64(old) < int64(rs2) {
			return old
		}
		return rs2
	case amoMax:
		if int64(old) > int64(rs2) {
			return old
		}
		return rs2
	case amoMinU:
		if old < rs2 {
			return old
		}
		return rs2
	case amoMaxU:
		if old > rs2 {
			return old
		}
		return rs2
	default:
		return old
	}
}
