/*
   F/D-extension instruction semantics.

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

import "math"

// setFFlags ORs newly-raised exception bits into fflags, and into the
// fflags view embedded in fcsr[4:0] so the two stay consistent regardless
// of which address a later CSR instruction reads.
func setFFlags(s *State, flags uint8) {
	if flags == 0 {
		return
	}
	s.CSR[csrFflags] |= uint64(flags) & 0x1f
	s.CSR[csrFcsr] = (s.CSR[csrFcsr] &^ 0x1f) | (s.CSR[csrFflags] & 0x1f)
}

func opLoadFPHandler(s *State, d *decoded) (uint16, bool) {
	addr := s.getX(d.rs1) + d.immI
	switch d.funct3 {
	case 2: // FLW
		raw, ok := s.Mem.Load32(addr)
		if !ok {
			return causeLoadAccessFault, true
		}
		s.setF32(d.rd, uint32(raw))
	case 3: // FLD
		raw, ok := s.Mem.Load64(addr)
		if !ok {
			return causeLoadAccessFault, true
		}
		s.setF64(d.rd, raw)
	default:
		return causeIllegalInstruction, true
	}
	s.PC += 4
	return 0, false
}

func opStoreFPHandler(s *State, d *decoded) (uint16, bool) {
	addr := s.getX(d.rs1) + d.immS
	switch d.funct3 {
	case 2: // FSW
		if !s.Mem.Store32(addr, uint64(s.getF32(d.rs2))) {
			return causeStoreAccessFault, true
		}
	case 3: // FSD
		if !s.Mem.Store64(addr, s.getF64(d.rs2)) {
			return causeStoreAccessFault, true
		}
	default:
		return causeIllegalInstruction, true
	}
	s.res.valid = false
	s.PC += 4
	return 0, false
}

func fmaFmt(d *decoded) uint8 { return uint8((d.word >> 25) & 0x3) }

func opFmaddHandler(s *State, d *decoded) (uint16, bool) {
	return execFma(s, d, false, false)
}

func opFmsubHandler(s *State, d *decoded) (uint16, bool) {
	return execFma(s, d, false, true)
}

func opFnmsubHandler(s *State, d *decoded) (uint16, bool) {
	return execFma(s, d, true, false)
}

func opFnmaddHandler(s *State, d *decoded) (uint16, bool) {
	return execFma(s, d, true, true)
}

// execFma implements the four R4-type fused multiply-add variants:
// negA negates rs1's contribution, negC negates rs3's.
func execFma(s *State, d *decoded, negA, negC bool) (uint16, bool) {
	rm := effRound(s, d.funct3)
	if _, ok := roundingMode(rm); !ok {
		return causeIllegalInstruction, true
	}
	switch fmaFmt(d) {
	case 0:
		a, b, c := s.getF32(d.rs1), s.getF32(d.rs2), s.getF32(d.rs3)
		if negA {
			a = negate32(a)
		}
		if negC {
			c = negate32(c)
		}
		r, flags := fma32(a, b, c, rm)
		setFFlags(s, flags)
		s.setF32(d.rd, r)
	case 1:
		a, b, c := s.getF64(d.rs1), s.getF64(d.rs2), s.getF64(d.rs3)
		if negA {
			a = negate64(a)
		}
		if negC {
			c = negate64(c)
		}
		r, flags := fma64(a, b, c, rm)
		setFFlags(s, flags)
		s.setF64(d.rd, r)
	default:
		return causeIllegalInstruction, true
	}
	s.PC += 4
	return 0, false
}

func opOpFPHandler(s *State, d *decoded) (uint16, bool) {
	switch d.funct7 {
	case 0x00, 0x01, 0x04, 0x05, 0x08, 0x09, 0x0c, 0x0d, 0x2c, 0x2d, 0x20:
		if _, ok := roundingMode(effRound(s, d.funct3)); !ok {
			return causeIllegalInstruction, true
		}
	}
	switch d.funct7 {
	case 0x00: // FADD.S
		r, f := fadd32(s.getF32(d.rs1), s.getF32(d.rs2), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF32(d.rd, r)
	case 0x01: // FADD.D
		r, f := fadd64(s.getF64(d.rs1), s.getF64(d.rs2), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF64(d.rd, r)
	case 0x04: // FSUB.S
		r, f := fsub32(s.getF32(d.rs1), s.getF32(d.rs2), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF32(d.rd, r)
	case 0x05: // FSUB.D
		r, f := fsub64(s.getF64(d.rs1), s.getF64(d.rs2), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF64(d.rd, r)
	case 0x08: // FMUL.S
		r, f := fmul32(s.getF32(d.rs1), s.getF32(d.rs2), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF32(d.rd, r)
	case 0x09: // FMUL.D
		r, f := fmul64(s.getF64(d.rs1), s.getF64(d.rs2), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF64(d.rd, r)
	case 0x0c: // FDIV.S
		r, f := fdiv32(s.getF32(d.rs1), s.getF32(d.rs2), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF32(d.rd, r)
	case 0x0d: // FDIV.D
		r, f := fdiv64(s.getF64(d.rs1), s.getF64(d.rs2), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF64(d.rd, r)
	case 0x2c: // FSQRT.S
		r, f := fsqrt32(s.getF32(d.rs1), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF32(d.rd, r)
	case 0x2d: // FSQRT.D
		r, f := fsqrt64(s.getF64(d.rs1), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF64(d.rd, r)
	case 0x10: // FSGNJ.S / FSGNJN.S / FSGNJX.S
		a, b := s.getF32(d.rs1), s.getF32(d.rs2)
		switch d.funct3 {
		case 0:
			s.setF32(d.rd, fsgnj32(a, b))
		case 1:
			s.setF32(d.rd, fsgnjn32(a, b))
		case 2:
			s.setF32(d.rd, fsgnjx32(a, b))
		default:
			return causeIllegalInstruction, true
		}
	case 0x11: // FSGNJ.D / FSGNJN.D / FSGNJX.D
		a, b := s.getF64(d.rs1), s.getF64(d.rs2)
		switch d.funct3 {
		case 0:
			s.setF64(d.rd, fsgnj64(a, b))
		case 1:
			s.setF64(d.rd, fsgnjn64(a, b))
		case 2:
			s.setF64(d.rd, fsgnjx64(a, b))
		default:
			return causeIllegalInstruction, true
		}
	case 0x14: // FMIN.S / FMAX.S
		a, b := s.getF32(d.rs1), s.getF32(d.rs2)
		r, f := fminmax32(a, b, d.funct3 == 1)
		setFFlags(s, f)
		s.setF32(d.rd, r)
	case 0x15: // FMIN.D / FMAX.D
		a, b := s.getF64(d.rs1), s.getF64(d.rs2)
		r, f := fminmax64(a, b, d.funct3 == 1)
		setFFlags(s, f)
		s.setF64(d.rd, r)
	case 0x50: // FEQ.S / FLT.S / FLE.S
		a, b := s.getF32(d.rs1), s.getF32(d.rs2)
		op, ok := cmpOp(d.funct3)
		if !ok {
			return causeIllegalInstruction, true
		}
		r, f := fcompare32(a, b, op)
		setFFlags(s, f)
		s.setX(d.rd, r)
	case 0x51: // FEQ.D / FLT.D / FLE.D
		a, b := s.getF64(d.rs1), s.getF64(d.rs2)
		op, ok := cmpOp(d.funct3)
		if !ok {
			return causeIllegalInstruction, true
		}
		r, f := fcompare64(a, b, op)
		setFFlags(s, f)
		s.setX(d.rd, r)
	case 0x60: // FCVT.W.S / WU.S / L.S / LU.S
		r, f, ok := floatToInt(float64ForConvert(s.getF32(d.rs1), true), d.rs2, effRound(s, d.funct3))
		if !ok {
			return causeIllegalInstruction, true
		}
		setFFlags(s, f)
		s.setX(d.rd, r)
	case 0x61: // FCVT.W.D / WU.D / L.D / LU.D
		r, f, ok := floatToInt(math.Float64frombits(s.getF64(d.rs1)), d.rs2, effRound(s, d.funct3))
		if !ok {
			return causeIllegalInstruction, true
		}
		setFFlags(s, f)
		s.setX(d.rd, r)
	case 0x68: // FCVT.S.W / WU / L / LU
		r, f, ok := intToFloat32(s.getX(d.rs1), d.rs2, effRound(s, d.funct3))
		if !ok {
			return causeIllegalInstruction, true
		}
		setFFlags(s, f)
		s.setF32(d.rd, r)
	case 0x69: // FCVT.D.W / WU / L / LU
		r, f, ok := intToFloat64(s.getX(d.rs1), d.rs2, effRound(s, d.funct3))
		if !ok {
			return causeIllegalInstruction, true
		}
		setFFlags(s, f)
		s.setF64(d.rd, r)
	case 0x70: // FMV.X.W / FCLASS.S
		switch d.funct3 {
		case 0:
			s.setX(d.rd, signExtend(uint64(s.getF32(d.rs1)), 32))
		case 1:
			s.setX(d.rd, classify32Mask(s.getF32(d.rs1)))
		default:
			return causeIllegalInstruction, true
		}
	case 0x71: // FMV.X.D / FCLASS.D
		switch d.funct3 {
		case 0:
			s.setX(d.rd, s.getF64(d.rs1))
		case 1:
			s.setX(d.rd, classify64Mask(s.getF64(d.rs1)))
		default:
			return causeIllegalInstruction, true
		}
	case 0x78: // FMV.W.X
		s.setF32(d.rd, uint32(s.getX(d.rs1)))
	case 0x79: // FMV.D.X
		s.setF64(d.rd, s.getX(d.rs1))
	case 0x20: // FCVT.S.D
		r, f := narrowTo32(s.getF64(d.rs1), effRound(s, d.funct3))
		setFFlags(s, f)
		s.setF32(d.rd, r)
	case 0x21: // FCVT.D.S
		r, f := widenTo64(s.getF32(d.rs1))
		setFFlags(s, f)
		s.setF64(d.rd, r)
	default:
		return causeIllegalInstruction, true
	}
	s.PC += 4
	return 0, false
}

func cmpOp(funct3 uint8) (uint8, bool) {
	switch funct3 {
	case 0:
		return 1, true // FLE -> le
	case 1:
		return 0, true // FLT -> lt
	case 2:
		return 2, true // FEQ -> eq
	default:
		return 0, false
	}
}

func float64ForConvert(bits uint32, _ bool) float64 {
	return float64(math.Float32frombits(bits))
}
