/*
   M-extension: integer multiply and divide.

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

import "math/big"

// mulhSigned returns the high 64 bits of the signed 128-bit product a*b.
// big.Int.Rsh on a negative value is an arithmetic (floor) shift, which is
// exactly the two's complement high-word extraction this needs.
func mulhSigned(a, b int64) uint64 {
	p := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	p.Rsh(p, 64)
	return uint64(p.Int64())
}

func mulhSignedUnsigned(a int64, b uint64) uint64 {
	x := big.NewInt(a)
	y := new(big.Int).SetUint64(b)
	p := new(big.Int).Mul(x, y)
	p.Rsh(p, 64)
	return uint64(p.Int64())
}

func mulhUnsigned(a, b uint64) uint64 {
	p := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	p.Rsh(p, 64)
	return p.Uint64()
}

// mulDiv64 implements the 64-bit M-extension operations.
// Division by zero and signed overflow (MIN/-1) never trap; they return the
// fixed results the ISA defines.
func mulDiv64(s *State, d *decoded) (uint16, bool) {
	a, b := s.getX(d.rs1), s.getX(d.rs2)
	var r uint64
	switch d.funct3 {
	case 0: // MUL
		r = a * b
	case 1: // MULH
		r = mulhSigned(int64(a), int64(b))
	case 2: // MULHSU
		r = mulhSignedUnsigned(int64(a), b)
	case 3: // MULHU
		r = mulhUnsigned(a, b)
	case 4: // DIV
		sa, sb := int64(a), int64(b)
		switch {
		case sb == 0:
			r = ^uint64(0)
		case sa == -1<<63 && sb == -1:
			r = uint64(sa)
		default:
			r = uint64(sa / sb)
		}
	case 5: // DIVU
		if b == 0 {
			r = ^uint64(0)
		} else {
			r = a / b
		}
	case 6: // REM
		sa, sb := int64(a), int64(b)
		switch {
		case sb == 0:
			r = a
		case sa == -1<<63 && sb == -1:
			r = 0
		default:
			r = uint64(sa % sb)
		}
	case 7: // REMU
		if b == 0 {
			r = a
		} else {
			r = a % b
		}
	default:
		return causeIllegalInstruction, true
	}
	s.setX(d.rd, r)
	s.PC += 4
	return 0, false
}

// mulDiv32 implements the *W 32-bit M-extension operations.
func mulDiv32(s *State, d *decoded) (uint16, bool) {
	a, b := int32(s.getX(d.rs1)), int32(s.getX(d.rs2))
	ua, ub := uint32(a), uint32(b)
	var r uint32
	switch d.funct3 {
	case 0: // MULW
		r = ua * ub
	case 4: // DIVW
		switch {
		case b == 0:
			r = ^uint32(0)
		case a == -1<<31 && b == -1:
			r = ua
		default:
			r = uint32(a / b)
		}
	case 5: // DIVUW
		if ub == 0 {
			r = ^uint32(0)
		} else {
			r = ua / ub
		}
	case 6: // REMW
		switch {
		case b == 0:
			r = ua
		case a == -1<<31 && b == -1:
			r = 0
		default:
			r = uint32(a % b)
		}
	case 7: // REMUW
		if ub == 0 {
			r = ua
		} else {
			r = ua % ub
		}
	default:
		return causeIllegalInstruction, true
	}
	s.setX(d.rd, signExtend(uint64(r), 32))
	s.PC += 4
	return 0, false
}
