/*
   Instruction word field decoders.

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

// decoded holds every field a handler might need, extracted once per fetch
// by pure bit-selection. Not every field is meaningful for
// every opcode; handlers read only the ones their format defines.
type decoded struct {
	word uint32

	opcode uint8
	rd     uint8
	funct3 uint8
	rs1    uint8
	rs2    uint8
	rs3    uint8
	funct7 uint8
	shamt  uint8
	csr    uint16
	zimm   uint8

	immI uint64
	immS uint64
	immB uint64
	immU uint64
	immJ uint64
}

// signExtend sign-extends the low bits-wide field of v to 64 bits via the
// standard bit trick: m = 1<<(bits-1); result = (v^m) - m (mod 2^64).
func signExtend(v uint64, bits uint) uint64 {
	m := uint64(1) << (bits - 1)
	return (v ^ m) - m
}

func decode(word uint32) decoded {
	w := uint64(word)
	d := decoded{
		word:   word,
		opcode: uint8(word & 0x7f),
		rd:     uint8((word >> 7) & 0x1f),
		funct3: uint8((word >> 12) & 0x7),
		rs1:    uint8((word >> 15) & 0x1f),
		rs2:    uint8((word >> 20) & 0x1f),
		rs3:    uint8((word >> 27) & 0x1f),
		funct7: uint8((word >> 25) & 0x7f),
		shamt:  uint8((word >> 20) & 0x3f),
		csr:    uint16((word >> 20) & 0xfff),
		zimm:   uint8((word >> 15) & 0x1f),
	}

	d.immI = signExtend(w>>20, 12)

	s := ((w >> 25) << 5) | ((w >> 7) & 0x1f)
	d.immS = signExtend(s, 12)

	b := ((w>>31)<<12)&0x1000 |
		((w>>7)<<11)&0x800 |
		((w>>25)<<5)&0x7e0 |
		((w>>8)<<1)&0x1e
	d.immB = signExtend(b, 13)

	d.immU = signExtend((w>>12)<<12, 32)

	j := ((w>>31)<<20)&0x100000 |
		(w & 0xff000) |
		((w>>20)<<11)&0x800 |
		((w>>21)<<1)&0x7fe
	d.immJ = signExtend(j, 21)

	return d
}

// effRound returns the effective rounding mode for a floating-point
// instruction: funct3 unless it equals 7 (dynamic), in which case the frm
// CSR field is used.
func effRound(s *State, funct3 uint8) uint8 {
	if funct3 != 7 {
		return funct3
	}
	return uint8(s.CSR[csrFrm] & 0x7)
}
