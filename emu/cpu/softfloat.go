/*
   Correctly-rounded IEEE-754 arithmetic primitive.

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

import (
	"math"
	"math/big"
)

// This file is the engine's soft-float boundary. Correctly-rounded
// arithmetic and rounding-mode selection are delegated to math/big.Float,
// which natively supports selectable rounding modes and reports
// per-operation accuracy. Special values (NaN, infinities, signed zero)
// are handled ahead of big.Float, which has no signed zero and cannot
// represent NaN or infinity at all.

// fflags bits.
const (
	flagInexact  uint8 = 1 << 0
	flagUnderflow uint8 = 1 << 1
	flagOverflow uint8 = 1 << 2
	flagDivZero  uint8 = 1 << 3
	flagInvalid  uint8 = 1 << 4
)

const (
	canonicalQNaN32 uint32 = 0x7fc00000
	canonicalQNaN64 uint64 = 0x7ff8000000000000
)

// roundingMode maps the RISC-V 3-bit rounding field to big.RoundingMode.
// ok is false for the reserved/invalid encodings 5, 6 and 7 (7 arrives here
// only from a dynamic frm field of 7); the instruction handlers raise
// illegal-instruction on failure.
func roundingMode(rm uint8) (big.RoundingMode, bool) {
	switch rm {
	case 0:
		return big.ToNearestEven, true
	case 1:
		return big.ToZero, true
	case 2:
		return big.ToNegativeInf, true
	case 3:
		return big.ToPositiveInf, true
	case 4:
		return big.ToNearestAway, true
	default:
		return big.ToNearestEven, false
	}
}

// --- classification -------------------------------------------------------

func classify32(bits uint32) (sign bool, isZero, isInf, isNaN, isSignaling, isSubnormal bool) {
	sign = bits>>31 != 0
	exp := (bits >> 23) & 0xff
	mant := bits & 0x7fffff
	switch {
	case exp == 0xff && mant == 0:
		isInf = true
	case exp == 0xff:
		isNaN = true
		isSignaling = mant&0x400000 == 0
	case exp == 0 && mant == 0:
		isZero = true
	case exp == 0:
		isSubnormal = true
	}
	return
}

func classify64(bits uint64) (sign bool, isZero, isInf, isNaN, isSignaling, isSubnormal bool) {
	sign = bits>>63 != 0
	exp := (bits >> 52) & 0x7ff
	mant := bits & 0xfffffffffffff
	switch {
	case exp == 0x7ff && mant == 0:
		isInf = true
	case exp == 0x7ff:
		isNaN = true
		isSignaling = mant&0x8000000000000 == 0
	case exp == 0 && mant == 0:
		isZero = true
	case exp == 0:
		isSubnormal = true
	}
	return
}

// Classify produces the 10-bit fclass mask.
func classify32Mask(bits uint32) uint64 {
	sign, isZero, isInf, isNaN, isSignaling, isSubnormal := classify32(bits)
	return classifyMask(sign, isZero, isInf, isNaN, isSignaling, isSubnormal)
}

func classify64Mask(bits uint64) uint64 {
	sign, isZero, isInf, isNaN, isSignaling, isSubnormal := classify64(bits)
	return classifyMask(sign, isZero, isInf, isNaN, isSignaling, isSubnormal)
}

func classifyMask(sign, isZero, isInf, isNaN, isSignaling, isSubnormal bool) uint64 {
	switch {
	case isNaN && isSignaling:
		return 1 << 8
	case isNaN:
		return 1 << 9
	case isInf && sign:
		return 1 << 0
	case isInf:
		return 1 << 7
	case isZero && sign:
		return 1 << 3
	case isZero:
		return 1 << 4
	case isSubnormal && sign:
		return 1 << 2
	case isSubnormal:
		return 1 << 5
	case sign:
		return 1 << 1
	default:
		return 1 << 6
	}
}

func infBits32(sign bool) uint32 {
	if sign {
		return 0xff800000
	}
	return 0x7f800000
}

func infBits64(sign bool) uint64 {
	if sign {
		return 0xfff0000000000000
	}
	return 0x7ff0000000000000
}

func zeroBits32(sign bool) uint32 {
	if sign {
		return 0x80000000
	}
	return 0
}

func zeroBits64(sign bool) uint64 {
	if sign {
		return 0x8000000000000000
	}
	return 0
}

// --- big.Float conversion --------------------------------------------------

func toBig32(bits uint32) *big.Float {
	f := math.Float32frombits(bits)
	return new(big.Float).SetPrec(24).SetFloat64(float64(f))
}

func toBig64(bits uint64) *big.Float {
	f := math.Float64frombits(bits)
	return new(big.Float).SetPrec(53).SetFloat64(f)
}

// fromBig32 rounds z (already computed at prec 24 under the caller's
// rounding mode) down to a float32 bit pattern, detecting overflow and
// underflow that big.Float's unbounded exponent range hides.
func fromBig32(z *big.Float) (uint32, uint8) {
	var flags uint8
	if z.Acc() != big.Exact {
		flags |= flagInexact
	}
	f, acc := z.Float32()
	if acc != big.Exact {
		flags |= flagInexact
	}
	bits := math.Float32bits(f)
	if math.IsInf(float64(f), 0) {
		flags |= flagOverflow | flagInexact
	} else if exp := (bits >> 23) & 0xff; exp == 0 {
		if bits&0x7fffffff != 0 || z.Sign() != 0 {
			flags |= flagUnderflow
			if flags&flagInexact != 0 {
				flags |= flagUnderflow
			}
		}
	}
	return bits, flags
}

func fromBig64(z *big.Float) (uint64, uint8) {
	var flags uint8
	if z.Acc() != big.Exact {
		flags |= flagInexact
	}
	f, acc := z.Float64()
	if acc != big.Exact {
		flags |= flagInexact
	}
	bits := math.Float64bits(f)
	if math.IsInf(f, 0) {
		flags |= flagOverflow | flagInexact
	} else if exp := (bits >> 52) & 0x7ff; exp == 0 {
		if bits&((uint64(1)<<63)-1) != 0 || z.Sign() != 0 {
			flags |= flagUnderflow
		}
	}
	return bits, flags
}

// zeroSignOnCancel applies the IEEE-754 rule for an exact sum of two
// nonzero finite values that cancel to zero: the result is +0 except under
// round-toward-negative, where it is -0 (big.Float has no signed zero, so
// this case must be special-cased by the caller after seeing z.Sign()==0).
func zeroSignOnCancel(mode big.RoundingMode) bool {
	return mode == big.ToNegativeInf
}

// --- add / sub --------------------------------------------------------------

func fadd32(a, b uint32, rm uint8) (uint32, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	asign, azero, ainf, anan, asig, _ := classify32(a)
	bsign, bzero, binf, bnan, bsig, _ := classify32(b)

	if anan || bnan {
		if asig || bsig {
			return canonicalQNaN32, flagInvalid
		}
		return canonicalQNaN32, 0
	}
	if ainf && binf {
		if asign != bsign {
			return canonicalQNaN32, flagInvalid
		}
		return infBits32(asign), 0
	}
	if ainf {
		return infBits32(asign), 0
	}
	if binf {
		return infBits32(bsign), 0
	}
	if azero && bzero {
		if asign == bsign {
			return zeroBits32(asign), 0
		}
		return zeroBits32(zeroSignOnCancel(mode)), 0
	}
	if azero {
		return b, 0
	}
	if bzero {
		return a, 0
	}

	z := new(big.Float).SetPrec(24).SetMode(mode)
	z.Add(toBig32(a), toBig32(b))
	if z.Sign() == 0 {
		return zeroBits32(zeroSignOnCancel(mode)), 0
	}
	return fromBig32(z)
}

func fsub32(a, b uint32, rm uint8) (uint32, uint8) {
	return fadd32(a, negate32(b), rm)
}

func fadd64(a, b uint64, rm uint8) (uint64, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	asign, azero, ainf, anan, asig, _ := classify64(a)
	bsign, bzero, binf, bnan, bsig, _ := classify64(b)

	if anan || bnan {
		if asig || bsig {
			return canonicalQNaN64, flagInvalid
		}
		return canonicalQNaN64, 0
	}
	if ainf && binf {
		if asign != bsign {
			return canonicalQNaN64, flagInvalid
		}
		return infBits64(asign), 0
	}
	if ainf {
		return infBits64(asign), 0
	}
	if binf {
		return infBits64(bsign), 0
	}
	if azero && bzero {
		if asign == bsign {
			return zeroBits64(asign), 0
		}
		return zeroBits64(zeroSignOnCancel(mode)), 0
	}
	if azero {
		return b, 0
	}
	if bzero {
		return a, 0
	}

	z := new(big.Float).SetPrec(53).SetMode(mode)
	z.Add(toBig64(a), toBig64(b))
	if z.Sign() == 0 {
		return zeroBits64(zeroSignOnCancel(mode)), 0
	}
	return fromBig64(z)
}

func fsub64(a, b uint64, rm uint8) (uint64, uint8) {
	return fadd64(a, negate64(b), rm)
}

// --- mul ---------------------------------------------------------------

func fmul32(a, b uint32, rm uint8) (uint32, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	asign, azero, ainf, anan, asig, _ := classify32(a)
	bsign, bzero, binf, bnan, bsig, _ := classify32(b)
	rsign := asign != bsign

	if anan || bnan {
		if asig || bsig {
			return canonicalQNaN32, flagInvalid
		}
		return canonicalQNaN32, 0
	}
	if (ainf && bzero) || (azero && binf) {
		return canonicalQNaN32, flagInvalid
	}
	if ainf || binf {
		return infBits32(rsign), 0
	}
	if azero || bzero {
		return zeroBits32(rsign), 0
	}

	z := new(big.Float).SetPrec(24).SetMode(mode)
	z.Mul(toBig32(a), toBig32(b))
	return fromBig32(z)
}

func fmul64(a, b uint64, rm uint8) (uint64, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	asign, azero, ainf, anan, asig, _ := classify64(a)
	bsign, bzero, binf, bnan, bsig, _ := classify64(b)
	rsign := asign != bsign

	if anan || bnan {
		if asig || bsig {
			return canonicalQNaN64, flagInvalid
		}
		return canonicalQNaN64, 0
	}
	if (ainf && bzero) || (azero && binf) {
		return canonicalQNaN64, flagInvalid
	}
	if ainf || binf {
		return infBits64(rsign), 0
	}
	if azero || bzero {
		return zeroBits64(rsign), 0
	}

	z := new(big.Float).SetPrec(53).SetMode(mode)
	z.Mul(toBig64(a), toBig64(b))
	return fromBig64(z)
}

// --- div ---------------------------------------------------------------

func fdiv32(a, b uint32, rm uint8) (uint32, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	asign, azero, ainf, anan, asig, _ := classify32(a)
	bsign, bzero, binf, bnan, bsig, _ := classify32(b)
	rsign := asign != bsign

	if anan || bnan {
		if asig || bsig {
			return canonicalQNaN32, flagInvalid
		}
		return canonicalQNaN32, 0
	}
	if (azero && bzero) || (ainf && binf) {
		return canonicalQNaN32, flagInvalid
	}
	if ainf || bzero {
		if bzero && !ainf {
			return infBits32(rsign), flagDivZero
		}
		return infBits32(rsign), 0
	}
	if azero || binf {
		return zeroBits32(rsign), 0
	}

	z := new(big.Float).SetPrec(24).SetMode(mode)
	z.Quo(toBig32(a), toBig32(b))
	return fromBig32(z)
}

func fdiv64(a, b uint64, rm uint8) (uint64, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	asign, azero, ainf, anan, asig, _ := classify64(a)
	bsign, bzero, binf, bnan, bsig, _ := classify64(b)
	rsign := asign != bsign

	if anan || bnan {
		if asig || bsig {
			return canonicalQNaN64, flagInvalid
		}
		return canonicalQNaN64, 0
	}
	if (azero && bzero) || (ainf && binf) {
		return canonicalQNaN64, flagInvalid
	}
	if ainf || bzero {
		if bzero && !ainf {
			return infBits64(rsign), flagDivZero
		}
		return infBits64(rsign), 0
	}
	if azero || binf {
		return zeroBits64(rsign), 0
	}

	z := new(big.Float).SetPrec(53).SetMode(mode)
	z.Quo(toBig64(a), toBig64(b))
	return fromBig64(z)
}

// --- sqrt ----------------------------------------------------------------

func fsqrt32(a uint32, rm uint8) (uint32, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	sign, zero, inf, nan, sig, _ := classify32(a)
	if nan {
		if sig {
			return canonicalQNaN32, flagInvalid
		}
		return canonicalQNaN32, 0
	}
	if zero {
		return a, 0
	}
	if sign {
		return canonicalQNaN32, flagInvalid
	}
	if inf {
		return a, 0
	}
	z := new(big.Float).SetPrec(24).SetMode(mode)
	z.Sqrt(toBig32(a))
	return fromBig32(z)
}

func fsqrt64(a uint64, rm uint8) (uint64, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	sign, zero, inf, nan, sig, _ := classify64(a)
	if nan {
		if sig {
			return canonicalQNaN64, flagInvalid
		}
		return canonicalQNaN64, 0
	}
	if zero {
		return a, 0
	}
	if sign {
		return canonicalQNaN64, flagInvalid
	}
	if inf {
		return a, 0
	}
	z := new(big.Float).SetPrec(53).SetMode(mode)
	z.Sqrt(toBig64(a))
	return fromBig64(z)
}

// --- fused multiply-add ----------------------------------------------------

func fma32(a, b, c uint32, rm uint8) (uint32, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	asign, azero, ainf, anan, asig, _ := classify32(a)
	bsign, bzero, binf, bnan, bsig, _ := classify32(b)
	_, czero, cinf, cnan, csig, _ := classify32(c)
	rsign := asign != bsign

	if anan || bnan || cnan {
		if asig || bsig || csig {
			return canonicalQNaN32, flagInvalid
		}
		return canonicalQNaN32, 0
	}
	if (ainf && bzero) || (azero && binf) {
		return canonicalQNaN32, flagInvalid
	}
	if ainf || binf {
		prod := infBits32(rsign)
		if cinf {
			pc, f := fadd32(prod, c, rm)
			return pc, f
		}
		return prod, 0
	}
	if cinf {
		return c, 0
	}
	if azero || bzero {
		return fadd32(zeroBits32(rsign), c, rm)
	}
	if czero {
		// Product is finite nonzero, c is zero: result is the product,
		// correctly rounded, regardless of c's sign.
		prod := new(big.Float).SetPrec(48).SetMode(big.ToNearestEven)
		prod.Mul(toBig32(a), toBig32(b))
		rounded := new(big.Float).SetPrec(24).SetMode(mode).Set(prod)
		return fromBig32(rounded)
	}

	prod := new(big.Float).SetPrec(48).SetMode(big.ToNearestEven)
	prod.Mul(toBig32(a), toBig32(b))
	z := new(big.Float).SetPrec(24).SetMode(mode)
	z.Add(prod, toBig32(c))
	if z.Sign() == 0 {
		return zeroBits32(zeroSignOnCancel(mode)), 0
	}
	return fromBig32(z)
}

func fma64(a, b, c uint64, rm uint8) (uint64, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	asign, azero, ainf, anan, asig, _ := classify64(a)
	bsign, bzero, binf, bnan, bsig, _ := classify64(b)
	_, czero, cinf, cnan, csig, _ := classify64(c)
	rsign := asign != bsign

	if anan || bnan || cnan {
		if asig || bsig || csig {
			return canonicalQNaN64, flagInvalid
		}
		return canonicalQNaN64, 0
	}
	if (ainf && bzero) || (azero && binf) {
		return canonicalQNaN64, flagInvalid
	}
	if ainf || binf {
		prod := infBits64(rsign)
		if cinf {
			pc, f := fadd64(prod, c, rm)
			return pc, f
		}
		return prod, 0
	}
	if cinf {
		return c, 0
	}
	if azero || bzero {
		return fadd64(zeroBits64(rsign), c, rm)
	}
	if czero {
		prod := new(big.Float).SetPrec(106).SetMode(big.ToNearestEven)
		prod.Mul(toBig64(a), toBig64(b))
		rounded := new(big.Float).SetPrec(53).SetMode(mode).Set(prod)
		return fromBig64(rounded)
	}

	prod := new(big.Float).SetPrec(106).SetMode(big.ToNearestEven)
	prod.Mul(toBig64(a), toBig64(b))
	z := new(big.Float).SetPrec(53).SetMode(mode)
	z.Add(prod, toBig64(c))
	if z.Sign() == 0 {
		return zeroBits64(zeroSignOnCancel(mode)), 0
	}
	return fromBig64(z)
}

// --- sign injection ----------------------------------------------------

func negate32(bits uint32) uint32 { return bits ^ 0x80000000 }
func negate64(bits uint64) uint64 { return bits ^ 0x8000000000000000 }

func fsgnj32(a, b uint32) uint32  { return (a &^ 0x80000000) | (b & 0x80000000) }
func fsgnjn32(a, b uint32) uint32 { return (a &^ 0x80000000) | (^b & 0x80000000) }
func fsgnjx32(a, b uint32) uint32 { return a ^ (b & 0x80000000) }

func fsgnj64(a, b uint64) uint64 {
	return (a &^ 0x8000000000000000) | (b & 0x8000000000000000)
}
func fsgnjn64(a, b uint64) uint64 {
	return (a &^ 0x8000000000000000) | (^b & 0x8000000000000000)
}
func fsgnjx64(a, b uint64) uint64 {
	return a ^ (b & 0x8000000000000000)
}

// --- min / max (IEEE-754-2008 minNum/maxNum, -0 < +0) -----------------------

func fminmax32(a, b uint32, max bool) (uint32, uint8) {
	asign, azero, _, anan, asig, _ := classify32(a)
	bsign, bzero, _, bnan, bsig, _ := classify32(b)
	var flags uint8
	if asig || bsig {
		flags = flagInvalid
	}
	switch {
	case anan && bnan:
		return canonicalQNaN32, flags
	case anan:
		return b, flags
	case bnan:
		return a, flags
	case azero && bzero:
		if asign != bsign {
			if max == asign { // b is the wanted zero: -0 for min, +0 for max
				return b, flags
			}
			return a, flags
		}
		return a, flags
	}
	fa := math.Float32frombits(a)
	fb := math.Float32frombits(b)
	if max {
		if fa >= fb {
			return a, flags
		}
		return b, flags
	}
	if fa <= fb {
		return a, flags
	}
	return b, flags
}

func fminmax64(a, b uint64, max bool) (uint64, uint8) {
	asign, azero, _, anan, asig, _ := classify64(a)
	bsign, bzero, _, bnan, bsig, _ := classify64(b)
	var flags uint8
	if asig || bsig {
		flags = flagInvalid
	}
	switch {
	case anan && bnan:
		return canonicalQNaN64, flags
	case anan:
		return b, flags
	case bnan:
		return a, flags
	case azero && bzero:
		if asign != bsign {
			if max == asign {
				return b, flags
			}
			return a, flags
		}
		return a, flags
	}
	fa := math.Float64frombits(a)
	fb := math.Float64frombits(b)
	if max {
		if fa >= fb {
			return a, flags
		}
		return b, flags
	}
	if fa <= fb {
		return a, flags
	}
	return b, flags
}

// --- compare -------------------------------------------------------------

// fcompare implements feq (quiet) / flt / fle (signaling).
func fcompare32(a, b uint32, op uint8) (uint64, uint8) {
	_, azero, _, anan, asig, _ := classify32(a)
	_, bzero, _, bnan, bsig, _ := classify32(b)
	if anan || bnan {
		var flags uint8
		if op != 2 { // lt, le: signaling on any NaN
			flags = flagInvalid
		} else if asig || bsig { // eq: signaling only on sNaN
			flags = flagInvalid
		}
		return 0, flags
	}
	fa := math.Float32frombits(a)
	fb := math.Float32frombits(b)
	if azero && bzero {
		fa, fb = 0, 0
	}
	return compareResult(float64(fa), float64(fb), op), 0
}

func fcompare64(a, b uint64, op uint8) (uint64, uint8) {
	_, azero, _, anan, asig, _ := classify64(a)
	_, bzero, _, bnan, bsig, _ := classify64(b)
	if anan || bnan {
		var flags uint8
		if op != 2 {
			flags = flagInvalid
		} else if asig || bsig {
			flags = flagInvalid
		}
		return 0, flags
	}
	fa := math.Float64frombits(a)
	fb := math.Float64frombits(b)
	if azero && bzero {
		fa, fb = 0, 0
	}
	return compareResult(fa, fb, op), 0
}

// op: 0=lt, 1=le, 2=eq
func compareResult(a, b float64, op uint8) uint64 {
	var r bool
	switch op {
	case 0:
		r = a < b
	case 1:
		r = a <= b
	default:
		r = a == b
	}
	if r {
		return 1
	}
	return 0
}

// --- integer <-> float conversions -----------------------------------------

func roundToMode(f float64, mode big.RoundingMode) float64 {
	switch mode {
	case big.ToZero:
		return math.Trunc(f)
	case big.ToNegativeInf:
		return math.Floor(f)
	case big.ToPositiveInf:
		return math.Ceil(f)
	case big.ToNearestAway:
		return math.Round(f)
	default:
		return math.RoundToEven(f)
	}
}

// intConvMax is the saturated result FCVT.W*/L* produces for a NaN source,
// per the rule that an invalid conversion returns the destination type's
// most positive representable value.
func intConvMax(rs2 uint8) uint64 {
	switch rs2 {
	case 0:
		return signExtend(0x7fffffff, 32)
	case 1:
		return signExtend(0xffffffff, 32)
	case 2:
		return 0x7fffffffffffffff
	default:
		return 0xffffffffffffffff
	}
}

// floatToInt implements FCVT.{W,WU,L,LU}.{S,D}. rs2 selects the
// destination: 0=W (int32), 1=WU (uint32), 2=L (int64), 3=LU (uint64). W and
// WU results are sign-extended to 64 bits per the ISA's uniform rule for
// 32-bit destinations.
func floatToInt(f float64, rs2 uint8, rm uint8) (uint64, uint8, bool) {
	mode, ok := roundingMode(rm)
	if !ok || rs2 > 3 {
		return 0, 0, false
	}
	if math.IsNaN(f) {
		return intConvMax(rs2), flagInvalid, true
	}
	rounded := roundToMode(f, mode)
	var flags uint8
	if rounded != f {
		flags = flagInexact
	}
	switch rs2 {
	case 0: // W
		switch {
		case rounded < -2147483648:
			return signExtend(0x80000000, 32), flagInvalid, true
		case rounded > 2147483647:
			return signExtend(0x7fffffff, 32), flagInvalid, true
		default:
			return signExtend(uint64(uint32(int32(rounded))), 32), flags, true
		}
	case 1: // WU
		switch {
		case rounded < 0:
			return 0, flagInvalid, true
		case rounded > 4294967295:
			return signExtend(0xffffffff, 32), flagInvalid, true
		default:
			return signExtend(uint64(uint32(rounded)), 32), flags, true
		}
	case 2: // L
		switch {
		case rounded < -9223372036854775808.0:
			return 0x8000000000000000, flagInvalid, true
		case rounded >= 9223372036854775808.0:
			return 0x7fffffffffffffff, flagInvalid, true
		default:
			return uint64(int64(rounded)), flags, true
		}
	default: // LU
		switch {
		case rounded < 0:
			return 0, flagInvalid, true
		case rounded >= 18446744073709551616.0:
			return 0xffffffffffffffff, flagInvalid, true
		default:
			return uint64(rounded), flags, true
		}
	}
}

// intToFloat32/64 implement FCVT.{S,D}.{W,WU,L,LU}, correctly rounded via an
// exact big.Int source converted into a precision-limited big.Float.
func intToFloat32(x uint64, rs2 uint8, rm uint8) (uint32, uint8, bool) {
	mode, ok := roundingMode(rm)
	if !ok || rs2 > 3 {
		return 0, 0, false
	}
	z := new(big.Float).SetPrec(24).SetMode(mode)
	z.SetInt(sourceInt(x, rs2))
	bits, flags := fromBig32(z)
	return bits, flags, true
}

func intToFloat64(x uint64, rs2 uint8, rm uint8) (uint64, uint8, bool) {
	mode, ok := roundingMode(rm)
	if !ok || rs2 > 3 {
		return 0, 0, false
	}
	z := new(big.Float).SetPrec(53).SetMode(mode)
	z.SetInt(sourceInt(x, rs2))
	bits, flags := fromBig64(z)
	return bits, flags, true
}

func sourceInt(x uint64, rs2 uint8) *big.Int {
	switch rs2 {
	case 0:
		return big.NewInt(int64(int32(x)))
	case 1:
		return new(big.Int).SetUint64(uint64(uint32(x)))
	case 2:
		return big.NewInt(int64(x))
	default:
		return new(big.Int).SetUint64(x)
	}
}

// narrowTo32 implements FCVT.S.D: a rounding narrowing conversion.
func narrowTo32(bits uint64, rm uint8) (uint32, uint8) {
	mode, ok := roundingMode(rm)
	if !ok {
		return 0, flagInvalid
	}
	sign, zero, inf, nan, sig, _ := classify64(bits)
	if nan {
		if sig {
			return canonicalQNaN32, flagInvalid
		}
		return canonicalQNaN32, 0
	}
	if zero {
		return zeroBits32(sign), 0
	}
	if inf {
		return infBits32(sign), 0
	}
	z := new(big.Float).SetPrec(24).SetMode(mode)
	z.Set(toBig64(bits))
	return fromBig32(z)
}

// widenTo64 implements FCVT.D.S: always exact, so no rounding mode applies.
func widenTo64(bits uint32) (uint64, uint8) {
	sign, zero, inf, nan, sig, _ := classify32(bits)
	if nan {
		if sig {
			return canonicalQNaN64, flagInvalid
		}
		return canonicalQNaN64, 0
	}
	if zero {
		return zeroBits64(sign), 0
	}
	if inf {
		return infBits64(sign), 0
	}
	z := new(big.Float).SetPrec(53).SetMode(big.ToNearestEven)
	z.Set(toBig32(bits))
	return fromBig64(z)
}
