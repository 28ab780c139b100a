package jit

import (
	"math"
	"math/bits"
)

func signExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

func rotr64(v uint64, n uint) uint64 {
	return bits.RotateLeft64(v, -int(n&63))
}

func mulh(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	return hi
}

func smulh(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	if int64(b) < 0 {
		hi -= a
	}
	return hi
}

// memPairAsFloat reads the 8 bytes at offset as two packed i32 and
// converts each to float64 via a signed (not bit-reinterpreting)
// conversion, as FADD_M/FSUB_M/FDIV_M require.
func memPairAsFloat(pad Scratchpad, offset uint64) (float64, float64) {
	word := pad.ReadUint64(offset)
	lo := int32(word)
	hi := int32(word >> 32)
	return float64(lo), float64(hi)
}

// eMantissaMask keeps the low 56 bits of FDIV_M's int32-converted memory
// operand (52 mantissa bits plus 4 extra exponent bits); the caller's
// per-program eMask (State.EMask, program.go's exponentMask) supplies the
// rest, identically to how the "e" register group is converted (spec
// §4.11 step 3; bytecodecompiler.cpp's fdivm_cmpl: vpand against the
// mantissa mask, vpor against e_mask).
const eMantissaMask = uint64(1)<<56 - 1

func maskExponent(v float64, eMask uint64) float64 {
	bits64 := math.Float64bits(v)
	bits64 = bits64&eMantissaMask | eMask
	return math.Float64frombits(bits64)
}

// flipSignExponent implements FSCAL_R: xor the sign and exponent bits
// with 0x80F0000000000000, negating the value and toggling its exponent.
func flipSignExponent(v float64) float64 {
	return math.Float64frombits(math.Float64bits(v) ^ 0x80F0000000000000)
}

// roundMode applies one of the four IEEE rounding directions to a value
// already computed in round-to-nearest (the only mode Go's float64
// arithmetic offers); see State.RoundingMode.
func roundMode(v float64, mode uint8) float64 {
	switch mode {
	case 1: // toward -Inf
		return math.Floor(v)
	case 2: // toward +Inf
		return math.Ceil(v)
	case 3: // toward zero
		return math.Trunc(v)
	default: // nearest, already correct
		return v
	}
}

func sqrtRound(v float64, mode uint8) float64 {
	return roundMode(math.Sqrt(v), mode)
}
