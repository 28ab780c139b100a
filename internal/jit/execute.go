package jit

import "math/bits"

// Scratchpad is the memory a compiled program reads and writes through
// IADD_M/ISTORE and friends.
type Scratchpad interface {
	ReadUint64(offset uint64) uint64
	WriteUint64(offset uint64, v uint64)
}

// State holds the integer and floating-point register groups a compiled
// program operates on. F/E/A each hold 4 packed pairs, matching the four
// 128-bit xmm-equivalent registers RandomX's float pipeline uses. A is
// read-only from the program's perspective: the VM driver seeds it once
// per program from that program's own entropy and nothing in this
// package ever writes to it.
type State struct {
	R [8]uint64
	F [4][2]float64
	E [4][2]float64
	A [4][2]float64

	// EMask is the current program's e-register mask pair (program.go's
	// exponentMask, one per lane), reused by FDIV_M to mask its memory
	// operand the same way the "e" register group is converted.
	EMask [2]uint64

	// RoundingMode mirrors the four IEEE rounding directions CFROUND
	// selects (0 nearest, 1 down, 2 up, 3 toward zero). Since Go has no
	// runtime control over the FPU's rounding direction, float ops apply
	// it explicitly via roundMode after computing in round-to-nearest.
	RoundingMode uint8
}

// Run executes prog against state and pad, starting at instruction 0.
// CBRANCH may jump backward; execution always proceeds until it falls off
// the end of the instruction slice (there is no forward branch in the
// RandomX instruction set).
func Run(state *State, prog *Program, pad Scratchpad) {
	instrs := prog.Instructions
	for pc := 0; pc < len(instrs); pc++ {
		instr := &instrs[pc]
		switch instr.Bytecode {
		case IADD_RS:
			dst := state.R[instr.Dst] + (state.R[instr.Src] << instr.Shift)
			if instr.Dst == 5 {
				dst += signExtend32(instr.Imm)
			}
			state.R[instr.Dst] = dst
		case IADD_M:
			state.R[instr.Dst] += pad.ReadUint64(memOffset(state, instr))
		case ISUB_R:
			state.R[instr.Dst] -= state.R[instr.Src]
		case ISUB_M:
			state.R[instr.Dst] -= pad.ReadUint64(memOffset(state, instr))
		case IMUL_R:
			state.R[instr.Dst] *= state.R[instr.Src]
		case IMUL_M:
			state.R[instr.Dst] *= pad.ReadUint64(memOffset(state, instr))
		case IMULH_R:
			state.R[instr.Dst] = mulh(state.R[instr.Dst], state.R[instr.Src])
		case IMULH_M:
			state.R[instr.Dst] = mulh(state.R[instr.Dst], pad.ReadUint64(memOffset(state, instr)))
		case ISMULH_R:
			state.R[instr.Dst] = smulh(state.R[instr.Dst], state.R[instr.Src])
		case ISMULH_M:
			state.R[instr.Dst] = smulh(state.R[instr.Dst], pad.ReadUint64(memOffset(state, instr)))
		case IMUL_RCP:
			if instr.Reciprocal != 0 {
				state.R[instr.Dst] *= instr.Reciprocal
			}
		case INEG_R:
			state.R[instr.Dst] = -state.R[instr.Dst]
		case IXOR_R:
			state.R[instr.Dst] ^= state.R[instr.Src]
		case IXOR_M:
			state.R[instr.Dst] ^= pad.ReadUint64(memOffset(state, instr))
		case IROR_R:
			state.R[instr.Dst] = rotr64(state.R[instr.Dst], uint(state.R[instr.Src]))
		case IROL_R:
			state.R[instr.Dst] = bits.RotateLeft64(state.R[instr.Dst], int(state.R[instr.Src]&63))
		case ISWAP_R:
			if instr.Dst != instr.Src {
				state.R[instr.Dst], state.R[instr.Src] = state.R[instr.Src], state.R[instr.Dst]
			}
		case FSWAP_R:
			state.F[instr.Dst][0], state.F[instr.Dst][1] = state.F[instr.Dst][1], state.F[instr.Dst][0]
		case FADD_R:
			state.F[instr.Dst][0] = roundMode(state.F[instr.Dst][0]+state.A[instr.Src][0], state.RoundingMode)
			state.F[instr.Dst][1] = roundMode(state.F[instr.Dst][1]+state.A[instr.Src][1], state.RoundingMode)
		case FADD_M:
			lo, hi := memPairAsFloat(pad, memOffset(state, instr))
			state.F[instr.Dst][0] = roundMode(state.F[instr.Dst][0]+lo, state.RoundingMode)
			state.F[instr.Dst][1] = roundMode(state.F[instr.Dst][1]+hi, state.RoundingMode)
		case FSUB_R:
			state.F[instr.Dst][0] = roundMode(state.F[instr.Dst][0]-state.A[instr.Src][0], state.RoundingMode)
			state.F[instr.Dst][1] = roundMode(state.F[instr.Dst][1]-state.A[instr.Src][1], state.RoundingMode)
		case FSUB_M:
			lo, hi := memPairAsFloat(pad, memOffset(state, instr))
			state.F[instr.Dst][0] = roundMode(state.F[instr.Dst][0]-lo, state.RoundingMode)
			state.F[instr.Dst][1] = roundMode(state.F[instr.Dst][1]-hi, state.RoundingMode)
		case FSCAL_R:
			state.F[instr.Dst][0] = flipSignExponent(state.F[instr.Dst][0])
			state.F[instr.Dst][1] = flipSignExponent(state.F[instr.Dst][1])
		case FMUL_R:
			state.E[instr.Dst][0] = roundMode(state.E[instr.Dst][0]*state.A[instr.Src][0], state.RoundingMode)
			state.E[instr.Dst][1] = roundMode(state.E[instr.Dst][1]*state.A[instr.Src][1], state.RoundingMode)
		case FDIV_M:
			lo, hi := memPairAsFloat(pad, memOffset(state, instr))
			state.E[instr.Dst][0] = roundMode(state.E[instr.Dst][0]/maskExponent(lo, state.EMask[0]), state.RoundingMode)
			state.E[instr.Dst][1] = roundMode(state.E[instr.Dst][1]/maskExponent(hi, state.EMask[1]), state.RoundingMode)
		case FSQRT_R:
			state.E[instr.Dst][0] = sqrtRound(state.E[instr.Dst][0], state.RoundingMode)
			state.E[instr.Dst][1] = sqrtRound(state.E[instr.Dst][1], state.RoundingMode)
		case CBRANCH:
			state.R[instr.Dst] = uint64(int64(state.R[instr.Dst]) + instr.BranchAdd)
			if state.R[instr.Dst]&instr.CondMask == 0 {
				pc = instr.Target - 1
			}
		case CFROUND:
			state.RoundingMode = uint8(rotr64(state.R[instr.Src], uint(instr.Imm&63)) & 3)
		case ISTORE:
			pad.WriteUint64(memOffset(state, instr), state.R[instr.Dst])
		}
	}
}

// memOffset resolves the scratchpad address for a register+immediate
// memory instruction: (src+imm)&mask normally, or imm&L3 when dst==src
// (spec §4.10).
func memOffset(state *State, instr *Instruction) uint64 {
	if instr.MemDstEq {
		return uint64(int64(int32(instr.Imm))) & L3Mask
	}
	return (state.R[instr.Src] + uint64(int64(int32(instr.Imm)))) & instr.Mask
}
