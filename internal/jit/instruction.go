package jit

import "github.com/rxhash-go/randomx/internal/reciprocal"

// Scratchpad-addressing masks (spec §4.8): L1/L2 are chosen per memory
// instruction from its mod byte, L3 backs CBRANCH-gated ISTORE and the
// loop header's own addressing.
const (
	L1Mask = uint64(16384-1) &^ 7
	L2Mask = uint64(262144-1) &^ 7
	L3Mask = uint64(2097152-1) &^ 7
)

// jumpOffset and conditionMask build CBRANCH's condition mask: an
// 8-bit-wide window (conditionMask, shifted by modCond+jumpOffset) the
// destination register's low bits must all be zero for the branch to be
// taken, not a single tested bit.
const (
	jumpOffset    = 8
	conditionMask = uint64(0xFF)
)

// RawInstruction is one decoded 8-byte program instruction, before
// bytecode resolution.
type RawInstruction struct {
	Opcode uint8
	Dst    uint8
	Src    uint8
	Mod    uint8
	Imm    uint32
}

// Instruction is a fully resolved instruction: register indices already
// reduced mod 8/4, memory masks and offsets already chosen, reciprocal
// multipliers and branch targets already computed. Run never branches on
// raw opcode bytes again — it switches on Bytecode directly.
type Instruction struct {
	Bytecode   Bytecode
	Dst        uint8 // already reduced (mod 8 for int ops, mod 4 for float ops)
	Src        uint8
	Imm        uint32
	Reciprocal uint64 // IMUL_RCP only; 0 means "nop, rejected divisor"
	IsMemory   bool
	MemDstEq   bool   // loads: dst == src at compile time; ISTORE: mod_cond >= 14 (either selects the imm&L3Mask addressing form)
	Mask       uint64 // memory ops only: L1Mask or L2Mask, chosen at compile time from mod&3
	Shift      uint8  // IADD_RS shift amount, (mod>>2)&3
	CondMask   uint64 // CBRANCH only
	BranchAdd  int64  // CBRANCH only: transformed immediate added to dst
	Target     int    // CBRANCH only: instruction index to resume at when taken
}

// Program is a compiled instruction stream ready for repeated execution.
type Program struct {
	Instructions []Instruction
}

// Compile resolves a decoded instruction stream into a Program. It is the
// only place register-usage bookkeeping for CBRANCH targets happens;
// Run() treats Target as a plain jump index.
func Compile(raw []RawInstruction) *Program {
	prog := &Program{Instructions: make([]Instruction, len(raw))}

	var regUsage [8]int // instruction index of the last write to each integer register, -1 if none yet
	for i := range regUsage {
		regUsage[i] = -1
	}

	for i, r := range raw {
		bc := decodeOpcode(r.Opcode)
		instr := Instruction{
			Bytecode: bc,
			Dst:      r.Dst % 8,
			Src:      r.Src % 8,
			Imm:      r.Imm,
		}

		switch bc {
		case IADD_RS:
			instr.Shift = (r.Mod >> 2) & 3
		case IADD_M, ISUB_M, IMUL_M, IMULH_M, ISMULH_M, IXOR_M, FADD_M, FSUB_M, FDIV_M:
			instr.IsMemory = true
			instr.MemDstEq = instr.Dst == instr.Src
			if r.Mod&3 != 0 {
				instr.Mask = L1Mask
			} else {
				instr.Mask = L2Mask
			}
		case ISTORE:
			instr.IsMemory = true
			modCond := r.Mod >> 4 // full 4 bits: 0-15, same field CBRANCH reads
			instr.MemDstEq = modCond >= 14 // spec: L3 mask once mod_cond >= 14
			if r.Mod&3 != 0 {
				instr.Mask = L1Mask
			} else {
				instr.Mask = L2Mask
			}
		case IMUL_RCP:
			if r.Imm != 0 && !reciprocal.IsZeroOrPowerOfTwo(r.Imm) {
				instr.Reciprocal = reciprocal.Reciprocal(r.Imm)
			}
		case FSWAP_R, FADD_R, FSUB_R, FSCAL_R, FMUL_R, FSQRT_R:
			instr.Dst = r.Dst % 4
			instr.Src = r.Src % 4
		case CBRANCH:
			modCond := r.Mod >> 4 // full 4 bits, 0-15 (bytecodecompiler.cpp's modCond(), not CBRANCH-specific)
			shift := uint(modCond) + jumpOffset
			instr.CondMask = conditionMask << shift
			instr.BranchAdd = int64((signExtend32ToImm(r.Imm) | (uint64(1) << shift)) &^ (uint64(1) << (shift - 1)))
			if regUsage[instr.Dst] < 0 {
				instr.Target = 0
			} else {
				instr.Target = regUsage[instr.Dst] + 1
			}
			for j := range regUsage {
				regUsage[j] = i
			}
		}

		switch bc {
		case IADD_RS, IADD_M, ISUB_R, ISUB_M, IMUL_R, IMUL_M, IMULH_R, IMULH_M,
			ISMULH_R, ISMULH_M, IMUL_RCP, INEG_R, IXOR_R, IXOR_M, IROR_R, IROL_R:
			regUsage[instr.Dst] = i
		case ISWAP_R:
			regUsage[instr.Dst] = i
			regUsage[instr.Src] = i
		}

		prog.Instructions[i] = instr
	}

	return prog
}

// signExtend32ToImm sign-extends a 32-bit immediate to 64 bits for the
// CBRANCH bit manipulation, which must operate on the full-width value.
func signExtend32ToImm(v uint32) uint64 {
	return uint64(int64(int32(v)))
}
