// Package superscalar generates and runs the small pseudo-random integer
// programs used to expand the cache into dataset items (spec §4.5-§4.6).
// Each program is produced by simulating a simplified 3-issue, 3-port CPU
// pipeline against a stream of instructions drawn from a Blake2b-seeded
// generator, so that every dataset item derives from the cache through a
// chain of programs tied to a fixed execution-latency budget rather than a
// fixed instruction count.
package superscalar

// Instruction opcodes. INVALID never appears in a finished Program; it is
// the zero value used while a slot is still being decided during
// generation.
const (
	OpINVALID uint8 = iota
	OpISUB_R
	OpIXOR_R
	OpIADD_RS
	OpIMUL_R
	OpIROR_C
	OpIADD_C7
	OpIXOR_C7
	OpIADD_C8
	OpIXOR_C8
	OpIADD_C9
	OpIXOR_C9
	OpIMULH_R
	OpISMULH_R
	OpIMUL_RCP

	OpCount = 15
)

// RegisterCount is the number of integer registers (r0-r7) a program
// operates on.
const RegisterCount = 8

// Instruction is one step of a program. Not every field is meaningful for
// every opcode: Src names a source register except for the *_C and
// IMUL_RCP families, which have none. Imm holds the raw 32-bit immediate
// for the constant-bearing opcodes, the 2-bit shift for IADD_RS, and the
// rejection-sampled divisor for IMUL_RCP; Reciprocal caches the divisor's
// precomputed magic multiplier so Run never has to call back into the
// reciprocal package per instruction.
type Instruction struct {
	Opcode     uint8
	Dst        uint8
	Src        uint8
	Imm        uint32
	Reciprocal uint64
}

// Program is a finished superscalar instruction sequence plus the register
// chosen to feed the next cache lookup in the dataset item chain.
type Program struct {
	Instructions    []Instruction
	AddressRegister uint8
}

// Size returns the instruction count.
func (p *Program) Size() int {
	return len(p.Instructions)
}
