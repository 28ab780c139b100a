package randomx

import (
	"encoding/binary"
	"math"

	"github.com/rxhash-go/randomx/internal/aesprim"
)

const (
	programHeaderSize = 128
	programLength     = 256
	programInstrSize  = 8
	programBodySize   = programLength * programInstrSize
	programBufferSize = programHeaderSize + programBodySize

	programIterations = 2048

	// datasetExtraItemsMask selects the extra (beyond the 2 GiB base
	// region) dataset items addressable via entropy[13] (spec §4.11 step
	// 3). The extra region is (32 MiB - 64 bytes), i.e. 524287 64-byte
	// items minus one, rounded down to the nearest mask.
	datasetExtraItemsMask = 0x3FFFF // mask over 18 bits, 262144 items
)

// rxInstruction is one decoded program instruction: an 8-bit opcode, two
// register fields (reduced mod 8/4 at execution time depending on
// integer/float context), a mode byte, and a 32-bit immediate.
type rxInstruction struct {
	opcode uint8
	dst    uint8
	src    uint8
	mod    uint8
	imm    uint32
}

// rxProgram is one generated RandomX program: a 128-byte entropy header
// followed by 256 instructions.
type rxProgram struct {
	header       [programHeaderSize]byte
	instructions [programLength]rxInstruction
}

// entropy returns the header reinterpreted as 16 little-endian u64 words,
// the form every header-derived constant (read_reg selection, dataset
// offset, A-group registers) is specified in.
func (p *rxProgram) entropy(i int) uint64 {
	return binary.LittleEndian.Uint64(p.header[i*8 : i*8+8])
}

// readReg returns the four register indices the loop header mixes into
// spMix each iteration, chosen from entropy[12]'s low 4 bits: each pair
// picks between two disjoint registers so the four indices are always
// distinct.
func (p *rxProgram) readReg() [4]uint8 {
	e := p.entropy(12)
	return [4]uint8{
		uint8(0 + (e & 1)),
		uint8(2 + ((e >> 1) & 1)),
		uint8(4 + ((e >> 2) & 1)),
		uint8(6 + ((e >> 3) & 1)),
	}
}

// datasetOffset returns the byte offset of the extra dataset region this
// program will read from, per spec §4.11 step 3.
func (p *rxProgram) datasetOffset() uint64 {
	return (p.entropy(13) & datasetExtraItemsMask) * 64
}

// aGroup computes the four small positive f64 constants used to seed the
// "a" register group, one per pair of header entropy words.
func (p *rxProgram) aGroup() [4][2]float64 {
	var a [4][2]float64
	for i := 0; i < 4; i++ {
		a[i][0] = smallPositiveFloat(p.entropy(i * 2))
		a[i][1] = smallPositiveFloat(p.entropy(i*2 + 1))
	}
	return a
}

// eMask returns the program-chosen mask applied when converting raw
// scratchpad words into the "e" register group, and later reused to mask
// FDIV_M's memory operand the same way (spec §4.11 step 3): bits 0-21
// carry entropy's low 22 bits directly, bits 52-62 carry a fixed
// 0b01100000000 base with the entropy's top 4 bits ORed into bits 4-7 of
// that 11-bit field, positioned at the double's exponent field.
func (p *rxProgram) eMask() [2]uint64 {
	return [2]uint64{
		exponentMask(p.entropy(14)),
		exponentMask(p.entropy(15)),
	}
}

func exponentMask(e uint64) uint64 {
	const base = uint64(0x300) // 0b01100000000
	const mask22 = uint64(1)<<22 - 1
	exponent := base | (e >> 60 << 4)
	exponent <<= 52
	return (e & mask22) | exponent
}

func smallPositiveFloat(e uint64) float64 {
	mantissa := e & ((1 << 52) - 1)
	exponent := ((e >> 59) + 1023) & 0x7FF
	bits := exponent<<52 | mantissa
	return math.Float64frombits(bits)
}

// generateProgram streams a header + 256 instructions from the AES4R
// generator seeded by seed, decodes the instructions, and updates seed in
// place to the generator's final 64 bytes (the next program's seed).
func generateProgram(seed *[64]byte) *rxProgram {
	gen := aesprim.NewGenerator4R(seed[:])
	buf := make([]byte, programBufferSize)
	gen.Fill(buf)

	p := &rxProgram{}
	copy(p.header[:], buf[:programHeaderSize])
	for i := 0; i < programLength; i++ {
		off := programHeaderSize + i*programInstrSize
		p.instructions[i] = decodeInstruction(buf[off : off+programInstrSize])
	}
	copy(seed[:], buf[len(buf)-64:])
	return p
}

func decodeInstruction(data []byte) rxInstruction {
	return rxInstruction{
		opcode: data[0],
		dst:    data[1],
		src:    data[2],
		mod:    data[3],
		imm:    binary.LittleEndian.Uint32(data[4:8]),
	}
}
