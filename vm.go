package randomx

import (
	"encoding/binary"
	"math"

	"github.com/rxhash-go/randomx/internal/aesprim"
	"github.com/rxhash-go/randomx/internal/blake2b"
	"github.com/rxhash-go/randomx/internal/jit"
	"github.com/rxhash-go/randomx/internal/ssjit"
)

// virtualMachine drives one hash computation: it owns a scratchpad and a
// register file, and borrows a dataset (fast mode) or cache (light mode)
// it never mutates.
type virtualMachine struct {
	pad  *scratchpad
	seed [64]byte

	ds *dataset
	c  *cache

	state jit.State
}

func newVM() *virtualMachine {
	return &virtualMachine{pad: newScratchpad()}
}

func (vm *virtualMachine) release() {
	vm.pad.release()
	zeroBytes(vm.seed[:])
}

// reset seeds the VM from input and binds it to a dataset (fast mode) or
// cache (light mode) for this hash.
func (vm *virtualMachine) reset(input []byte, ds *dataset, c *cache) {
	vm.ds = ds
	vm.c = c
	vm.state = jit.State{}
	vm.seed = blake2b.Sum512(input)
	vm.pad.fill(vm.seed[:])
}

// datasetItem writes the 64-byte dataset item at index into out,
// computed on the fly from the cache in light mode or read directly from
// the precomputed dataset in fast mode.
func (vm *virtualMachine) datasetItem(index uint64, out []byte) {
	if vm.ds != nil {
		copy(out, vm.ds.getItem(index%datasetItems))
		return
	}
	fetch := func(rv uint64) []byte {
		return vm.c.getItem(uint32(rv % uint64(cacheItems)))
	}
	ssjit.Item(index%datasetItems, &vm.c.programs, fetch, out)
}

// run executes the 8-program chain (spec §4.11) and returns the final
// 32-byte hash.
func (vm *virtualMachine) run() [32]byte {
	var memMx, memMa uint64

	for i := 0; i < datasetProgramCount; i++ {
		rp := generateProgram(&vm.seed)
		compiled := jit.Compile(toRawInstructions(rp))
		readReg := rp.readReg()
		datasetOffset := rp.datasetOffset()
		eMask := rp.eMask()
		vm.state.A = rp.aGroup()
		vm.state.EMask = eMask

		var spAddrMx, spAddrMa uint64
		var prefetchItem, readItem [64]byte
		for iter := 0; iter < programIterations; iter++ {
			spMix := vm.state.R[readReg[0]] ^ vm.state.R[readReg[1]]
			spAddrMx ^= spMix
			spAddrMx &= regInitMask
			spAddrMa ^= spMix >> 32
			spAddrMa &= regInitMask

			for r := 0; r < 8; r++ {
				vm.state.R[r] ^= vm.pad.ReadUint64(spAddrMx + uint64(r)*8)
			}
			for r := 0; r < 4; r++ {
				lo, hi := packedI32ToFloat64(vm.pad.ReadUint64(spAddrMa + uint64(r)*8))
				vm.state.F[r][0], vm.state.F[r][1] = lo, hi
			}
			for r := 0; r < 4; r++ {
				word := vm.pad.ReadUint64(spAddrMa + uint64(4+r)*8)
				vm.state.E[r][0] = convertEValue(word, eMask[0])
				vm.state.E[r][1] = convertEValue(word, eMask[1])
			}

			jit.Run(&vm.state, compiled, vm.pad)

			memMx ^= vm.state.R[readReg[2]] ^ vm.state.R[readReg[3]]
			memMx &^= 63
			vm.datasetItem((datasetOffset+memMx)/64, prefetchItem[:]) // prefetch has no effect in Go; fetched for parity with the reference trace
			vm.datasetItem((datasetOffset+memMa)/64, readItem[:])
			memMx, memMa = memMa, memMx

			for r := 0; r < 8; r++ {
				vm.state.R[r] ^= binary.LittleEndian.Uint64(readItem[r*8 : r*8+8])
			}

			for r := 0; r < 8; r++ {
				vm.pad.WriteUint64(spAddrMa+uint64(r)*8, vm.state.R[r])
			}
			for r := 0; r < 4; r++ {
				vm.state.F[r][0] = xorFloat64Bits(vm.state.F[r][0], vm.state.E[r][0])
				vm.state.F[r][1] = xorFloat64Bits(vm.state.F[r][1], vm.state.E[r][1])
				writePackedFloat(vm.pad, spAddrMx+uint64(r)*16, vm.state.F[r][0], vm.state.F[r][1])
			}

			spAddrMx, spAddrMa = 0, 0
		}

		if i < datasetProgramCount-1 {
			vm.seed = blake2b.Sum512(registerFileBytes(&vm.state))
		}
	}

	fingerprint := aesprim.Hash1R(vm.pad.body)
	for r := 0; r < 4; r++ {
		vm.state.A[r][0] = math.Float64frombits(binary.LittleEndian.Uint64(fingerprint[r*16 : r*16+8]))
		vm.state.A[r][1] = math.Float64frombits(binary.LittleEndian.Uint64(fingerprint[r*16+8 : r*16+16]))
	}

	digest := blake2b.Sum512(registerFileBytes(&vm.state))
	var out [32]byte
	copy(out[:], digest[:32])
	return out
}

// toRawInstructions converts a generated program's decoded instructions
// into the form internal/jit.Compile expects.
func toRawInstructions(rp *rxProgram) []jit.RawInstruction {
	raw := make([]jit.RawInstruction, programLength)
	for i, instr := range rp.instructions {
		raw[i] = jit.RawInstruction{
			Opcode: instr.opcode,
			Dst:    instr.dst,
			Src:    instr.src,
			Mod:    instr.mod,
			Imm:    instr.imm,
		}
	}
	return raw
}

// packedI32ToFloat64 reinterprets an 8-byte scratchpad word as two
// signed 32-bit integers and converts each to float64 (spec §4.11 step
// 3, the f[] register load).
func packedI32ToFloat64(word uint64) (float64, float64) {
	lo := int32(word)
	hi := int32(word >> 32)
	return float64(lo), float64(hi)
}

// eMantissaMask keeps the low 56 bits of a converted "e"/FDIV_M operand
// value (52 mantissa bits plus 4 extra exponent bits), letting the
// program-chosen eMask (program.go's exponentMask) carry the rest; see
// convertEValue.
const eMantissaMask = uint64(1)<<56 - 1

// convertEValue applies a program-chosen mask to a raw scratchpad word
// (spec §4.11 step 3, the e[] register load): AND with eMantissaMask,
// then OR with mask. FDIV_M applies the same transform to its already
// int32-converted memory operand before dividing (bytecodecompiler.cpp's
// fdivm_cmpl: vpand against the mantissa mask, vpor against e_mask).
func convertEValue(word uint64, mask uint64) float64 {
	bits := word&eMantissaMask | mask
	return math.Float64frombits(bits)
}

func xorFloat64Bits(a, b float64) float64 {
	return math.Float64frombits(math.Float64bits(a) ^ math.Float64bits(b))
}

func writePackedFloat(pad *scratchpad, offset uint64, lo, hi float64) {
	pad.WriteUint64(offset, math.Float64bits(lo))
	pad.WriteUint64(offset+8, math.Float64bits(hi))
}

// registerFileBytes serializes the integer and float register groups
// into the byte layout Blake2b hashes between programs and at the end.
func registerFileBytes(state *jit.State) []byte {
	buf := make([]byte, 0, 8*8+4*16*3)
	var tmp [8]byte
	for _, r := range state.R {
		binary.LittleEndian.PutUint64(tmp[:], r)
		buf = append(buf, tmp[:]...)
	}
	for _, group := range [][4][2]float64{state.F, state.E, state.A} {
		for _, pair := range group {
			binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(pair[0]))
			buf = append(buf, tmp[:]...)
			binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(pair[1]))
			buf = append(buf, tmp[:]...)
		}
	}
	return buf
}
