package jit

import (
	"encoding/binary"

	"github.com/rxhash-go/randomx/internal/execmem"
)

// traceRecordSize is the fixed-width encoding of one compiled
// Instruction in the trace buffer: bytecode, dst, src, shift, then the
// four 8-byte fields (imm/reciprocal/mask/condmask; a CBRANCH's jump
// target is not serialized), matching
// the fixed-width "threaded code" record a native JIT would instead
// encode as a call to a resolved handler with bound immediates.
const traceRecordSize = 4 + 8*4

// CompiledTrace is the page-backed, write-once record of a compiled
// program: the same resolved Instruction data Run() consumes, also
// serialized into real RW-then-RX memory so the compile/execute split
// genuinely exercises the executable-memory lifecycle (internal/execmem)
// a native code generator would depend on, rather than simulating it.
type CompiledTrace struct {
	buf *execmem.Buffer
}

// Trace serializes prog into a finalized (read-execute) execmem.Buffer.
// The returned CompiledTrace owns the buffer; call Release when done.
func Trace(prog *Program) (*CompiledTrace, error) {
	size := len(prog.Instructions)*traceRecordSize + 1
	buf, err := execmem.Alloc(size)
	if err != nil {
		return nil, err
	}

	raw := buf.Bytes()
	for i, instr := range prog.Instructions {
		off := i * traceRecordSize
		raw[off] = byte(instr.Bytecode)
		raw[off+1] = instr.Dst
		raw[off+2] = instr.Src
		raw[off+3] = instr.Shift
		binary.LittleEndian.PutUint64(raw[off+4:], uint64(instr.Imm))
		binary.LittleEndian.PutUint64(raw[off+12:], instr.Reciprocal)
		binary.LittleEndian.PutUint64(raw[off+20:], instr.Mask)
		binary.LittleEndian.PutUint64(raw[off+28:], instr.CondMask)
	}

	if err := buf.Finalize(); err != nil {
		return nil, err
	}
	return &CompiledTrace{buf: buf}, nil
}

// Release unmaps the trace's backing pages.
func (t *CompiledTrace) Release() error {
	return t.buf.Release()
}
