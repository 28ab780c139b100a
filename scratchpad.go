package randomx

import (
	"encoding/binary"

	"github.com/rxhash-go/randomx/internal/aesprim"
)

const (
	scratchpadL1Size = 16384   // 16 KiB
	scratchpadL2Size = 262144  // 256 KiB
	scratchpadL3Size = 2097152 // 2 MiB

	scratchpadBodySize = scratchpadL3Size

	// l1Mask/l2Mask/l3Mask back single 8-byte-addressable accesses (the
	// bytecode JIT's memory instructions): 8-byte aligned, full range.
	l1Mask = uint64(scratchpadL1Size-1) &^ 7
	l2Mask = uint64(scratchpadL2Size-1) &^ 7
	l3Mask = uint64(scratchpadL3Size-1) &^ 7

	// regInitMask backs the VM loop header's spMix addressing, which
	// reads/writes a full 64-byte span (8 registers) starting at the
	// masked offset: 64-byte aligned, with 64 bytes of headroom reserved
	// so the span never runs past the end of the body.
	regInitMask = uint64(scratchpadL3Size-64) &^ 63
)

// scratchpad is the 2 MiB working memory a VM reads and writes while
// executing a program.
type scratchpad struct {
	body []byte
}

func newScratchpad() *scratchpad {
	return &scratchpad{body: make([]byte, scratchpadBodySize)}
}

// fill seeds the scratchpad body from a 64-byte seed using fill1R and
// returns the generator's updated state (the VM's next seed).
func (s *scratchpad) fill(seed []byte) [64]byte {
	return aesprim.Fill1R(s.body, seed)
}

func (s *scratchpad) release() {
	zeroBytes(s.body)
}

// ReadUint64 reads a little-endian u64 at offset, which must already be
// mask-aligned by the caller. Exported so *scratchpad satisfies
// internal/jit.Scratchpad.
func (s *scratchpad) ReadUint64(offset uint64) uint64 {
	return binary.LittleEndian.Uint64(s.body[offset : offset+8])
}

func (s *scratchpad) WriteUint64(offset uint64, v uint64) {
	binary.LittleEndian.PutUint64(s.body[offset:offset+8], v)
}

func (s *scratchpad) readBlock64(offset uint64) []byte {
	return s.body[offset : offset+64]
}
