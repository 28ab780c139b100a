// Package ssjit expands cache lines into dataset items by chaining the
// eight superscalar programs a cache carries (internal/superscalar).
// It is the scalar counterpart of the AVX2-packed routine the reference
// implementation JIT-compiles: same per-item algorithm and the same
// eight-program chain, processing one item at a time instead of four
// packed lanes across YMM registers, since Go offers no portable access
// to hand-placed vector registers. The parallelism the original gets
// from SIMD lanes this gets from the worker pool that calls Range
// across disjoint item ranges instead.
package ssjit

import (
	"encoding/binary"

	"github.com/rxhash-go/randomx/internal/superscalar"
)

// Mix-in constants for seeding a dataset item's eight registers from its
// item number, fixed by the RandomX wire format.
const (
	mul0 = 6364136223846793005
	add1 = 9298411001130361340
	add2 = 12065312585734608966
	add3 = 9306329213124626780
	add4 = 5281919268842080866
	add5 = 10536153434571861004
	add6 = 3398623926847679864
	add7 = 9549104520008361294
)

// ItemSize is the size in bytes of one dataset item.
const ItemSize = 64

// CacheLine fetches the 64-byte cache line addressed by registerValue,
// wrapping into the cache's item count as the cache itself dictates.
type CacheLine func(registerValue uint64) []byte

// Item expands a single dataset item into a pre-sized 64-byte out slice.
func Item(itemNumber uint64, programs *[8]*superscalar.Program, fetch CacheLine, out []byte) {
	var rl [superscalar.RegisterCount]uint64
	rl[0] = (itemNumber + 1) * mul0
	rl[1] = rl[0] ^ add1
	rl[2] = rl[0] ^ add2
	rl[3] = rl[0] ^ add3
	rl[4] = rl[0] ^ add4
	rl[5] = rl[0] ^ add5
	rl[6] = rl[0] ^ add6
	rl[7] = rl[0] ^ add7

	registerValue := itemNumber
	for i := 0; i < len(programs); i++ {
		line := fetch(registerValue)
		prog := programs[i]
		superscalar.Run(&rl, prog)
		for q := 0; q < superscalar.RegisterCount; q++ {
			rl[q] ^= binary.LittleEndian.Uint64(line[q*8 : q*8+8])
		}
		registerValue = rl[prog.AddressRegister]
	}

	for q := 0; q < superscalar.RegisterCount; q++ {
		binary.LittleEndian.PutUint64(out[q*8:q*8+8], rl[q])
	}
}

// Range expands count consecutive items starting at startItem into out,
// which must be at least count*ItemSize bytes. This is the entry point a
// dataset-builder worker calls once per popped job.
func Range(startItem uint64, count int, programs *[8]*superscalar.Program, fetch CacheLine, out []byte) {
	for i := 0; i < count; i++ {
		Item(startItem+uint64(i), programs, fetch, out[i*ItemSize:(i+1)*ItemSize])
	}
}
