// Package blake2rng implements the Blake2b-seeded byte/word stream used
// exclusively by the superscalar program generator (spec §4.2). It is not
// a general-purpose PRNG: its rehash-in-place behavior and 60-byte seed
// truncation are part of RandomX's bit-exact contract, so they are kept
// even though they look unusual in isolation.
package blake2rng

import (
	"encoding/binary"

	"github.com/rxhash-go/randomx/internal/blake2b"
)

// Generator is a deterministic byte stream seeded from (seed, nonce).
//
// Construction: seed is copied into a 64-byte state (truncated to the
// first 60 bytes), the 4-byte little-endian nonce follows in bytes 60-63,
// and the state is immediately rehashed with Blake2b-512 into itself.
type Generator struct {
	state [64]byte
	pos   int
}

// New creates a Generator from an arbitrary-length seed and a nonce.
func New(seed []byte, nonce uint32) *Generator {
	g := &Generator{}

	n := len(seed)
	if n > 60 {
		n = 60
	}
	copy(g.state[:60], seed[:n])
	binary.LittleEndian.PutUint32(g.state[60:64], nonce)

	g.state = blake2b.Sum512(g.state[:])
	g.pos = 0
	return g
}

// rehash discards the remainder of the current state and rehashes it in
// place, resetting the read position to 0.
func (g *Generator) rehash() {
	g.state = blake2b.Sum512(g.state[:])
	g.pos = 0
}

// GetByte returns the next pseudo-random byte.
func (g *Generator) GetByte() uint8 {
	if g.pos >= 64 {
		g.rehash()
	}
	b := g.state[g.pos]
	g.pos++
	return b
}

// GetUint32 returns the next four bytes as a little-endian uint32. If the
// remaining state cannot satisfy the request, the full state is rehashed
// first (not byte-by-byte), matching the reference generator.
func (g *Generator) GetUint32() uint32 {
	if g.pos+4 > 64 {
		g.rehash()
	}
	v := binary.LittleEndian.Uint32(g.state[g.pos : g.pos+4])
	g.pos += 4
	return v
}
