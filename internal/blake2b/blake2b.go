// Package blake2b provides the fixed-size and variable-length Blake2b-512
// hashing primitives RandomX builds everything else on top of (cache
// initialization, program entropy, scratchpad seeding, final hash
// compression).
//
// The fixed-size path is a thin wrapper over golang.org/x/crypto/blake2b,
// which already implements RFC 7693 bit-exactly. The variable-length
// extension used by Argon2d cache initialization is RandomX-specific and
// is implemented directly on top of it.
package blake2b

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Sum512 computes the 64-byte Blake2b-512 hash of data.
func Sum512(data []byte) [64]byte {
	return blake2b.Sum512(data)
}

// Sum256 computes the 32-byte Blake2b-256 hash of data.
func Sum256(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// Hash computes a Blake2b hash of data with an arbitrary output size in
// [1, 64]. RandomX never keys Blake2b, so the key parameter is omitted
// from the contract surface (spec §4.1).
func Hash(output []byte, data []byte) error {
	if len(output) == 0 || len(output) > 64 {
		return fmt.Errorf("blake2b: invalid output size %d: %w", len(output), errInvalidArgument)
	}
	if len(data) == 0 {
		return fmt.Errorf("blake2b: empty input: %w", errInvalidArgument)
	}
	h, err := blake2b.New(len(output), nil)
	if err != nil {
		return fmt.Errorf("blake2b: %w", err)
	}
	h.Write(data)
	copy(output, h.Sum(nil))
	return nil
}

var errInvalidArgument = fmt.Errorf("invalid argument")

// VariableLength implements the Argon2d-flavored variable-length Blake2b
// extension (spec §4.1): the first 64 bytes of output are
// Blake2b-512(len(output) as u32 LE || input); each subsequent 64-byte
// block is Blake2b-512 of the *previous* 64-byte block; the final block
// is sized to fit the remainder exactly.
//
// This is RandomX's own H' variant, not the halved-output Argon2 H' from
// RFC 9106 — it chains whole 64-byte digests rather than keeping only the
// first half of each one, matching spec.md's literal description.
func VariableLength(input []byte, outLen int) ([]byte, error) {
	if outLen <= 0 {
		return nil, fmt.Errorf("blake2b: invalid output length %d: %w", outLen, errInvalidArgument)
	}

	prefixed := make([]byte, 4+len(input))
	binary.LittleEndian.PutUint32(prefixed, uint32(outLen))
	copy(prefixed[4:], input)

	out := make([]byte, outLen)

	if outLen <= 64 {
		if err := Hash(out, prefixed); err != nil {
			return nil, err
		}
		return out, nil
	}

	block := Sum512(prefixed)
	written := 0
	for written < outLen {
		remaining := outLen - written
		if remaining >= 64 {
			copy(out[written:], block[:])
			written += 64
			if written < outLen {
				block = Sum512(block[:])
			}
			continue
		}
		// Final, undersized block: a fresh Blake2b call sized to fit exactly.
		tail := make([]byte, remaining)
		if err := Hash(tail, block[:]); err != nil {
			return nil, err
		}
		copy(out[written:], tail)
		written += remaining
	}
	return out, nil
}
