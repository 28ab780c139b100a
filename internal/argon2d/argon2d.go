// Package argon2d implements Argon2d (data-dependent mode) for RandomX.
// This file contains the public API and initialization functions.
package argon2d

import (
	"encoding/binary"
	"fmt"

	"github.com/rxhash-go/randomx/internal/blake2b"
)

const (
	// Argon2Version is the version number (0x13 = 19 decimal)
	Argon2Version = 0x13

	// Argon2TypeD is the Argon2d type identifier (0 = data-dependent)
	Argon2TypeD = 0

	// CacheMemoryBlocks is the number of 1024-byte blocks in the RandomX
	// cache (262144 blocks * 1024 bytes = 256 MiB).
	CacheMemoryBlocks = 262144

	// CacheIterations is the number of Argon2d passes used for the cache.
	CacheIterations = 3

	// CacheLanes is the parallelism degree (RandomX always runs Argon2d
	// single-threaded for cache construction).
	CacheLanes = 1

	// minSaltLength is the minimum accepted salt length.
	minSaltLength = 8
)

// cacheSalt is the fixed 8-byte salt RandomX uses for cache construction,
// distinct from the key (which is passed as the password).
var cacheSalt = []byte("RandomX\x03")

// initialHash computes H0, the initial hash for Argon2d.
//
// H0 = Blake2b-512(parallelism, tagLength, memory, timeCost, version, type,
//
//	len(password), password, len(salt), salt,
//	len(secret), secret, len(data), data)
//
// All multi-byte integers are encoded as little-endian uint32.
func initialHash(lanes, tagLength, memory, timeCost uint32,
	password, salt, secret, data []byte) [64]byte {

	inputSize := 10*4 + len(password) + len(salt) + len(secret) + len(data)
	input := make([]byte, inputSize)

	offset := 0
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(input[offset:], v)
		offset += 4
	}
	putField := func(b []byte) {
		putU32(uint32(len(b)))
		offset += copy(input[offset:], b)
	}

	putU32(lanes)
	putU32(tagLength)
	putU32(memory)
	putU32(timeCost)
	putU32(Argon2Version)
	putU32(Argon2TypeD)
	putField(password)
	putField(salt)
	putField(secret)
	putField(data)

	return blake2b.Sum512(input[:offset])
}

// initializeMemory fills the first two blocks of each lane from H0 using
// the variable-length Blake2b extension H'.
func initializeMemory(memory []Block, lanes uint32, h0 [64]byte) error {
	laneLength := uint32(len(memory)) / lanes

	input := make([]byte, 72) // H0 (64) || block index (4) || lane index (4)
	copy(input[0:64], h0[:])

	for lane := uint32(0); lane < lanes; lane++ {
		binary.LittleEndian.PutUint32(input[64:68], 0)
		binary.LittleEndian.PutUint32(input[68:72], lane)
		block0Bytes, err := blake2b.VariableLength(input, BlockSize)
		if err != nil {
			return fmt.Errorf("argon2d: H'(block 0): %w", err)
		}
		if err := memory[lane*laneLength].FromBytes(block0Bytes); err != nil {
			return err
		}

		binary.LittleEndian.PutUint32(input[64:68], 1)
		block1Bytes, err := blake2b.VariableLength(input, BlockSize)
		if err != nil {
			return fmt.Errorf("argon2d: H'(block 1): %w", err)
		}
		if err := memory[lane*laneLength+1].FromBytes(block1Bytes); err != nil {
			return err
		}
	}
	return nil
}

// Argon2d computes the Argon2d hash (data-dependent mode).
//
// When tagLength is 0, no final tag is produced: the returned slice is
// the raw filled memory (memorySizeKB*1024 bytes), matching RandomX's
// cache-construction use of Argon2d where the cache *is* the output.
// When tagLength is non-zero, the filled memory is reduced with the
// variable-length Blake2b extension to exactly tagLength bytes.
func Argon2d(password, salt []byte, timeCost, memorySizeKB, lanes, tagLength uint32) ([]byte, error) {
	if len(salt) < minSaltLength {
		return nil, fmt.Errorf("argon2d: salt too short: got %d bytes, want at least %d", len(salt), minSaltLength)
	}
	if memorySizeKB == 0 || memorySizeKB%lanes != 0 {
		return nil, fmt.Errorf("argon2d: invalid memory size %d for %d lanes", memorySizeKB, lanes)
	}

	h0 := initialHash(lanes, tagLength, memorySizeKB, timeCost, password, salt, nil, nil)

	memory := make([]Block, memorySizeKB)
	if err := initializeMemory(memory, lanes, h0); err != nil {
		return nil, err
	}

	fillMemory(memory, timeCost, lanes)

	if tagLength == 0 {
		out := make([]byte, len(memory)*BlockSize)
		for i := range memory {
			copy(out[i*BlockSize:], memory[i].ToBytes())
		}
		return out, nil
	}

	finalBlock := memory[0]
	laneLength := uint32(len(memory)) / lanes
	for i := uint32(1); i < laneLength; i++ {
		finalBlock.XOR(&memory[i])
	}
	return blake2b.VariableLength(finalBlock.ToBytes(), int(tagLength))
}

// Argon2dCache generates a RandomX cache using Argon2d with RandomX's
// fixed parameters (parallelism=1, memory_blocks=262144, iterations=3,
// version=0x13, type=0, tag_length=0, fixed 8-byte salt). The key is
// used as the Argon2d password. The returned slice is 256 MiB
// (CacheMemoryBlocks * 1024 bytes).
func Argon2dCache(key []byte) ([]byte, error) {
	return Argon2d(key, cacheSalt, CacheIterations, CacheMemoryBlocks, CacheLanes, 0)
}
