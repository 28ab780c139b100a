// Package argon2d implements Argon2d (data-dependent mode) for RandomX.
// This file contains block compression functions using Blake2b mixing.
package argon2d

const (
	// BlockSize128 is the number of uint64 values in a Block (128 = 1024 bytes / 8)
	BlockSize128 = 128
)

// fillBlock performs Argon2 block compression.
//
// Parameters:
//   - prevBlock: The previous block in the sequence
//   - refBlock: The reference block (chosen by data-dependent indexing)
//   - nextBlock: The output block to fill
//   - withXOR: If true, XOR with existing nextBlock content (used after first pass)
//
// Algorithm:
//  1. R = refBlock XOR prevBlock
//  2. Apply the Blake2b round function once "rowwise" over the 8 groups of
//     16 consecutive words, then once "columnwise" over the 8 reshaped
//     columns built from stride-16 word pairs.
//  3. nextBlock = R (post-mixing) XOR R (pre-mixing), i.e. the feed-forward.
//  4. If withXOR, XOR in the block being overwritten as well.
func fillBlock(prevBlock, refBlock, nextBlock *Block, withXOR bool) {
	var R, Q Block

	R = *refBlock
	R.XOR(prevBlock)
	Q = R

	applyRowwiseRound(&R)
	applyColumnwiseRound(&R)

	R.XOR(&Q)

	if withXOR {
		R.XOR(nextBlock)
	}

	*nextBlock = R
}

// applyRowwiseRound applies the Blake2b round function to each of the 8
// groups of 16 consecutive words in the block.
func applyRowwiseRound(block *Block) {
	for i := 0; i < BlockSize128; i += 16 {
		gRound(block[i : i+16])
	}
}

// applyColumnwiseRound applies the Blake2b round function to the 8
// reshaped columns. Column c (0..7) is built from the word pairs at
// 2*c, 2*c+1 within each of the 8 stride-16 rows — word pairs taken 16
// apart, matching the reference Argon2 compression function's column
// pass.
func applyColumnwiseRound(block *Block) {
	var v [16]uint64
	for c := 0; c < 8; c++ {
		for row := 0; row < 8; row++ {
			v[2*row] = block[16*row+2*c]
			v[2*row+1] = block[16*row+2*c+1]
		}
		gRound(v[:])
		for row := 0; row < 8; row++ {
			block[16*row+2*c] = v[2*row]
			block[16*row+2*c+1] = v[2*row+1]
		}
	}
}
