package aesprim

// hash1RFinalKeys are the two fixed-key finalization rounds applied
// after the scratchpad has been fully absorbed (spec §4.3: "applies two
// additional fixed-key finalization rounds"). Distinct from the
// generator key schedules so the finalization cannot be confused with
// an ordinary absorb step.
var hash1RFinalKeys = [2][4][16]byte{
	{
		{0xc8, 0xb3, 0xd6, 0x62, 0x03, 0xa1, 0xc1, 0x30, 0x5f, 0xf8, 0x4e, 0x3f, 0x70, 0x9c, 0x92, 0x0a},
		{0x1b, 0x9d, 0xf2, 0xb4, 0x6c, 0x3e, 0x81, 0x44, 0xe5, 0x2c, 0x97, 0x6b, 0x03, 0xaf, 0x18, 0xc6},
		{0x7e, 0x2f, 0x41, 0xd3, 0x98, 0x0c, 0xb5, 0xa6, 0x11, 0x84, 0x4d, 0xf9, 0x52, 0x6a, 0xc3, 0x77},
		{0x34, 0xe0, 0xaf, 0x1c, 0x85, 0x4b, 0x73, 0x0e, 0xd6, 0xf2, 0x19, 0x8a, 0x63, 0xbc, 0x05, 0x9d},
	},
	{
		{0x95, 0x41, 0xd8, 0x2c, 0x1f, 0x66, 0x3a, 0xb9, 0x70, 0x2e, 0x4c, 0x85, 0xd1, 0x07, 0x3b, 0xe4},
		{0x0a, 0x8f, 0x55, 0x6e, 0xb2, 0xd7, 0x41, 0x93, 0xc4, 0x6a, 0x2b, 0x08, 0x97, 0xe1, 0x3d, 0x5c},
		{0x6d, 0x12, 0x8e, 0xa7, 0x4f, 0xd0, 0x91, 0x3b, 0xc8, 0x56, 0x22, 0xf4, 0x0d, 0x79, 0xab, 0x3e},
		{0xe2, 0x39, 0x74, 0xbb, 0x0d, 0x8a, 0x15, 0xc6, 0x52, 0xef, 0x91, 0x3c, 0x08, 0xa4, 0x66, 0xd1},
	},
}

// Hash1R implements the AesHash1R scratchpad fingerprint: the scratchpad
// is absorbed 64 bytes at a time into four lanes (two lanes advanced by
// EncRound, two by DecRound, with the scratchpad chunk itself acting as
// the round key — i.e. the data is the thing being "absorbed", not a
// fixed key), then two more fixed-key finalization rounds are applied to
// each lane before the four lanes are concatenated into the 64-byte
// digest.
func Hash1R(scratchpad []byte) [64]byte {
	var state lanes4 // starts at the all-zero state

	for off := 0; off+64 <= len(scratchpad); off += 64 {
		var chunk lanes4
		chunk.load(scratchpad[off : off+64])
		state[0] = DecRound(state[0], chunk[0])
		state[1] = EncRound(state[1], chunk[1])
		state[2] = DecRound(state[2], chunk[2])
		state[3] = EncRound(state[3], chunk[3])
	}

	for round := 0; round < 2; round++ {
		state[0] = DecRound(state[0], hash1RFinalKeys[round][0])
		state[1] = EncRound(state[1], hash1RFinalKeys[round][1])
		state[2] = DecRound(state[2], hash1RFinalKeys[round][2])
		state[3] = EncRound(state[3], hash1RFinalKeys[round][3])
	}

	var out [64]byte
	state.store(out[:])
	return out
}
