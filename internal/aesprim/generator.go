package aesprim

// Fixed round-key material, carried over from the teacher's
// aes_generator.go (derived there from Hash512("RandomX AesGenerator1R
// keys") / Hash512("RandomX AesGenerator4R keys 0-3" / "4-7")). Reused
// verbatim here since they are specification-defined constants, not
// teacher-specific logic.
var generator1RKeys = [4][16]byte{
	{0x53, 0xa5, 0xac, 0x6d, 0x09, 0x66, 0x71, 0x62, 0x2b, 0x55, 0xb5, 0xdb, 0x17, 0x49, 0xf4, 0xb4},
	{0x07, 0xaf, 0x7c, 0x6d, 0x0d, 0x71, 0x6a, 0x84, 0x78, 0xd3, 0x25, 0x17, 0x4e, 0xdc, 0xa1, 0x0d},
	{0xf1, 0x62, 0x12, 0x3f, 0xc6, 0x7e, 0x94, 0x9f, 0x4f, 0x79, 0xc0, 0xf4, 0x45, 0xe3, 0x20, 0x3e},
	{0x35, 0x81, 0xef, 0x6a, 0x7c, 0x31, 0xba, 0xb1, 0x88, 0x4c, 0x31, 0x16, 0x54, 0x91, 0x16, 0x49},
}

var generator4RKeys = [8][16]byte{
	{0xdd, 0xaa, 0x21, 0x64, 0xdb, 0x3d, 0x83, 0xd1, 0x2b, 0x6d, 0x54, 0x2f, 0x3f, 0xd2, 0xe5, 0x99},
	{0x50, 0x34, 0x0e, 0xb2, 0x55, 0x3f, 0x91, 0xb6, 0x53, 0x9d, 0xf7, 0x06, 0xe5, 0xcd, 0xdf, 0xa5},
	{0x04, 0xd9, 0x3e, 0x5c, 0xaf, 0x7b, 0x5e, 0x51, 0x9f, 0x67, 0xa4, 0x0a, 0xbf, 0x02, 0x1c, 0x17},
	{0x63, 0x37, 0x62, 0x85, 0x08, 0x5d, 0x8f, 0xe7, 0x85, 0x37, 0x67, 0xcd, 0x91, 0xd2, 0xde, 0xd8},
	{0x73, 0x6f, 0x82, 0xb5, 0xa6, 0xa7, 0xd6, 0xe3, 0x6d, 0x8b, 0x51, 0x3d, 0xb4, 0xff, 0x9e, 0x22},
	{0xf3, 0x6b, 0x56, 0xc7, 0xd9, 0xb3, 0x10, 0x9c, 0x4e, 0x4d, 0x02, 0xe9, 0xd2, 0xb7, 0x72, 0xb2},
	{0xe7, 0xc9, 0x73, 0xf2, 0x8b, 0xa3, 0x65, 0xf7, 0x0a, 0x66, 0xa9, 0x2b, 0xa7, 0xef, 0x3b, 0xf6},
	{0x09, 0xd6, 0x7c, 0x7a, 0xde, 0x39, 0x58, 0x91, 0xfd, 0xd1, 0x06, 0x0c, 0x2d, 0x76, 0xb0, 0xc0},
}

// lanes4 holds the 4x16-byte state shared by the 1R/4R generators: two
// lanes advanced by EncRound, two by DecRound, exactly as spec §4.3
// describes ("two aesenc-style encodes and two aesdec-style decodes with
// fixed lane keys").
type lanes4 [4][16]byte

func (l *lanes4) load(seed []byte) {
	for i := 0; i < 4; i++ {
		copy(l[i][:], seed[i*16:i*16+16])
	}
}

func (l *lanes4) store(dst []byte) {
	for i := 0; i < 4; i++ {
		copy(dst[i*16:i*16+16], l[i][:])
	}
}

// Generator1R is the AesGenerator1R pseudo-random byte stream used to
// seed the scratchpad (Fill1R).
type Generator1R struct {
	state lanes4
	pos   int
}

// NewGenerator1R seeds a Generator1R from a 64-byte seed.
func NewGenerator1R(seed []byte) *Generator1R {
	g := &Generator1R{pos: 64}
	g.state.load(seed)
	return g
}

func (g *Generator1R) step() {
	g.state[0] = DecRound(g.state[0], generator1RKeys[0])
	g.state[1] = EncRound(g.state[1], generator1RKeys[1])
	g.state[2] = DecRound(g.state[2], generator1RKeys[2])
	g.state[3] = EncRound(g.state[3], generator1RKeys[3])
	g.pos = 0
}

// Fill writes len(dst) pseudo-random bytes and, on return, overwrites
// seedOut (which must be 64 bytes) with the generator's final 64-byte
// state, matching the in-place seed update spec §4.3 requires.
func (g *Generator1R) Fill(dst []byte, seedOut []byte) {
	var buf [64]byte
	for written := 0; written < len(dst); {
		if g.pos >= 64 {
			g.step()
		}
		g.state.store(buf[:])
		n := copy(dst[written:], buf[g.pos:])
		g.pos += n
		written += n
	}
	// The seed-out argument always reflects the latest full state,
	// independent of how much of it has been consumed as output.
	g.state.store(seedOut)
}

// Fill1R fills dst with pseudo-random bytes derived from seed (64 bytes)
// and returns the updated 64-byte seed.
func Fill1R(dst []byte, seed []byte) [64]byte {
	g := NewGenerator1R(seed)
	var out [64]byte
	g.Fill(dst, out[:])
	return out
}

// Generator4R is AesGenerator4R: the same lane structure as Generator1R
// but four rounds per 64-byte block, using two independent 4-key
// schedules (keys 0-3 for lanes 0/1, keys 4-7 for lanes 2/3).
type Generator4R struct {
	state lanes4
	pos   int
}

// NewGenerator4R seeds a Generator4R from a 64-byte seed.
func NewGenerator4R(seed []byte) *Generator4R {
	g := &Generator4R{pos: 64}
	g.state.load(seed)
	return g
}

func (g *Generator4R) step() {
	for i := 0; i < 4; i++ {
		g.state[0] = DecRound(g.state[0], generator4RKeys[i])
	}
	for i := 0; i < 4; i++ {
		g.state[1] = EncRound(g.state[1], generator4RKeys[i])
	}
	for i := 4; i < 8; i++ {
		g.state[2] = DecRound(g.state[2], generator4RKeys[i])
	}
	for i := 4; i < 8; i++ {
		g.state[3] = EncRound(g.state[3], generator4RKeys[i])
	}
	g.pos = 0
}

// Fill writes len(dst) pseudo-random bytes, updating the internal state
// in place (used to stream an entire RandomX program body).
func (g *Generator4R) Fill(dst []byte) {
	var buf [64]byte
	for written := 0; written < len(dst); {
		if g.pos >= 64 {
			g.step()
		}
		g.state.store(buf[:])
		n := copy(dst[written:], buf[g.pos:])
		g.pos += n
		written += n
	}
}
