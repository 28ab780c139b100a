package superscalar

import (
	"github.com/rxhash-go/randomx/internal/blake2rng"
	"github.com/rxhash-go/randomx/internal/reciprocal"
)

// maxDecodeCycles bounds how many decode-buffer cycles the simulated
// pipeline runs for before a program is cut short regardless of how busy
// its ports still are.
const maxDecodeCycles = 170

// maxInstructions caps program length independently of the cycle budget,
// since a pathological sequence of single-cycle, eliminated, or otherwise
// cheap instructions could in principle keep decoding for a very long time
// within 170 cycles.
const maxInstructions = 512

// maxRegisterAttempts bounds how many candidate registers the generator
// will draw from the RNG, per slot, before giving up and advancing the
// decode clock to let busy registers free up.
const maxRegisterAttempts = 256

// maxCycleBumps bounds how many times the decode clock may be advanced,
// per slot, while searching for an available register.
const maxCycleBumps = 4

// defaultPatterns, mulLagPattern and mulChainPattern are
// Decode_Buffers[0..5] from the reference generator (superscalar.cpp),
// which in turn transcribes table 6.3.1 of the RandomX spec. Slot order
// within each pattern matters: it is what groupForSlotSize/slotSizeLast3
// are indexed against.
var defaultPatterns = [][]int{
	{4, 8, 4},
	{7, 3, 3, 3},
	{3, 7, 3, 3},
	{4, 9, 3},
}

var mulLagPattern = []int{4, 4, 4, 4}
var mulChainPattern = []int{3, 3, 10}

// rcpPatterns holds Decode_Buffers[0] and Decode_Buffers[3], the two
// patterns IMUL_RCP is allowed to be followed by (its multiplication
// needs a leading 4-byte slot).
var rcpPatterns = [][]int{
	{4, 8, 4},
	{4, 9, 3},
}

// pipeline is the running scheduling state shared across all instructions
// of one program: per-register data-ready cycle and last-writing opcode
// (used to steer away from back-to-back dependent chains that an ASIC
// could shortcut), and per-port next-free cycle.
type pipeline struct {
	rng *blake2rng.Generator

	regLatency   [RegisterCount]int
	regLastGroup [RegisterCount]uint8

	portNextFree [3]int // P0, P1, P5 in that order

	cycle       int
	mulCount    int
	lastOpcode  uint8
}

func portIndex(p port) int {
	switch p {
	case portP0:
		return 0
	case portP1:
		return 1
	case portP5:
		return 2
	default:
		return -1
	}
}

// schedulePort finds the earliest cycle at or after notBefore on any of
// the ports named in candidates, preferring P5 then P0 then P1 when
// cycles tie (P1, the multiplication port, is tried last so it stays free
// for multiplies), reserves it, and returns the cycle it issued at.
func (p *pipeline) schedulePort(candidates [2]port, notBefore int) int {
	prefer := []port{portP5, portP0, portP1}
	best := -1
	bestIdx := -1
	for _, want := range prefer {
		if !candidates[0].has(want) && !candidates[1].has(want) {
			continue
		}
		idx := portIndex(want)
		avail := p.portNextFree[idx]
		if avail < notBefore {
			avail = notBefore
		}
		if best == -1 || avail < best {
			best = avail
			bestIdx = idx
		}
	}
	p.portNextFree[bestIdx] = best + 1
	return best
}

// decodePattern picks the slot-size sequence for the next decode cycle
// based on the previous instruction, in the exact order
// selectDecodeBuffer in the reference tests them: IMULH_R/ISMULH_R must
// be followed by the 3-3-10 buffer (their mov is eliminated, the
// multiply needs a fresh 3-byte slot and the next decode needs a 10-byte
// slot for IMUL_RCP); otherwise if multiplications are lagging behind
// the decode cycle count, force the 4-4-4-4 buffer to saturate the
// multiply port; otherwise IMUL_RCP must be followed by a buffer that
// opens with a 4-byte slot; otherwise pick uniformly among the four
// ordinary buffers.
// decodePattern returns the chosen slot-size sequence and whether it is
// the 4-4-4-4 multiply-lag buffer: the caller needs to know that
// specifically, since it forces IMUL_R into every non-last slot without
// drawing from the RNG (selectInstructionTypeForDecodeBuffer's
// `decode_buffer == Decode_Buffers[4]` case).
func (p *pipeline) decodePattern() ([]int, bool) {
	switch p.lastOpcode {
	case OpIMULH_R, OpISMULH_R:
		return mulChainPattern, false
	}
	if p.mulCount < p.cycle+1 {
		return mulLagPattern, true
	}
	if p.lastOpcode == OpIMUL_RCP {
		return rcpPatterns[p.rng.GetByte()%2], false
	}
	return defaultPatterns[p.rng.GetByte()%uint8(len(defaultPatterns))], false
}

// candidatesForSlot returns the opcodes compatible with a decode slot of
// the given byte size; isLastSlot additionally admits IMULH_R/ISMULH_R
// into a 3-byte slot, since their trailing mov is eliminated at decode and
// does not need a slot of its own. A non-last 4-byte slot of the 4-4-4-4
// buffer is forced to IMUL_R with no RNG draw at all.
func candidatesForSlot(size int, isLastSlot, forceMul bool) []uint8 {
	if size == 4 && forceMul && !isLastSlot {
		return []uint8{OpIMUL_R}
	}
	base := groupForSlotSize(size)
	if size == 3 && isLastSlot {
		out := make([]uint8, 0, len(base)+len(slotSizeLast3))
		out = append(out, base...)
		out = append(out, slotSizeLast3...)
		return out
	}
	return base
}

// pickRegister draws candidate register indices from the RNG until one is
// data-ready (latency <= cycle) and passes reject, bumping the decode
// clock forward when every draw in a round is exhausted. It returns -1 if
// no register becomes available within the attempt/bump budget.
func (p *pipeline) pickRegister(reject func(r uint8) bool) int {
	for bump := 0; bump <= maxCycleBumps; bump++ {
		for attempt := 0; attempt < maxRegisterAttempts; attempt++ {
			r := p.rng.GetByte() % RegisterCount
			if p.regLatency[r] > p.cycle {
				continue
			}
			if reject != nil && reject(r) {
				continue
			}
			return int(r)
		}
		p.cycle++
	}
	return -1
}

// Generate runs the simulated decode/execute pipeline to completion and
// returns the resulting program. rng is consumed in place and never
// reseeded here; the cache draws all eight of its programs from one rng
// in sequence (cache.go's generatePrograms).
func Generate(rng *blake2rng.Generator) *Program {
	p := &pipeline{rng: rng}
	prog := &Program{}

	for p.cycle < maxDecodeCycles && len(prog.Instructions) < maxInstructions {
		pattern, isMulLag := p.decodePattern()
		startCycle := p.cycle

		for slot, size := range pattern {
			isLast := slot == len(pattern)-1
			candidates := candidatesForSlot(size, isLast, isMulLag)
			if len(candidates) == 0 {
				continue
			}
			var opcode uint8
			if len(candidates) == 1 {
				opcode = candidates[0]
			} else {
				opcode = candidates[p.rng.GetByte()%uint8(len(candidates))]
			}
			instr, ok := p.instantiate(opcode, startCycle)
			if !ok {
				continue
			}
			prog.Instructions = append(prog.Instructions, instr)
			p.lastOpcode = opcode
			if opcode == OpIMUL_R || opcode == OpIMULH_R || opcode == OpISMULH_R || opcode == OpIMUL_RCP {
				p.mulCount++
			}
			if len(prog.Instructions) >= maxInstructions {
				break
			}
		}
		p.cycle = startCycle + 1
	}

	prog.AddressRegister = p.chooseAddressRegister()
	return prog
}

// instantiate picks registers and an immediate (if any) for one occurrence
// of opcode, schedules its macro-ops against the port model, and updates
// register bookkeeping. ok is false if no destination register became
// available within budget, meaning the slot goes unused this cycle.
func (p *pipeline) instantiate(opcode uint8, notBefore int) (Instruction, bool) {
	tmpl := templates[opcode]

	dst := p.pickRegister(func(r uint8) bool {
		return p.regLastGroup[r] == opcode
	})
	if dst < 0 {
		return Instruction{}, false
	}

	var src int = -1
	if tmpl.srcOp >= 0 {
		src = p.pickRegister(func(r uint8) bool {
			return int(r) == dst
		})
		if src < 0 {
			return Instruction{}, false
		}
	}

	instr := Instruction{Opcode: opcode, Dst: uint8(dst)}
	if src >= 0 {
		instr.Src = uint8(src)
	}

	if tmpl.hasImm {
		switch opcode {
		case OpIADD_RS:
			instr.Imm = uint32(p.rng.GetByte() % 4)
		case OpIROR_C:
			var shift uint8
			for {
				shift = p.rng.GetByte() % 64
				if shift != 0 {
					break
				}
			}
			instr.Imm = uint32(shift)
		case OpIMUL_RCP:
			var d uint32
			for {
				d = p.rng.GetUint32()
				if !reciprocal.IsZeroOrPowerOfTwo(d) {
					break
				}
			}
			instr.Imm = d
			instr.Reciprocal = reciprocal.Reciprocal(d)
		default:
			instr.Imm = p.rng.GetUint32()
		}
	}

	// IMULH_R and ISMULH_R carry no immediate, but the reference generator
	// still draws a 32-bit source value for them; the draw is kept so the
	// RNG stream stays bit-exact with it.
	if opcode == OpIMULH_R || opcode == OpISMULH_R {
		_ = p.rng.GetUint32()
	}

	opCycle := notBefore
	var resultCycle int
	for i, op := range tmpl.ops {
		if op.isEliminated() {
			continue
		}
		issued := p.schedulePort(op.ports, opCycle)
		opCycle = issued
		if i == tmpl.resultOp {
			resultCycle = issued + op.latency
		}
	}
	if resultCycle == 0 {
		resultCycle = notBefore + tmpl.latency
	}

	p.regLatency[dst] = resultCycle
	p.regLastGroup[dst] = opcode
	return instr, true
}

// chooseAddressRegister returns the register with the longest dependency
// chain, i.e. the one that became ready last: forcing the next dataset
// item's cache lookup through it maximizes the latency an implementation
// must absorb before it can even start that lookup.
func (p *pipeline) chooseAddressRegister() uint8 {
	best := uint8(0)
	for r := uint8(1); r < RegisterCount; r++ {
		if p.regLatency[r] > p.regLatency[best] {
			best = r
		}
	}
	return best
}
