package superscalar

// port names a CPU execution port in the simplified 3-port model the
// generator schedules against (ports P0, P1 and P5 of the reference
// microarchitecture; P01/P05/P015 are ops that can retire on any of the
// named ports and are assigned greedily P5 first, then P0, then P1).
type port uint8

const (
	portNone port = 0
	portP0   port = 1 << 0
	portP1   port = 1 << 1
	portP5   port = 1 << 2
	portP01  port = portP0 | portP1
	portP05  port = portP0 | portP5
	portP015 port = portP0 | portP1 | portP5
)

func (p port) has(x port) bool { return p&x != 0 }

// macroOp is one decoded micro-op group: a size in encoded bytes (which is
// what the decode buffer patterns are measured in), a latency in cycles,
// and the one or two ports it can retire on. A macro-op with a portNone
// second port is "simple" (single micro-op); a macro-op whose first port
// is portNone is eliminated entirely at decode (a register-rename-only
// move) and never occupies an execution port.
type macroOp struct {
	name    string
	size    int
	latency int
	ports   [2]port
}

func (m macroOp) isEliminated() bool { return m.ports[0] == portNone }

var (
	opAddRR   = macroOp{"add r,r", 3, 1, [2]port{portP015, portNone}}
	opSubRR   = macroOp{"sub r,r", 3, 1, [2]port{portP015, portNone}}
	opXorRR   = macroOp{"xor r,r", 3, 1, [2]port{portP015, portNone}}
	opImulR   = macroOp{"imul r", 3, 4, [2]port{portP1, portP5}}
	opMulR    = macroOp{"mul r", 3, 4, [2]port{portP1, portP5}}
	opMovRR   = macroOp{"mov r,r", 3, 0, [2]port{portNone, portNone}}
	opLeaSIB  = macroOp{"lea r,r+r*s", 4, 1, [2]port{portP01, portNone}}
	opImulRR  = macroOp{"imul r,r", 4, 3, [2]port{portP1, portNone}}
	opRorRI   = macroOp{"ror r,i", 4, 1, [2]port{portP05, portNone}}
	opAddRI7 = macroOp{"add r,i (7)", 7, 1, [2]port{portP015, portNone}}
	opXorRI7 = macroOp{"xor r,i (7)", 7, 1, [2]port{portP015, portNone}}
	opAddRI8 = macroOp{"add r,i (8)", 8, 1, [2]port{portP015, portNone}}
	opXorRI8 = macroOp{"xor r,i (8)", 8, 1, [2]port{portP015, portNone}}
	opAddRI9 = macroOp{"add r,i (9)", 9, 1, [2]port{portP015, portNone}}
	opXorRI9 = macroOp{"xor r,i (9)", 9, 1, [2]port{portP015, portNone}}

	opMovRI64 = macroOp{"mov r,i64", 10, 1, [2]port{portP015, portNone}}
)

// instrTemplate describes, for one opcode, the macro-ops it decodes into
// and which of them reads the source register, writes the destination
// register, and produces the result latency the dependent instructions
// see.
type instrTemplate struct {
	opcode   uint8
	ops      []macroOp
	latency  int
	resultOp int
	dstOp    int
	srcOp    int // -1 if the opcode has no register source operand
	hasImm   bool
}

func (t instrTemplate) size() int {
	n := 0
	for _, op := range t.ops {
		n += op.size
	}
	return n
}

var templates = map[uint8]instrTemplate{
	OpISUB_R:  {OpISUB_R, []macroOp{opSubRR}, 1, 0, 0, 0, false},
	OpIXOR_R:  {OpIXOR_R, []macroOp{opXorRR}, 1, 0, 0, 0, false},
	OpIADD_RS: {OpIADD_RS, []macroOp{opLeaSIB}, 1, 0, 0, 0, true},
	OpIMUL_R:  {OpIMUL_R, []macroOp{opImulRR}, 3, 0, 0, 0, false},
	OpIROR_C:  {OpIROR_C, []macroOp{opRorRI}, 1, 0, 0, -1, true},
	OpIADD_C7: {OpIADD_C7, []macroOp{opAddRI7}, 1, 0, 0, -1, true},
	OpIXOR_C7: {OpIXOR_C7, []macroOp{opXorRI7}, 1, 0, 0, -1, true},
	OpIADD_C8: {OpIADD_C8, []macroOp{opAddRI8}, 1, 0, 0, -1, true},
	OpIXOR_C8: {OpIXOR_C8, []macroOp{opXorRI8}, 1, 0, 0, -1, true},
	OpIADD_C9: {OpIADD_C9, []macroOp{opAddRI9}, 1, 0, 0, -1, true},
	OpIXOR_C9: {OpIXOR_C9, []macroOp{opXorRI9}, 1, 0, 0, -1, true},
	OpIMULH_R: {OpIMULH_R, []macroOp{opMovRR, opMulR, opMovRR}, 3, 2, 0, 1, false},
	OpISMULH_R: {OpISMULH_R, []macroOp{opMovRR, opImulR, opMovRR}, 3, 2, 0, 1, false},
	OpIMUL_RCP: {OpIMUL_RCP, []macroOp{opMovRI64, opImulRR}, 4, 1, 1, -1, true},
}

// groupForSlotSize lists the opcodes whose encoded size matches a decode
// slot, so the generator can pick a compatible instruction for the slot it
// is filling. Slot size 3 admits IMULH_R/ISMULH_R only when it is the last
// slot of the current decode pattern (their trailing mov is eliminated at
// decode and costs no further slot), which the generator checks
// separately; groupForSlotSize(3) lists only the always-valid members.
// Slot size 4 excludes IMUL_R here: the 4-4-4-4 buffer forces IMUL_R into
// every non-last slot on its own (selectDecodeBuffer/
// selectInstructionTypeForDecodeBuffer in the reference), so the ordinary
// two-way choice is {IROR_C, IADD_RS} and the generator special-cases the
// forced branch separately. Order within each slice matters: it is
// indexed by an RNG byte modulo its length, so it must match the
// reference's array order exactly (slot_4/slot_7/slot_8/slot_9 in
// superscalar.cpp) for the same RNG stream to pick the same opcode.
func groupForSlotSize(size int) []uint8 {
	switch size {
	case 3:
		return []uint8{OpISUB_R, OpIXOR_R}
	case 4:
		return []uint8{OpIROR_C, OpIADD_RS}
	case 7:
		return []uint8{OpIXOR_C7, OpIADD_C7}
	case 8:
		return []uint8{OpIXOR_C8, OpIADD_C8}
	case 9:
		return []uint8{OpIXOR_C9, OpIADD_C9}
	case 10:
		return []uint8{OpIMUL_RCP}
	default:
		return nil
	}
}

// slotSizeLast3 lists the extra opcodes that may fill a 3-byte slot when
// that slot is the last one in the buffer's pattern.
var slotSizeLast3 = []uint8{OpIMULH_R, OpISMULH_R}
