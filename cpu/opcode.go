package cpu

// Encoding tables for the assembler. Register and register-pair operands
// are folded into the opcode arithmetically (MOV = 0x40|d<<3|s and so on)
// rather than through per-combination lookup keys, so the group bases
// below are the entire encoding surface.

// regIndex resolves a register operand name to its encoding.
var regIndex = map[string]Reg{}

func init() {
	for r := REG_B; r <= REG_A; r++ {
		regIndex[r.String()] = r
	}
}

// pairIndex resolves a register-pair operand for the LXI/INX/DCX/DAD
// group; pushPairIndex is the PUSH/POP variant where encoding 3 is PSW.
var pairIndex = map[string]RegPair{
	"B":  PAIR_BC,
	"D":  PAIR_DE,
	"H":  PAIR_HL,
	"SP": PAIR_SP,
}

var pushPairIndex = map[string]RegPair{
	"B":   PAIR_BC,
	"D":   PAIR_DE,
	"H":   PAIR_HL,
	"PSW": PAIR_PSW,
}

// aluRegBase holds the opcode base for the single-register ALU group;
// the register encoding is added in the low three bits.
var aluRegBase = map[string]uint8{
	"ADD": 0x80,
	"ADC": 0x88,
	"SUB": 0x90,
	"SBB": 0x98,
	"ANA": 0xA0,
	"XRA": 0xA8,
	"ORA": 0xB0,
	"CMP": 0xB8,
}

// pairBase holds the opcode base for the register-pair group; the pair
// encoding is shifted into bits 4-5.
var pairBase = map[string]uint8{
	"LXI":  0x01,
	"STAX": 0x02,
	"INX":  0x03,
	"DAD":  0x09,
	"LDAX": 0x0A,
	"DCX":  0x0B,
	"POP":  0xC1,
	"PUSH": 0xC5,
}

// imm8Opcode holds the fixed opcodes taking one 8-bit immediate.
var imm8Opcode = map[string]uint8{
	"ADI": 0xC6,
	"ACI": 0xCE,
	"SUI": 0xD6,
	"SBI": 0xDE,
	"ANI": 0xE6,
	"XRI": 0xEE,
	"ORI": 0xF6,
	"CPI": 0xFE,
	"OUT": 0xD3,
	"IN":  0xDB,
}

// addrOpcode holds the fixed opcodes taking one 16-bit address, which
// may be a literal or a label.
var addrOpcode = map[string]uint8{
	"JMP":  0xC3,
	"JNZ":  0xC2,
	"JZ":   0xCA,
	"JNC":  0xD2,
	"JC":   0xDA,
	"JPO":  0xE2,
	"JPE":  0xEA,
	"JP":   0xF2,
	"JM":   0xFA,
	"CALL": 0xCD,
	"CNZ":  0xC4,
	"CZ":   0xCC,
	"CNC":  0xD4,
	"CC":   0xDC,
	"CPO":  0xE4,
	"CPE":  0xEC,
	"CP":   0xF4,
	"CM":   0xFC,
	"LDA":  0x3A,
	"STA":  0x32,
	"LHLD": 0x2A,
	"SHLD": 0x22,
}

// bareOpcode holds the operand-free instructions emitted as-is.
var bareOpcode = map[string]uint8{
	"NOP":  0x00,
	"RLC":  0x07,
	"RRC":  0x0F,
	"RAL":  0x17,
	"RAR":  0x1F,
	"RIM":  0x20,
	"DAA":  0x27,
	"CMA":  0x2F,
	"SIM":  0x30,
	"STC":  0x37,
	"CMC":  0x3F,
	"HLT":  0x76,
	"RNZ":  0xC0,
	"RZ":   0xC8,
	"RET":  0xC9,
	"RNC":  0xD0,
	"RC":   0xD8,
	"RPO":  0xE0,
	"RPE":  0xE8,
	"RP":   0xF0,
	"RM":   0xF8,
	"XTHL": 0xE3,
	"PCHL": 0xE9,
	"XCHG": 0xEB,
	"DI":   0xF3,
	"SPHL": 0xF9,
	"EI":   0xFB,
}

// sizeOf computes a line's instruction size in bytes for pass 1 address
// accounting. Unknown mnemonics size as 1 byte; the real error surfaces
// during pass 2 encoding.
func sizeOf(mnemonic, operand string) (size uint16) {
	size = 1

	switch {
	case mnemonic == "DB":
		size = uint16(len(splitValues(operand)))
	case mnemonic == "DW":
		size = 2 * uint16(len(splitValues(operand)))
	case mnemonic == "MVI":
		size = 2
	case mnemonic == "LXI":
		size = 3
	default:
		if _, ok := imm8Opcode[mnemonic]; ok {
			size = 2
		} else if _, ok := addrOpcode[mnemonic]; ok {
			size = 3
		}
	}

	return
}
