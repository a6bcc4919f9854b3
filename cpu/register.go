package cpu

// Reg is one of the eight register encodings used by the MOV/MVI/ALU
// instruction groups. REG_M is not storage; it addresses the memory byte
// at the address held in the HL pair.
type Reg uint8

//go:generate go tool stringer -linecomment -type=Reg
const (
	REG_B = Reg(0) // B
	REG_C = Reg(1) // C
	REG_D = Reg(2) // D
	REG_E = Reg(3) // E
	REG_H = Reg(4) // H
	REG_L = Reg(5) // L
	REG_M = Reg(6) // M
	REG_A = Reg(7) // A
)

// RegPair is a 16-bit register pair encoding. Encoding 3 is SP for the
// LXI/INX/DCX/DAD group and PSW for PUSH/POP.
type RegPair uint8

const (
	PAIR_BC  = RegPair(0)
	PAIR_DE  = RegPair(1)
	PAIR_HL  = RegPair(2)
	PAIR_SP  = RegPair(3)
	PAIR_PSW = RegPair(3)
)

// Registers is the 8085 general register file.
type Registers struct {
	A uint8
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8
	L uint8
}

// BC returns the B:C pair as a 16-bit value.
func (reg *Registers) BC() uint16 {
	return uint16(reg.B)<<8 | uint16(reg.C)
}

// SetBC sets the B:C pair from a 16-bit value.
func (reg *Registers) SetBC(value uint16) {
	reg.B = uint8(value >> 8)
	reg.C = uint8(value)
}

// DE returns the D:E pair as a 16-bit value.
func (reg *Registers) DE() uint16 {
	return uint16(reg.D)<<8 | uint16(reg.E)
}

// SetDE sets the D:E pair from a 16-bit value.
func (reg *Registers) SetDE(value uint16) {
	reg.D = uint8(value >> 8)
	reg.E = uint8(value)
}

// HL returns the H:L pair as a 16-bit value.
func (reg *Registers) HL() uint16 {
	return uint16(reg.H)<<8 | uint16(reg.L)
}

// SetHL sets the H:L pair from a 16-bit value.
func (reg *Registers) SetHL(value uint16) {
	reg.H = uint8(value >> 8)
	reg.L = uint8(value)
}
