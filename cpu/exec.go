package cpu

import (
	"fmt"
)

// opdef is one entry of the 256-way dispatch table. exec runs with PC
// already advanced past the instruction; lo/hi are the operand bytes
// that followed the opcode, valid per size.
type opdef struct {
	name string // Decoded text; immediate forms carry their trailing separator.
	size uint16 // Total bytes including the opcode.
	exec func(cpu *Cpu, lo, hi uint8)
}

// text renders the decoded instruction, appending the operand bytes for
// immediate and address forms.
func (op *opdef) text(lo, hi uint8) string {
	switch op.size {
	case 2:
		return fmt.Sprintf("%s%02XH", op.name, lo)
	case 3:
		return fmt.Sprintf("%s%04XH", op.name, word(lo, hi))
	}
	return op.name
}

// optab maps every documented opcode byte to its behavior. Undocumented
// bytes stay nil and execute as unrecognized instructions.
var optab [256]*opdef

func word(lo, hi uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// add performs A = A + value (+ carry-in), with carry from the raw sum
// and auxiliary carry out of bit 3.
func (cpu *Cpu) add(value uint8, carry bool) {
	cin := uint8(0)
	if carry {
		cin = 1
	}

	a := cpu.Reg.A
	raw := uint16(a) + uint16(value) + uint16(cin)
	result := uint8(raw)

	cpu.Flags.CY = raw > 0xFF
	cpu.Flags.AC = (a&0x0F)+(value&0x0F)+cin > 0x0F
	cpu.Reg.A = result
	cpu.Flags.setSZP(result)
}

// sub performs A = A - value (- borrow-in), with carry acting as the
// borrow flag and auxiliary carry as the borrow out of bit 3.
func (cpu *Cpu) sub(value uint8, borrow bool) {
	cpu.Reg.A = cpu.subFlags(value, borrow)
}

// subFlags computes A - value - borrow and sets all flags, returning the
// result without storing it. CMP shares this with SUB/SBB.
func (cpu *Cpu) subFlags(value uint8, borrow bool) (result uint8) {
	bin := 0
	if borrow {
		bin = 1
	}

	a := cpu.Reg.A
	raw := int(a) - int(value) - bin
	result = uint8(raw)

	cpu.Flags.CY = raw < 0
	cpu.Flags.AC = int(a&0x0F)-int(value&0x0F)-bin < 0
	cpu.Flags.setSZP(result)
	return
}

// ana performs A = A & value. The 8085 defines AC=1 and CY=0 for ANA
// regardless of the operands.
func (cpu *Cpu) ana(value uint8) {
	result := cpu.Reg.A & value
	cpu.Flags.CY = false
	cpu.Flags.AC = true
	cpu.Reg.A = result
	cpu.Flags.setSZP(result)
}

// xra performs A = A ^ value; CY and AC both clear.
func (cpu *Cpu) xra(value uint8) {
	result := cpu.Reg.A ^ value
	cpu.Flags.CY = false
	cpu.Flags.AC = false
	cpu.Reg.A = result
	cpu.Flags.setSZP(result)
}

// ora performs A = A | value; CY and AC both clear.
func (cpu *Cpu) ora(value uint8) {
	result := cpu.Reg.A | value
	cpu.Flags.CY = false
	cpu.Flags.AC = false
	cpu.Reg.A = result
	cpu.Flags.setSZP(result)
}

// cmp sets the flags of A - value without storing the result.
func (cpu *Cpu) cmp(value uint8) {
	cpu.subFlags(value, false)
}

// inr increments a register; CY is untouched.
func (cpu *Cpu) inr(r Reg) {
	value := cpu.reg(r)
	result := value + 1
	cpu.Flags.AC = value&0x0F == 0x0F
	cpu.setReg(r, result)
	cpu.Flags.setSZP(result)
}

// dcr decrements a register; CY is untouched, AC reports the borrow out
// of bit 3.
func (cpu *Cpu) dcr(r Reg) {
	value := cpu.reg(r)
	result := value - 1
	cpu.Flags.AC = value&0x0F == 0
	cpu.setReg(r, result)
	cpu.Flags.setSZP(result)
}

// dad performs HL = HL + value; only CY is affected.
func (cpu *Cpu) dad(value uint16) {
	raw := uint32(cpu.Reg.HL()) + uint32(value)
	cpu.Flags.CY = raw > 0xFFFF
	cpu.Reg.SetHL(uint16(raw))
}

// daa applies the two-stage decimal adjustment to A: 0x06 when the low
// nibble exceeds 9 or AC was set, then 0x60 (forcing carry) when the
// adjusted high nibble exceeds 9 or CY was set. AC is recomputed from
// the correction actually applied.
func (cpu *Cpu) daa() {
	a := cpu.Reg.A
	correct := uint8(0)
	carry := cpu.Flags.CY

	if a&0x0F > 9 || cpu.Flags.AC {
		correct |= 0x06
	}
	// Widened so a low-nibble correction wrapping past 0xFF still
	// reaches the high-nibble stage.
	if (uint16(a)+uint16(correct))>>4 > 9 || carry {
		correct |= 0x60
		carry = true
	}

	result := a + correct
	cpu.Flags.AC = (a&0x0F)+(correct&0x0F) > 0x0F
	cpu.Flags.CY = carry
	cpu.Reg.A = result
	cpu.Flags.setSZP(result)
}

func init() {
	def := func(opcode uint8, name string, size uint16, exec func(cpu *Cpu, lo, hi uint8)) {
		if optab[opcode] != nil {
			panic(fmt.Sprintf("opcode %02X defined twice", opcode))
		}
		optab[opcode] = &opdef{name: name, size: size, exec: exec}
	}

	// MOV d,s. The hole at 0x76, where MOV M,M would sit, is HLT.
	for d := REG_B; d <= REG_A; d++ {
		for s := REG_B; s <= REG_A; s++ {
			if d == REG_M && s == REG_M {
				continue
			}
			def(0x40|uint8(d)<<3|uint8(s), "MOV "+d.String()+","+s.String(), 1,
				func(cpu *Cpu, _, _ uint8) { cpu.setReg(d, cpu.reg(s)) })
		}
	}
	def(0x76, "HLT", 1, func(cpu *Cpu, _, _ uint8) { cpu.Halted = true })

	// MVI/INR/DCR r
	for r := REG_B; r <= REG_A; r++ {
		def(0x06|uint8(r)<<3, "MVI "+r.String()+",", 2,
			func(cpu *Cpu, lo, _ uint8) { cpu.setReg(r, lo) })
		def(0x04|uint8(r)<<3, "INR "+r.String(), 1,
			func(cpu *Cpu, _, _ uint8) { cpu.inr(r) })
		def(0x05|uint8(r)<<3, "DCR "+r.String(), 1,
			func(cpu *Cpu, _, _ uint8) { cpu.dcr(r) })
	}

	// Register-operand ALU group and its immediate twin.
	alu := []struct {
		regName string
		immName string
		immOp   uint8
		exec    func(cpu *Cpu, value uint8)
	}{
		{"ADD", "ADI", 0xC6, func(cpu *Cpu, value uint8) { cpu.add(value, false) }},
		{"ADC", "ACI", 0xCE, func(cpu *Cpu, value uint8) { cpu.add(value, cpu.Flags.CY) }},
		{"SUB", "SUI", 0xD6, func(cpu *Cpu, value uint8) { cpu.sub(value, false) }},
		{"SBB", "SBI", 0xDE, func(cpu *Cpu, value uint8) { cpu.sub(value, cpu.Flags.CY) }},
		{"ANA", "ANI", 0xE6, (*Cpu).ana},
		{"XRA", "XRI", 0xEE, (*Cpu).xra},
		{"ORA", "ORI", 0xF6, (*Cpu).ora},
		{"CMP", "CPI", 0xFE, (*Cpu).cmp},
	}
	for _, group := range alu {
		base := aluRegBase[group.regName]
		for r := REG_B; r <= REG_A; r++ {
			def(base|uint8(r), group.regName+" "+r.String(), 1,
				func(cpu *Cpu, _, _ uint8) { group.exec(cpu, cpu.reg(r)) })
		}
		def(group.immOp, group.immName+" ", 2,
			func(cpu *Cpu, lo, _ uint8) { group.exec(cpu, lo) })
	}

	// Register-pair group. Encoding 3 is SP here, PSW for PUSH/POP.
	pairName := [4]string{"B", "D", "H", "SP"}
	for p := PAIR_BC; p <= PAIR_SP; p++ {
		def(0x01|uint8(p)<<4, "LXI "+pairName[p]+",", 3,
			func(cpu *Cpu, lo, hi uint8) { cpu.setPair(p, word(lo, hi)) })
		def(0x03|uint8(p)<<4, "INX "+pairName[p], 1,
			func(cpu *Cpu, _, _ uint8) { cpu.setPair(p, cpu.pair(p)+1) })
		def(0x0B|uint8(p)<<4, "DCX "+pairName[p], 1,
			func(cpu *Cpu, _, _ uint8) { cpu.setPair(p, cpu.pair(p)-1) })
		def(0x09|uint8(p)<<4, "DAD "+pairName[p], 1,
			func(cpu *Cpu, _, _ uint8) { cpu.dad(cpu.pair(p)) })
	}
	for p := PAIR_BC; p <= PAIR_DE; p++ {
		def(0x02|uint8(p)<<4, "STAX "+pairName[p], 1,
			func(cpu *Cpu, _, _ uint8) { cpu.Mem[cpu.pair(p)] = cpu.Reg.A })
		def(0x0A|uint8(p)<<4, "LDAX "+pairName[p], 1,
			func(cpu *Cpu, _, _ uint8) { cpu.Reg.A = cpu.Mem[cpu.pair(p)] })
	}
	for p := PAIR_BC; p <= PAIR_HL; p++ {
		def(0xC5|uint8(p)<<4, "PUSH "+pairName[p], 1,
			func(cpu *Cpu, _, _ uint8) { cpu.pushWord(cpu.pair(p)) })
		def(0xC1|uint8(p)<<4, "POP "+pairName[p], 1,
			func(cpu *Cpu, _, _ uint8) { cpu.setPair(p, cpu.popWord()) })
	}
	def(0xF5, "PUSH PSW", 1, func(cpu *Cpu, _, _ uint8) { cpu.pushWord(cpu.psw()) })
	def(0xF1, "POP PSW", 1, func(cpu *Cpu, _, _ uint8) { cpu.setPsw(cpu.popWord()) })

	// Rotates and accumulator/carry specials.
	def(0x07, "RLC", 1, func(cpu *Cpu, _, _ uint8) {
		a := cpu.Reg.A
		cpu.Flags.CY = a&0x80 != 0
		cpu.Reg.A = a<<1 | a>>7
	})
	def(0x0F, "RRC", 1, func(cpu *Cpu, _, _ uint8) {
		a := cpu.Reg.A
		cpu.Flags.CY = a&0x01 != 0
		cpu.Reg.A = a>>1 | a<<7
	})
	def(0x17, "RAL", 1, func(cpu *Cpu, _, _ uint8) {
		a := cpu.Reg.A
		cin := uint8(0)
		if cpu.Flags.CY {
			cin = 1
		}
		cpu.Flags.CY = a&0x80 != 0
		cpu.Reg.A = a<<1 | cin
	})
	def(0x1F, "RAR", 1, func(cpu *Cpu, _, _ uint8) {
		a := cpu.Reg.A
		cin := uint8(0)
		if cpu.Flags.CY {
			cin = 0x80
		}
		cpu.Flags.CY = a&0x01 != 0
		cpu.Reg.A = a>>1 | cin
	})
	def(0x27, "DAA", 1, func(cpu *Cpu, _, _ uint8) { cpu.daa() })
	def(0x2F, "CMA", 1, func(cpu *Cpu, _, _ uint8) { cpu.Reg.A = ^cpu.Reg.A })
	def(0x37, "STC", 1, func(cpu *Cpu, _, _ uint8) { cpu.Flags.CY = true })
	def(0x3F, "CMC", 1, func(cpu *Cpu, _, _ uint8) { cpu.Flags.CY = !cpu.Flags.CY })
	def(0x00, "NOP", 1, func(cpu *Cpu, _, _ uint8) {})

	// Direct memory access.
	def(0x3A, "LDA ", 3, func(cpu *Cpu, lo, hi uint8) { cpu.Reg.A = cpu.Mem[word(lo, hi)] })
	def(0x32, "STA ", 3, func(cpu *Cpu, lo, hi uint8) { cpu.Mem[word(lo, hi)] = cpu.Reg.A })
	def(0x2A, "LHLD ", 3, func(cpu *Cpu, lo, hi uint8) {
		addr := word(lo, hi)
		cpu.Reg.L = cpu.Mem[addr]
		cpu.Reg.H = cpu.Mem[addr+1]
	})
	def(0x22, "SHLD ", 3, func(cpu *Cpu, lo, hi uint8) {
		addr := word(lo, hi)
		cpu.Mem[addr] = cpu.Reg.L
		cpu.Mem[addr+1] = cpu.Reg.H
	})

	// Jump/call/return matrix: condition index n lives in bits 3-5.
	cond := []struct {
		suffix string
		test   func(cpu *Cpu) bool
	}{
		{"NZ", func(cpu *Cpu) bool { return !cpu.Flags.Z }},
		{"Z", func(cpu *Cpu) bool { return cpu.Flags.Z }},
		{"NC", func(cpu *Cpu) bool { return !cpu.Flags.CY }},
		{"C", func(cpu *Cpu) bool { return cpu.Flags.CY }},
		{"PO", func(cpu *Cpu) bool { return !cpu.Flags.P }},
		{"PE", func(cpu *Cpu) bool { return cpu.Flags.P }},
		{"P", func(cpu *Cpu) bool { return !cpu.Flags.S }},
		{"M", func(cpu *Cpu) bool { return cpu.Flags.S }},
	}
	for n, cc := range cond {
		def(0xC2|uint8(n)<<3, "J"+cc.suffix+" ", 3, func(cpu *Cpu, lo, hi uint8) {
			if cc.test(cpu) {
				cpu.PC = word(lo, hi)
			}
		})
		def(0xC4|uint8(n)<<3, "C"+cc.suffix+" ", 3, func(cpu *Cpu, lo, hi uint8) {
			if cc.test(cpu) {
				cpu.pushWord(cpu.PC)
				cpu.PC = word(lo, hi)
			}
		})
		def(0xC0|uint8(n)<<3, "R"+cc.suffix, 1, func(cpu *Cpu, _, _ uint8) {
			if cc.test(cpu) {
				cpu.PC = cpu.popWord()
			}
		})
	}
	def(0xC3, "JMP ", 3, func(cpu *Cpu, lo, hi uint8) { cpu.PC = word(lo, hi) })
	def(0xCD, "CALL ", 3, func(cpu *Cpu, lo, hi uint8) {
		cpu.pushWord(cpu.PC)
		cpu.PC = word(lo, hi)
	})
	def(0xC9, "RET", 1, func(cpu *Cpu, _, _ uint8) { cpu.PC = cpu.popWord() })
	for n := uint8(0); n < 8; n++ {
		def(0xC7|n<<3, fmt.Sprintf("RST %d", n), 1, func(cpu *Cpu, _, _ uint8) {
			cpu.pushWord(cpu.PC)
			cpu.PC = uint16(n) * 8
		})
	}
	def(0xE9, "PCHL", 1, func(cpu *Cpu, _, _ uint8) { cpu.PC = cpu.Reg.HL() })
	def(0xF9, "SPHL", 1, func(cpu *Cpu, _, _ uint8) { cpu.SP = cpu.Reg.HL() })
	def(0xE3, "XTHL", 1, func(cpu *Cpu, _, _ uint8) { cpu.xthl() })
	def(0xEB, "XCHG", 1, func(cpu *Cpu, _, _ uint8) {
		de := cpu.Reg.DE()
		cpu.Reg.SetDE(cpu.Reg.HL())
		cpu.Reg.SetHL(de)
	})

	// I/O and interrupt surface: accepted, not wired to devices.
	def(0xDB, "IN ", 2, func(cpu *Cpu, _, _ uint8) { cpu.Reg.A = cpu.Input })
	def(0xD3, "OUT ", 2, func(cpu *Cpu, _, _ uint8) {})
	def(0xF3, "DI", 1, func(cpu *Cpu, _, _ uint8) {})
	def(0xFB, "EI", 1, func(cpu *Cpu, _, _ uint8) {})
	def(0x20, "RIM", 1, func(cpu *Cpu, _, _ uint8) {})
	def(0x30, "SIM", 1, func(cpu *Cpu, _, _ uint8) {})
}
