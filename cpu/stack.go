package cpu

// The stack lives in main memory and grows downward from SP. A 16-bit
// push stores the high byte at SP-1 and the low byte at SP-2; pops
// mirror that exactly. SP arithmetic wraps at 16 bits.

func (cpu *Cpu) pushWord(value uint16) {
	cpu.Mem[cpu.SP-1] = uint8(value >> 8)
	cpu.Mem[cpu.SP-2] = uint8(value)
	cpu.SP -= 2
}

func (cpu *Cpu) popWord() (value uint16) {
	value = uint16(cpu.Mem[cpu.SP+1])<<8 | uint16(cpu.Mem[cpu.SP])
	cpu.SP += 2
	return
}

// xthl exchanges HL with the two bytes on top of stack; SP is unmoved.
func (cpu *Cpu) xthl() {
	lo := cpu.Mem[cpu.SP]
	hi := cpu.Mem[cpu.SP+1]
	cpu.Mem[cpu.SP] = cpu.Reg.L
	cpu.Mem[cpu.SP+1] = cpu.Reg.H
	cpu.Reg.L = lo
	cpu.Reg.H = hi
}

// psw packs the accumulator and flags into the processor status word.
func (cpu *Cpu) psw() uint16 {
	return uint16(cpu.Reg.A)<<8 | uint16(cpu.Flags.Byte())
}

// setPsw unpacks a processor status word.
func (cpu *Cpu) setPsw(value uint16) {
	cpu.Reg.A = uint8(value >> 8)
	cpu.Flags.SetByte(uint8(value))
}
