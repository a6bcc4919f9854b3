package cpu

import (
	"fmt"
	"log"
	"maps"
	"slices"

	"github.com/ezrec/sim85/internal"
)

const (
	MEMORY_SIZE = 0x10000 // Flat memory shared by code, data, and stack.
	SP_RESET    = uint16(0xFFFF)
)

// Cpu is the 8085 execution engine: register file, flags, PC/SP, and a
// flat 64KiB memory, stepped one instruction at a time. Every register
// and memory write wraps to its declared width by construction.
//
// A Cpu is single-owner mutable state; independent instances never
// share storage, and nothing may call into one instance concurrently.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Reg    Registers
	Flags  Flags
	PC     uint16
	SP     uint16
	Mem    [MEMORY_SIZE]uint8
	Halted bool

	Input uint8 // Fixed value loaded by IN; OUT is discarded.

	breakpoint map[uint16]struct{}
	trace      *internal.Ring[TraceEntry]
	stop       bool
}

// State is the externally visible snapshot of a Cpu.
type State struct {
	Reg    Registers
	Flags  Flags
	PC     uint16
	SP     uint16
	Halted bool
}

// StepResult describes one executed (or refused) step.
type StepResult struct {
	Addr    uint16 // Address the opcode was fetched from.
	Opcode  uint8
	Text    string // Decoded instruction text.
	Unknown bool   // Set when the opcode byte has no defined case.
	Halted  bool
}

// NewCpu creates a CPU at power-on defaults.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		breakpoint: map[uint16]struct{}{},
		trace:      internal.NewRing[TraceEntry](TRACE_LIMIT),
	}
	cpu.Reset()

	return
}

// Reset returns to Ready state: registers and flags cleared, memory
// zeroed, SP=FFFF, PC=0000, not halted. Breakpoints survive a reset;
// the trace does not.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Reg = Registers{}
	cpu.Flags = Flags{}
	cpu.PC = 0
	cpu.SP = SP_RESET
	clear(cpu.Mem[:])
	cpu.Halted = false
	cpu.stop = false
	cpu.trace.Reset()
}

// Load writes a program's bytes into memory and points PC at its
// origin. SP and memory outside the written addresses are untouched, so
// incremental loads compose.
func (cpu *Cpu) Load(prog *Program) {
	for addr, value := range prog.Bytes() {
		cpu.Mem[addr] = value
	}
	cpu.PC = prog.Origin

	if cpu.Verbose {
		log.Printf("cpu: loaded %v bytes at %04X", len(prog.Records), prog.Origin)
	}
}

// State returns the full externally visible snapshot.
func (cpu *Cpu) State() State {
	return State{
		Reg:    cpu.Reg,
		Flags:  cpu.Flags,
		PC:     cpu.PC,
		SP:     cpu.SP,
		Halted: cpu.Halted,
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	flagc := func(set bool, c string) string {
		if set {
			return c
		}
		return "-"
	}

	text = fmt.Sprintf("A=%02X BC=%04X DE=%04X HL=%04X\n",
		cpu.Reg.A, cpu.Reg.BC(), cpu.Reg.DE(), cpu.Reg.HL())
	text += fmt.Sprintf("PC=%04X SP=%04X %s%s%s%s%s halted=%v\n",
		cpu.PC, cpu.SP,
		flagc(cpu.Flags.S, "S"), flagc(cpu.Flags.Z, "Z"), flagc(cpu.Flags.AC, "A"),
		flagc(cpu.Flags.P, "P"), flagc(cpu.Flags.CY, "C"), cpu.Halted)

	return
}

// SetMemory writes one memory byte.
func (cpu *Cpu) SetMemory(addr uint16, value uint8) {
	cpu.Mem[addr] = value
}

// Memory reads count bytes starting at addr, wrapping at the top of the
// address space.
func (cpu *Cpu) Memory(addr uint16, count int) (data []uint8) {
	data = make([]uint8, 0, count)
	for range count {
		data = append(data, cpu.Mem[addr])
		addr++
	}
	return
}

// SetBreakpoint registers a break address, checked after each step once
// PC has already moved.
func (cpu *Cpu) SetBreakpoint(addr uint16) {
	cpu.breakpoint[addr] = struct{}{}
}

// ClearBreakpoint removes a break address.
func (cpu *Cpu) ClearBreakpoint(addr uint16) {
	delete(cpu.breakpoint, addr)
}

// Breakpoints returns the registered break addresses in order.
func (cpu *Cpu) Breakpoints() (addrs []uint16) {
	addrs = slices.Sorted(maps.Keys(cpu.breakpoint))
	return
}

// Stop requests that a Run loop stop at its next iteration boundary.
func (cpu *Cpu) Stop() {
	cpu.stop = true
}

// Step fetches, decodes, and executes one instruction, appending a
// trace entry. An opcode with no defined case is reported as unknown
// and skipped without halting; PC simply continues past it. If already
// halted, Step is a no-op returning a halted result.
func (cpu *Cpu) Step() (result StepResult) {
	if cpu.Halted {
		result.Addr = cpu.PC
		result.Halted = true
		return
	}

	addr := cpu.PC
	opcode := cpu.Mem[addr]
	result.Addr = addr
	result.Opcode = opcode

	def := optab[opcode]
	if def == nil {
		cpu.PC = addr + 1
		result.Unknown = true
		result.Text = fmt.Sprintf("?? %02XH", opcode)
	} else {
		lo := cpu.Mem[addr+1]
		hi := cpu.Mem[addr+2]
		cpu.PC = addr + def.size
		def.exec(cpu, lo, hi)
		result.Text = def.text(lo, hi)
	}

	result.Halted = cpu.Halted

	if cpu.Verbose {
		log.Printf("%04X: %v", addr, result.Text)
	}

	cpu.trace.Push(TraceEntry{
		Addr:   addr,
		Opcode: opcode,
		Text:   result.Text,
		Reg:    cpu.Reg,
		Flags:  cpu.Flags,
		PC:     cpu.PC,
		SP:     cpu.SP,
	})

	return
}

// Run steps until halt, a breakpoint, a Stop request, or the step
// budget is exhausted, and returns the count of steps executed. The
// budget is a bounded loop, not divergence protection; a program that
// never halts runs to the budget with Halted still false.
func (cpu *Cpu) Run(maxSteps int) (steps int) {
	cpu.stop = false

	for steps < maxSteps && !cpu.Halted && !cpu.stop {
		cpu.Step()
		steps++

		if _, hit := cpu.breakpoint[cpu.PC]; hit {
			break
		}
	}

	return
}

// reg reads a register operand; REG_M aliases memory at HL.
func (cpu *Cpu) reg(r Reg) (value uint8) {
	switch r {
	case REG_B:
		value = cpu.Reg.B
	case REG_C:
		value = cpu.Reg.C
	case REG_D:
		value = cpu.Reg.D
	case REG_E:
		value = cpu.Reg.E
	case REG_H:
		value = cpu.Reg.H
	case REG_L:
		value = cpu.Reg.L
	case REG_M:
		value = cpu.Mem[cpu.Reg.HL()]
	case REG_A:
		value = cpu.Reg.A
	}
	return
}

// setReg writes a register operand; REG_M aliases memory at HL.
func (cpu *Cpu) setReg(r Reg, value uint8) {
	switch r {
	case REG_B:
		cpu.Reg.B = value
	case REG_C:
		cpu.Reg.C = value
	case REG_D:
		cpu.Reg.D = value
	case REG_E:
		cpu.Reg.E = value
	case REG_H:
		cpu.Reg.H = value
	case REG_L:
		cpu.Reg.L = value
	case REG_M:
		cpu.Mem[cpu.Reg.HL()] = value
	case REG_A:
		cpu.Reg.A = value
	}
}

// pair reads a register pair; encoding 3 is SP.
func (cpu *Cpu) pair(p RegPair) (value uint16) {
	switch p {
	case PAIR_BC:
		value = cpu.Reg.BC()
	case PAIR_DE:
		value = cpu.Reg.DE()
	case PAIR_HL:
		value = cpu.Reg.HL()
	case PAIR_SP:
		value = cpu.SP
	}
	return
}

// setPair writes a register pair; encoding 3 is SP.
func (cpu *Cpu) setPair(p RegPair, value uint16) {
	switch p {
	case PAIR_BC:
		cpu.Reg.SetBC(value)
	case PAIR_DE:
		cpu.Reg.SetDE(value)
	case PAIR_HL:
		cpu.Reg.SetHL(value)
	case PAIR_SP:
		cpu.SP = value
	}
}
