// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"io"
	"log"

	"github.com/ezrec/sim85/cpu"
)

// Emulator wires an assembler and a CPU into one assemble/load/run
// surface. The embedded Cpu remains fully accessible for memory and
// breakpoint manipulation.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.Cpu      // The execution engine.

	Program *cpu.Program // The currently loaded program.
}

// NewEmulator creates an emulator with an empty program.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

// Assemble assembles source text and, when it is error free, loads it
// and resets the CPU to the program origin. Assembly errors come back
// joined, one per offending line.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}

	prog, err := asm.Assemble(input)
	if err != nil {
		return
	}
	if !prog.Ok() {
		err = prog.Err()
		return
	}

	emu.Program = prog
	err = emu.Reset()

	return
}

// Reset returns the CPU to power-on defaults and reloads the current
// program at its origin.
func (emu *Emulator) Reset() (err error) {
	if emu.Program == nil {
		err = ErrNoProgram
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Cpu.Load(emu.Program)

	return
}

// Source returns the source text of the instruction at the current PC,
// or "" when PC is outside the loaded program.
func (emu *Emulator) Source() (source string) {
	if emu.Program == nil {
		return
	}

	source, _ = emu.Program.SourceAt(emu.Cpu.PC)
	return
}

// Run steps until halt, breakpoint, stop, or budget exhaustion.
func (emu *Emulator) Run(maxSteps int) (steps int, halted bool) {
	steps = emu.Cpu.Run(maxSteps)
	halted = emu.Cpu.Halted

	if emu.Verbose {
		log.Printf("emu: %v steps, halted=%v", steps, halted)
	}

	return
}
