package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/sim85/cpu"
)

const addProgram = `
; Add two numbers and store the result.
	ORG 0000H
	MVI A,05H
	MVI B,03H
	ADD B
	STA 2050H
	HLT
`

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.NewReader(addProgram))
	assert.NoError(err)

	steps, halted := emu.Run(1000)
	assert.Equal(5, steps)
	assert.True(halted)

	assert.Equal(uint8(0x08), emu.Cpu.Reg.A)
	assert.Equal([]uint8{0x08}, emu.Cpu.Memory(0x2050, 1))

	state := emu.Cpu.State()
	assert.True(state.Halted)
	assert.Equal(uint16(0xFFFF), state.SP)
}

func TestEmulator_AssembleErrors(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.NewReader("MVI A,05H\nFOO B\nMVI Q,01H\n"))
	assert.Error(err)

	var le *cpu.ErrLine
	assert.True(errors.As(err, &le))

	// A failed assembly does not replace the loaded program.
	assert.Equal(0, len(emu.Program.Records))
}

func TestEmulator_Reset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.NewReader("ORG 0100H\nMVI A,01H\nHLT\n"))
	assert.NoError(err)
	assert.Equal(uint16(0x0100), emu.Cpu.PC)

	_, halted := emu.Run(1000)
	assert.True(halted)
	assert.Equal(uint8(0x01), emu.Cpu.Reg.A)

	// Reset reloads at the origin; a second run repeats the first.
	err = emu.Reset()
	assert.NoError(err)
	assert.Equal(uint16(0x0100), emu.Cpu.PC)
	assert.Equal(uint8(0x00), emu.Cpu.Reg.A)
	assert.False(emu.Cpu.Halted)

	steps, halted := emu.Run(1000)
	assert.Equal(2, steps)
	assert.True(halted)
	assert.Equal(uint8(0x01), emu.Cpu.Reg.A)
}

func TestEmulator_NoProgram(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = nil

	err := emu.Reset()
	assert.ErrorIs(err, ErrNoProgram)
	assert.Equal("", emu.Source())
}

func TestEmulator_Source(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.NewReader("START: MVI A,05H\nHLT\n"))
	assert.NoError(err)

	assert.Equal("MVI A,05H", emu.Source())

	emu.Cpu.Step()
	assert.Equal("HLT", emu.Source())

	emu.Cpu.PC = 0x4000
	assert.Equal("", emu.Source())
}

func TestEmulator_Breakpoint(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.NewReader(addProgram))
	assert.NoError(err)

	// Break before the store.
	emu.Cpu.SetBreakpoint(0x0005)

	steps, halted := emu.Run(1000)
	assert.Equal(3, steps)
	assert.False(halted)
	assert.Equal(uint8(0x08), emu.Cpu.Reg.A)
	assert.Equal([]uint8{0x00}, emu.Cpu.Memory(0x2050, 1))

	// Resume to completion.
	emu.Cpu.ClearBreakpoint(0x0005)
	steps, halted = emu.Run(1000)
	assert.Equal(2, steps)
	assert.True(halted)
	assert.Equal([]uint8{0x08}, emu.Cpu.Memory(0x2050, 1))
}

func TestEmulator_IncrementalLoad(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.NewReader("ORG 2000H\nDB 0AAH\n"))
	assert.NoError(err)
	assert.Equal([]uint8{0xAA}, emu.Cpu.Memory(0x2000, 1))

	// Loading another program on the same CPU leaves the first bytes
	// alone, then Assemble's reset zeroes memory before reloading.
	prog := emu.Program
	err = emu.Assemble(strings.NewReader("ORG 0000H\nHLT\n"))
	assert.NoError(err)
	assert.Equal([]uint8{0x00}, emu.Cpu.Memory(0x2000, 1))

	emu.Cpu.Load(prog)
	assert.Equal([]uint8{0xAA}, emu.Cpu.Memory(0x2000, 1))
	assert.Equal([]uint8{0x76}, emu.Cpu.Memory(0x0000, 1))
	assert.Equal(uint16(0x2000), emu.Cpu.PC)
}
