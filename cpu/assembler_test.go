package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doAssemble(t *testing.T, program []string) (prog *Program) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	assert.NotNil(prog)

	return
}

func recordBytes(prog *Program) (data []uint8) {
	for _, b := range prog.Bytes() {
		data = append(data, b)
	}
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Assemble(strings.NewReader(""))
	assert.NoError(err)
	assert.True(prog.Ok())
	assert.Equal(0, len(prog.Records))
	assert.Equal(0, len(prog.Labels))
}

func TestAssembler_Encoding(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"ORG 0000H",
		"MVI A,05H",
		"MVI B,03H",
		"ADD B",
		"STA 2050H",
		"HLT",
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok())
	assert.Equal(uint16(0), prog.Origin)
	assert.Equal([]uint8{0x3E, 0x05, 0x06, 0x03, 0x80, 0x32, 0x50, 0x20, 0x76}, recordBytes(prog))

	// Address accounting matches emission order.
	assert.Equal(uint16(0x0000), prog.Records[0].Addr)
	assert.Equal(uint16(0x0004), prog.Records[4].Addr)
	assert.Equal(uint16(0x0008), prog.Records[8].Addr)
}

func TestAssembler_Deterministic(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"ORG 0100H",
		"START: LXI H,DATA",
		"MOV A,M",
		"JMP START",
		"DATA: DB 0AAH",
	}

	first := doAssemble(t, program)
	second := doAssemble(t, program)

	assert.True(first.Ok())
	assert.Equal(first.Records, second.Records)
	assert.Equal(first.Labels, second.Labels)
	assert.Equal(first.Origin, second.Origin)
}

func TestAssembler_ForwardReference(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"ORG 0000H",
		"MVI B,02H",   // 0000: 06 02
		"LOOP: DCR B", // 0002: 05
		"JNZ LOOP",    // 0003: C2 02 00
		"JMP DONE",    // 0006: C3 0A 00
		"DB 00H",      // 0009: 00
		"DONE: HLT",   // 000A: 76
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok())
	assert.Equal(uint16(0x0002), prog.Labels["LOOP"])
	assert.Equal(uint16(0x000A), prog.Labels["DONE"])
	assert.Equal([]uint8{0x06, 0x02, 0x05, 0xC2, 0x02, 0x00, 0xC3, 0x0A, 0x00, 0x00, 0x76},
		recordBytes(prog))
}

func TestAssembler_Registers(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"MOV B,C",
		"MOV M,A",
		"MOV A,M",
		"ADD M",
		"CMP A",
		"INR M",
		"DCR C",
		"INX SP",
		"DCX D",
		"DAD H",
		"PUSH PSW",
		"POP B",
		"LDAX D",
		"STAX B",
		"RST 7",
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok())
	assert.Equal([]uint8{
		0x41, 0x77, 0x7E, 0x86, 0xBF, 0x34, 0x0D,
		0x33, 0x1B, 0x29, 0xF5, 0xC1, 0x1A, 0x02, 0xFF,
	}, recordBytes(prog))
}

func TestAssembler_DataDirectives(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"ORG 2000H",
		"TABLE: DB 01,02H,255D,11B",
		"DW 1234H,TABLE",
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok())
	assert.Equal(uint16(0x2000), prog.Labels["TABLE"])
	// DW emits low byte first.
	assert.Equal([]uint8{0x01, 0x02, 0xFF, 0x03, 0x34, 0x12, 0x00, 0x20}, recordBytes(prog))
}

func TestAssembler_Origin(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"ORG 0800H",
		"NOP",
		"ORG 0900H",
		"HLT",
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok())
	// The ORG before the first instruction sets the load origin;
	// later ORGs only move the emission address.
	assert.Equal(uint16(0x0800), prog.Origin)
	assert.Equal(uint16(0x0800), prog.Records[0].Addr)
	assert.Equal(uint16(0x0900), prog.Records[1].Addr)
}

func TestAssembler_Equate(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"COUNT EQU 05H",
		"PORT EQU $(COUNT + 0x10)",
		"MVI A,COUNT",
		"MVI B,PORT",
		"MVI C,$(COUNT * 2)",
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok(), prog.Err())
	assert.Equal([]uint8{0x3E, 0x05, 0x06, 0x15, 0x0E, 0x0A}, recordBytes(prog))
}

func TestAssembler_Predefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "40H")

	prog, err := asm.Assemble(strings.NewReader("MVI A,BASE\n"))
	assert.NoError(err)
	assert.True(prog.Ok())
	assert.Equal([]uint8{0x3E, 0x40}, recordBytes(prog))
}

func TestAssembler_CaseInsensitive(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"loop: mvi a,0fh",
		"jnz Loop",
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok())
	assert.Equal([]uint8{0x3E, 0x0F, 0xC2, 0x00, 0x00}, recordBytes(prog))
}

func TestAssembler_Comments(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"; full comment line",
		"NOP ; trailing comment",
		"",
		"HLT",
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok())
	assert.Equal([]uint8{0x00, 0x76}, recordBytes(prog))
}

func TestAssembler_RangeRejection(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"MVI A,1FFH",
		"HLT",
	}

	prog := doAssemble(t, program)
	assert.False(prog.Ok())
	assert.Equal(1, len(prog.Errors))
	assert.Equal(1, prog.Errors[0].LineNo)
	assert.Contains(prog.Errors[0].Error(), "1FFH")

	// The bad line emits nothing; the good line still assembles.
	assert.Equal([]uint8{0x76}, recordBytes(prog))
}

func TestAssembler_UnknownInstruction(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"FOO B",
		"MVI A,01H",
	}

	prog := doAssemble(t, program)
	assert.False(prog.Ok())
	assert.Equal(1, len(prog.Errors))
	assert.Contains(prog.Errors[0].Error(), "FOO")
	assert.Equal([]uint8{0x3E, 0x01}, recordBytes(prog))
}

func TestAssembler_SizeAddressConsistency(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"ORG 0100H",
		"MVI A,01H",   // 2 bytes
		"LXI H,2000H", // 3 bytes
		"MOV B,A",     // 1 byte
		"DB 01H,02H",  // 2 bytes
		"DW 1234H",    // 2 bytes
		"CALL 0200H",  // 3 bytes
		"LAST: HLT",   // 1 byte
	}

	prog := doAssemble(t, program)
	assert.True(prog.Ok())

	// Pass 1 address accounting must equal pass 2 emission addresses:
	// the label on the final line proves every preceding size.
	assert.Equal(uint16(0x010D), prog.Labels["LAST"])

	addr := uint16(0x0100)
	for _, record := range prog.Records {
		assert.Equal(addr, record.Addr)
		addr++
	}
}

func TestAssembler_ErrLine(t *testing.T) {
	assert := assert.New(t)

	// Various per-line errors: each program yields at least one error
	// on the expected line, and assembly always runs to completion.
	table := [](struct {
		prog string
		line int
	}){
		{"MVI A\n", 1},
		{"NOP\nMVI A,01H,02H\n", 2},
		{"MOV B\n", 1},
		{"MOV B,Q\n", 1},
		{"MOV M,M\n", 1},
		{"LXI Q,1234H\n", 1},
		{"LDAX H\n", 1},
		{"STAX SP\n", 1},
		{"PUSH Q\n", 1},
		{"RST 8\n", 1},
		{"RST Q\n", 1},
		{"ADD\n", 1},
		{"ADD B,C\n", 1},
		{"ADI 100H\n", 1},
		{"IN 1FFH\n", 1},
		{"JMP NOWHERE\n", 1},
		{"DW NOWHERE\n", 1},
		{"DB 300H\n", 1},
		{"DB\n", 1},
		{"DW\n", 1},
		{"NOP EXTRA\n", 1},
		{"NOP\nFOO B\n", 2},
		{"DUP: NOP\nDUP: NOP\n", 2},
		{"X EQU\n", 1},
		{"X EQU 1 2\n", 1},
		{"X EQU 1\nX EQU 2\n", 2},
		{"MVI A,$(NOPE NOPE)\n", 1},
		{"ORG XYZ\n", 1},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Assemble(strings.NewReader(entry.prog))
		assert.NoError(err, entry.prog)
		assert.False(prog.Ok(), entry.prog)

		var le *ErrLine
		assert.True(errors.As(prog.Err(), &le), entry.prog)
		assert.Equal(entry.line, prog.Errors[0].LineNo, entry.prog)
	}
}

func TestAssembler_Rebuilt(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Assemble(strings.NewReader("LOOP: JMP LOOP\n"))
	assert.NoError(err)
	assert.True(prog.Ok())

	// Labels and records do not leak into the next call.
	prog, err = asm.Assemble(strings.NewReader("JMP LOOP\n"))
	assert.NoError(err)
	assert.False(prog.Ok())
	assert.Equal(0, len(prog.Records))
}
