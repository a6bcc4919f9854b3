package cpu

import (
	"fmt"
)

const (
	TRACE_LIMIT = 1024 // Retained trace entries per CPU.
)

// TraceEntry is the snapshot taken after each step: where the opcode was
// fetched, what it decoded to, and the full register, flag, PC and SP
// state it left behind.
type TraceEntry struct {
	Addr   uint16 // Address the opcode was fetched from.
	Opcode uint8
	Text   string // Decoded instruction text.
	Reg    Registers
	Flags  Flags
	PC     uint16
	SP     uint16
}

func (entry TraceEntry) String() string {
	return fmt.Sprintf("%04X: %-12s A=%02X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X",
		entry.Addr, entry.Text, entry.Reg.A, entry.Reg.BC(), entry.Reg.DE(),
		entry.Reg.HL(), entry.SP, entry.PC)
}

// Trace returns up to n of the most recent trace entries, oldest first.
func (cpu *Cpu) Trace(n int) []TraceEntry {
	return cpu.trace.Last(n)
}
