// Package cpu implements the Intel 8085 toolchain core: a two-pass
// assembler that turns source text into byte-exact machine code, and an
// execution engine that runs that machine code against a register, flag,
// and memory model.
//
// The assembler emits a Program of (address, byte, source) records plus a
// label table and a per-line error list. The engine loads those records
// into a flat 64KiB memory and steps the full documented opcode map,
// recording a bounded execution trace.
package cpu
