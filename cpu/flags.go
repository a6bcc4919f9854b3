package cpu

import (
	"math/bits"
)

// Bit positions within the packed flags byte. Bit 1 reads as 1 and bits
// 3 and 5 read as 0, matching the architectural PSW layout.
const (
	FLAG_BIT_CY  = uint8(1 << 0)
	FLAG_BIT_ONE = uint8(1 << 1)
	FLAG_BIT_P   = uint8(1 << 2)
	FLAG_BIT_AC  = uint8(1 << 4)
	FLAG_BIT_Z   = uint8(1 << 6)
	FLAG_BIT_S   = uint8(1 << 7)
)

// Flags are the five 8085 condition bits.
type Flags struct {
	S  bool // Sign: bit 7 of the stored result.
	Z  bool // Zero.
	AC bool // Auxiliary carry out of bit 3.
	P  bool // Parity: set when the stored result has an even bit count.
	CY bool // Carry out of bit 7, or borrow.
}

// Byte packs the flags into the PSW low byte.
func (flags Flags) Byte() (value uint8) {
	value = FLAG_BIT_ONE
	if flags.S {
		value |= FLAG_BIT_S
	}
	if flags.Z {
		value |= FLAG_BIT_Z
	}
	if flags.AC {
		value |= FLAG_BIT_AC
	}
	if flags.P {
		value |= FLAG_BIT_P
	}
	if flags.CY {
		value |= FLAG_BIT_CY
	}
	return
}

// SetByte unpacks the flags from the PSW low byte. The fixed bits are
// ignored.
func (flags *Flags) SetByte(value uint8) {
	flags.S = value&FLAG_BIT_S != 0
	flags.Z = value&FLAG_BIT_Z != 0
	flags.AC = value&FLAG_BIT_AC != 0
	flags.P = value&FLAG_BIT_P != 0
	flags.CY = value&FLAG_BIT_CY != 0
}

// setSZP derives sign, zero, and parity from the result value that was
// actually stored. Carry and auxiliary carry are always supplied by the
// instruction's own arithmetic, never here.
func (flags *Flags) setSZP(result uint8) {
	flags.S = result&0x80 != 0
	flags.Z = result == 0
	flags.P = bits.OnesCount8(result)%2 == 0
}
