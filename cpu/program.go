package cpu

import (
	"errors"
	"fmt"
	"iter"
)

// MachineCode is one emitted byte, tagged with its load address and the
// label-stripped source text that produced it. Records are produced in
// emission order.
type MachineCode struct {
	Addr   uint16
	Byte   uint8
	Source string
}

// Program is the output of one Assemble call.
type Program struct {
	Origin  uint16            // Load origin; PC after loading.
	Records []MachineCode     // Emitted bytes in emission order.
	Labels  map[string]uint16 // Label table from pass 1.
	Errors  []*ErrLine        // Per-line errors, exhaustive in one pass.
}

// Ok reports whether assembly produced zero errors. Records from a
// failed assembly are not authoritative.
func (prog *Program) Ok() bool {
	return len(prog.Errors) == 0
}

// Err joins the per-line errors into a single error, or nil.
func (prog *Program) Err() (err error) {
	if len(prog.Errors) == 0 {
		return
	}

	errs := make([]error, 0, len(prog.Errors))
	for _, le := range prog.Errors {
		errs = append(errs, le)
	}
	err = errors.Join(errs...)
	return
}

// Bytes iterates the emitted (address, byte) pairs.
func (prog *Program) Bytes() iter.Seq2[uint16, uint8] {
	return func(yield func(addr uint16, value uint8) bool) {
		for _, record := range prog.Records {
			if !yield(record.Addr, record.Byte) {
				return
			}
		}
	}
}

// SourceAt returns the source text of the record emitted at addr.
func (prog *Program) SourceAt(addr uint16) (source string, ok bool) {
	for _, record := range prog.Records {
		if record.Addr == addr {
			source = record.Source
			ok = true
			return
		}
	}

	return
}

// ListingLine is one line of the coalesced assembly listing.
type ListingLine struct {
	Addr   uint16
	Bytes  []uint8
	Source string
}

func (line ListingLine) String() string {
	return fmt.Sprintf("%04X  %-12s %s", line.Addr, fmt.Sprintf("% X", line.Bytes), line.Source)
}

// Listing coalesces the records into listing lines: a new line starts
// whenever the address is non-contiguous with the previous byte or the
// source text changes; otherwise bytes append to the current line.
func (prog *Program) Listing() (lines []ListingLine) {
	for _, record := range prog.Records {
		if n := len(lines); n > 0 {
			last := &lines[n-1]
			if record.Addr == last.Addr+uint16(len(last.Bytes)) && record.Source == last.Source {
				last.Bytes = append(last.Bytes, record.Byte)
				continue
			}
		}
		lines = append(lines, ListingLine{
			Addr:   record.Addr,
			Bytes:  []uint8{record.Byte},
			Source: record.Source,
		})
	}

	return
}
