// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Assembler is a two-pass assembler for 8085 source text. Pass 1 walks
// the normalized lines collecting label addresses; pass 2 walks them
// again emitting machine code. A malformed line is recorded as an error
// and emits nothing, but never stops the scan of later lines.
//
// An Assembler is single-owner state; concurrent Assemble calls on one
// instance must be serialized by the caller.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Label  map[string]uint16 // Map of labels to addresses, rebuilt per call.
	Equate map[string]string // Map of EQU symbols to replacement text.

	predefine map[string]string
	errs      []*ErrLine
}

// Predefine defines an EQU symbol visible to every subsequent Assemble
// call, before any EQU directives in the source.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// srcLine is one normalized source line. text is comment-stripped,
// trimmed, uppercased, and EQU/$()-expanded; raw is the original text
// carried into error reports.
type srcLine struct {
	no   int
	raw  string
	text string
}

// Assemble runs both passes over the source text. The returned Program
// always carries the full per-line error list; err is non-nil only when
// the input itself could not be read.
func (asm *Assembler) Assemble(input io.Reader) (prog *Program, err error) {
	asm.Label = make(map[string]uint16, 16)
	asm.Equate = maps.Clone(asm.predefine)
	if asm.Equate == nil {
		asm.Equate = map[string]string{}
	}
	asm.errs = nil

	lines, err := asm.normalize(input)
	if err != nil {
		return
	}

	origin := asm.passOne(lines)
	records := asm.passTwo(lines, origin)

	prog = &Program{
		Origin:  origin,
		Records: records,
		Labels:  maps.Clone(asm.Label),
		Errors:  asm.errs,
	}

	if asm.Verbose {
		log.Printf("asm: %v bytes at %04X, %v labels, %v errors",
			len(prog.Records), prog.Origin, len(prog.Labels), len(prog.Errors))
	}

	return
}

// fail records a per-line assembly error.
func (asm *Assembler) fail(no int, raw string, err error) {
	asm.errs = append(asm.errs, &ErrLine{LineNo: no, Line: raw, Err: err})
}

var parenRe = regexp.MustCompile(`\$\([^)]*\)`)
var wordRe = regexp.MustCompile(`[A-Z_][A-Z0-9_]*`)

// normalize produces the line stream both passes walk: comments after
// ';' stripped, whitespace trimmed, text uppercased, $() expressions
// evaluated, EQU directives consumed, and EQU symbols substituted.
// Lines that fail to expand are recorded as errors and blanked.
func (asm *Assembler) normalize(input io.Reader) (lines []srcLine, err error) {
	scanner := bufio.NewScanner(input)

	no := 0
	for scanner.Scan() {
		raw := scanner.Text()
		no++

		if asm.Verbose {
			log.Printf("%v: %v", no, raw)
		}

		text, _, _ := strings.Cut(raw, ";")
		text = strings.ToUpper(strings.TrimSpace(text))

		if len(text) != 0 {
			var lerr error
			text, lerr = asm.expand(text)
			if lerr != nil {
				asm.fail(no, raw, lerr)
				text = ""
			}
		}

		lines = append(lines, srcLine{no: no, raw: raw, text: text})
	}

	err = scanner.Err()
	return
}

// expand applies $() evaluation, the EQU directive, and EQU symbol
// substitution to one uppercased line.
func (asm *Assembler) expand(text string) (out string, err error) {
	out = parenRe.ReplaceAllStringFunc(text, func(expr string) string {
		value, eerr := asm.parenEval(expr[2 : len(expr)-1])
		if eerr != nil {
			err = eerr
		}
		// Decimal suffix keeps the result out of the default-hex rule.
		return fmt.Sprintf("%vD", value)
	})
	if err != nil {
		return
	}

	// NAME EQU VALUE
	fields := strings.Fields(out)
	if len(fields) >= 2 && fields[1] == "EQU" {
		if len(fields) != 3 {
			err = ErrEquateSyntax
			return
		}
		if _, ok := asm.Equate[fields[0]]; ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[fields[0]] = fields[2]
		out = ""
		return
	}

	if len(asm.Equate) != 0 {
		out = wordRe.ReplaceAllStringFunc(out, func(word string) string {
			if value, ok := asm.Equate[word]; ok {
				return value
			}
			return word
		})
	}

	return
}

// parenEval does compile-time $(...) evaluations. Every EQU symbol with
// a numeric value is visible to the expression as an integer.
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value32, verr := parseLiteral(str)
		if verr != nil {
			// Ignore non-numeric equates.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "RC=" + expr + "\n"
	dict, xerr := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if xerr != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["RC"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// stripLabel removes a leading "LABEL:" prefix, binding the label to
// addr when register is set (pass 1 only). A label refers to the
// address of the instruction that follows it on the same line.
func (asm *Assembler) stripLabel(ln srcLine, addr uint16, register bool) (rest string) {
	label, rest, found := strings.Cut(ln.text, ":")
	if !found {
		rest = ln.text
		return
	}

	if register {
		name := strings.TrimSpace(label)
		if _, ok := asm.Label[name]; ok {
			asm.fail(ln.no, ln.raw, ErrLabelDuplicate)
		} else {
			asm.Label[name] = addr
		}
	}

	rest = strings.TrimSpace(rest)
	return
}

// passOne collects labels and the load origin, walking every line and
// accounting its encoded size. The load origin is the last ORG before
// any code; ORG parse failures are ignored here, pass 2 reports them.
func (asm *Assembler) passOne(lines []srcLine) (origin uint16) {
	addr := uint16(0)
	emitted := false

	for _, ln := range lines {
		if len(ln.text) == 0 {
			continue
		}

		text := asm.stripLabel(ln, addr, true)
		if len(text) == 0 {
			continue
		}

		mnemonic, operand := splitInstruction(text)
		if mnemonic == "ORG" {
			if value, verr := parseLiteral(operand); verr == nil && value <= 0xFFFF {
				addr = uint16(value)
				if !emitted {
					origin = addr
				}
			}
			continue
		}

		addr += sizeOf(mnemonic, operand)
		emitted = true
	}

	return
}

// passTwo emits machine code records from the origin pass 1 settled on.
// A line that fails to encode contributes an error and no bytes.
func (asm *Assembler) passTwo(lines []srcLine, origin uint16) (records []MachineCode) {
	addr := origin

	for _, ln := range lines {
		if len(ln.text) == 0 {
			continue
		}

		text := asm.stripLabel(ln, addr, false)
		if len(text) == 0 {
			continue
		}

		mnemonic, operand := splitInstruction(text)
		if mnemonic == "ORG" {
			value, verr := parseLiteral(operand)
			if verr != nil {
				asm.fail(ln.no, ln.raw, verr)
				continue
			}
			if value > 0xFFFF {
				asm.fail(ln.no, ln.raw, &ErrRange{Token: operand, Limit: 0xFFFF})
				continue
			}
			addr = uint16(value)
			continue
		}

		data, eerr := asm.encode(mnemonic, operand)
		if eerr != nil {
			asm.fail(ln.no, ln.raw, eerr)
			continue
		}

		for _, b := range data {
			records = append(records, MachineCode{Addr: addr, Byte: b, Source: text})
			addr++
		}
	}

	return
}

// splitInstruction cuts a line into its mnemonic and operand text.
func splitInstruction(text string) (mnemonic, operand string) {
	index := strings.IndexAny(text, " \t")
	if index < 0 {
		mnemonic = text
		return
	}

	mnemonic = text[:index]
	operand = strings.TrimSpace(text[index+1:])
	return
}

// splitValues splits a DB/DW value list on commas and whitespace.
func splitValues(operand string) []string {
	return strings.FieldsFunc(operand, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// splitOperands splits comma-separated instruction operands.
func splitOperands(operand string) (tokens []string) {
	if len(operand) == 0 {
		return
	}

	for _, token := range strings.Split(operand, ",") {
		tokens = append(tokens, strings.TrimSpace(token))
	}

	return
}

// oneOperand requires exactly one operand token.
func oneOperand(operand string) (token string, err error) {
	tokens := splitOperands(operand)
	switch len(tokens) {
	case 0:
		err = ErrOperandMissing
	case 1:
		token = tokens[0]
	default:
		err = ErrOperandExtra
	}
	return
}

// twoOperands requires exactly two operand tokens.
func twoOperands(operand string) (first, second string, err error) {
	tokens := splitOperands(operand)
	switch {
	case len(tokens) < 2:
		err = ErrOperandMissing
	case len(tokens) > 2:
		err = ErrOperandExtra
	default:
		first = tokens[0]
		second = tokens[1]
	}
	return
}

// oneReg requires a single register operand.
func oneReg(operand string) (r Reg, err error) {
	token, err := oneOperand(operand)
	if err != nil {
		return
	}

	var ok bool
	r, ok = regIndex[token]
	if !ok {
		err = ErrBadRegister(token)
	}
	return
}

// address resolves a 16-bit operand as a literal first, then as a label.
func (asm *Assembler) address(token string) (value uint16, err error) {
	v32, verr := parseLiteral(token)
	if verr == nil {
		if v32 > 0xFFFF {
			err = &ErrRange{Token: token, Limit: 0xFFFF}
			return
		}
		value = uint16(v32)
		return
	}

	var ok bool
	value, ok = asm.Label[token]
	if !ok {
		err = ErrLabelMissing(token)
	}
	return
}

// encode translates one label-stripped instruction into its bytes.
// 16-bit values emit low byte first.
func (asm *Assembler) encode(mnemonic, operand string) (data []uint8, err error) {
	switch mnemonic {
	case "DB":
		tokens := splitValues(operand)
		if len(tokens) == 0 {
			err = ErrOperandMissing
			return
		}
		for _, token := range tokens {
			var value uint8
			value, err = parseImm8(token)
			if err != nil {
				data = nil
				return
			}
			data = append(data, value)
		}

	case "DW":
		tokens := splitValues(operand)
		if len(tokens) == 0 {
			err = ErrOperandMissing
			return
		}
		for _, token := range tokens {
			var value uint16
			value, err = asm.address(token)
			if err != nil {
				data = nil
				return
			}
			data = append(data, uint8(value), uint8(value>>8))
		}

	case "MOV":
		var dname, sname string
		dname, sname, err = twoOperands(operand)
		if err != nil {
			return
		}
		dst, ok := regIndex[dname]
		if !ok {
			err = ErrBadRegister(dname)
			return
		}
		src, ok := regIndex[sname]
		if !ok {
			err = ErrBadRegister(sname)
			return
		}
		if dst == REG_M && src == REG_M {
			err = ErrMovMemory
			return
		}
		data = []uint8{0x40 | uint8(dst)<<3 | uint8(src)}

	case "MVI":
		var rname, token string
		rname, token, err = twoOperands(operand)
		if err != nil {
			return
		}
		r, ok := regIndex[rname]
		if !ok {
			err = ErrBadRegister(rname)
			return
		}
		var value uint8
		value, err = parseImm8(token)
		if err != nil {
			return
		}
		data = []uint8{0x06 | uint8(r)<<3, value}

	case "LXI":
		var pname, token string
		pname, token, err = twoOperands(operand)
		if err != nil {
			return
		}
		pair, ok := pairIndex[pname]
		if !ok {
			err = ErrBadPair(pname)
			return
		}
		var value uint16
		value, err = asm.address(token)
		if err != nil {
			return
		}
		data = []uint8{pairBase["LXI"] | uint8(pair)<<4, uint8(value), uint8(value >> 8)}

	case "INR", "DCR":
		var r Reg
		r, err = oneReg(operand)
		if err != nil {
			return
		}
		base := uint8(0x04)
		if mnemonic == "DCR" {
			base = 0x05
		}
		data = []uint8{base | uint8(r)<<3}

	case "INX", "DCX", "DAD":
		var token string
		token, err = oneOperand(operand)
		if err != nil {
			return
		}
		pair, ok := pairIndex[token]
		if !ok {
			err = ErrBadPair(token)
			return
		}
		data = []uint8{pairBase[mnemonic] | uint8(pair)<<4}

	case "PUSH", "POP":
		var token string
		token, err = oneOperand(operand)
		if err != nil {
			return
		}
		pair, ok := pushPairIndex[token]
		if !ok {
			err = ErrBadPair(token)
			return
		}
		data = []uint8{pairBase[mnemonic] | uint8(pair)<<4}

	case "LDAX", "STAX":
		var token string
		token, err = oneOperand(operand)
		if err != nil {
			return
		}
		pair, ok := pairIndex[token]
		if !ok || pair > PAIR_DE {
			err = ErrBadPair(token)
			return
		}
		data = []uint8{pairBase[mnemonic] | uint8(pair)<<4}

	case "RST":
		var token string
		token, err = oneOperand(operand)
		if err != nil {
			return
		}
		var value uint32
		value, err = parseLiteral(token)
		if err != nil {
			return
		}
		if value > 7 {
			err = &ErrRange{Token: token, Limit: 7}
			return
		}
		data = []uint8{0xC7 | uint8(value)<<3}

	default:
		if opcode, ok := imm8Opcode[mnemonic]; ok {
			var token string
			token, err = oneOperand(operand)
			if err != nil {
				return
			}
			var value uint8
			value, err = parseImm8(token)
			if err != nil {
				return
			}
			data = []uint8{opcode, value}
			return
		}

		if opcode, ok := addrOpcode[mnemonic]; ok {
			var token string
			token, err = oneOperand(operand)
			if err != nil {
				return
			}
			var value uint16
			value, err = asm.address(token)
			if err != nil {
				return
			}
			data = []uint8{opcode, uint8(value), uint8(value >> 8)}
			return
		}

		if base, ok := aluRegBase[mnemonic]; ok {
			var r Reg
			r, err = oneReg(operand)
			if err != nil {
				return
			}
			data = []uint8{base | uint8(r)}
			return
		}

		if opcode, ok := bareOpcode[mnemonic]; ok {
			if len(operand) != 0 {
				err = ErrOperandExtra
				return
			}
			data = []uint8{opcode}
			return
		}

		err = ErrUnknownInstruction(mnemonic)
	}

	return
}
