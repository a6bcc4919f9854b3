package cpu

import (
	"errors"

	"github.com/ezrec/sim85/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrOperandExtra    = errors.New(f("excessive operands"))
	ErrEquateSyntax    = errors.New(f("EQU syntax"))
	ErrEquateDuplicate = errors.New(f("EQU duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrMovMemory       = errors.New(f("MOV M,M has no encoding"))
)

// ErrLine locates an assembly error on its source line. Lines are
// numbered from 1.
type ErrLine struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrLine) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrLine) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("label '%v' missing", string(err))
}

type ErrUnknownInstruction string

func (err ErrUnknownInstruction) Error() string {
	return f("unknown instruction '%v'", string(err))
}

type ErrBadRegister string

func (err ErrBadRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrBadPair string

func (err ErrBadPair) Error() string {
	return f("'%v' is not a register pair", string(err))
}

// ErrRange reports an operand value that does not fit its field.
type ErrRange struct {
	Token string
	Limit uint32
}

func (err *ErrRange) Error() string {
	return f("value '%v' exceeds %v", err.Token, err.Limit)
}
