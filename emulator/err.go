package emulator

import (
	"errors"

	"github.com/ezrec/sim85/translate"
)

var f = translate.From

var (
	ErrNoProgram = errors.New(f("no program loaded"))
)
