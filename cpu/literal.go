package cpu

import (
	"strconv"
	"strings"
)

// parseLiteral parses a trimmed numeric token in 8085 assembly notation:
// a B suffix is binary, a D suffix decimal, an H suffix or 0X prefix
// hexadecimal. A bare token with no suffix is hexadecimal, so "FF" and
// even "10" parse base 16. Tokens that are not numbers under any base
// return ErrParseNumber; callers decide whether that means the token is
// a label reference.
func parseLiteral(token string) (value uint32, err error) {
	text := strings.ToUpper(strings.TrimSpace(token))
	if len(text) == 0 {
		err = ErrParseNumber(token)
		return
	}

	digits := text
	base := 16
	switch {
	case strings.HasSuffix(text, "B"):
		digits = text[:len(text)-1]
		base = 2
	case strings.HasSuffix(text, "D"):
		digits = text[:len(text)-1]
		base = 10
	case strings.HasSuffix(text, "H"):
		digits = text[:len(text)-1]
	case strings.HasPrefix(text, "0X"):
		digits = text[2:]
	}

	v64, perr := strconv.ParseUint(digits, base, 32)
	if perr != nil {
		err = ErrParseNumber(token)
		return
	}

	value = uint32(v64)
	return
}

// parseImm8 parses an 8-bit immediate, rejecting values above 0xFF.
func parseImm8(token string) (value uint8, err error) {
	v32, err := parseLiteral(token)
	if err != nil {
		return
	}
	if v32 > 0xFF {
		err = &ErrRange{Token: token, Limit: 0xFF}
		return
	}

	value = uint8(v32)
	return
}
