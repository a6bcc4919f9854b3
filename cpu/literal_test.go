package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLiteral(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		token string
		value uint32
	}){
		{"FFH", 0xFF},
		{"0ffh", 0xFF},
		{"0xFF", 0xFF},
		{"0X2050", 0x2050},
		{"11111111B", 0xFF},
		{"101b", 5},
		{"255D", 255},
		{"0D", 0},
		// Bare tokens default to hexadecimal, even all-digit ones.
		{"FF", 0xFF},
		{"10", 0x10},
		{"2050", 0x2050},
		{"0", 0},
		{" 3EH ", 0x3E},
	}

	for _, entry := range table {
		value, err := parseLiteral(entry.token)
		assert.NoError(err, entry.token)
		assert.Equal(entry.value, value, entry.token)
	}
}

func TestParseLiteral_Invalid(t *testing.T) {
	assert := assert.New(t)

	table := []string{
		"",
		"LOOP",
		"G5H",
		"12F3B", // binary with non-binary digits
		"1A2D",  // decimal with hex letters
		"0x",
		"H",
		"-5",
	}

	for _, token := range table {
		_, err := parseLiteral(token)
		assert.Error(err, token)
		assert.IsType(ErrParseNumber(""), err, token)
	}
}

func TestParseImm8(t *testing.T) {
	assert := assert.New(t)

	value, err := parseImm8("FFH")
	assert.NoError(err)
	assert.Equal(uint8(0xFF), value)

	_, err = parseImm8("1FFH")
	assert.Error(err)
	re := &ErrRange{}
	assert.ErrorAs(err, &re)
	assert.Equal("1FFH", re.Token)
}
