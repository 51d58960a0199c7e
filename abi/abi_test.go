package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wollmilch-systems/retdec/ir"
)

func TestWordBytes(t *testing.T) {
	assert.Equal(t, 4, X86.WordBytes())
	assert.Equal(t, 8, X86_64.WordBytes())
	assert.Equal(t, 4, MIPS.WordBytes())
}

func TestDefaultType(t *testing.T) {
	assert.True(t, X86.DefaultType().Equal(ir.Int(32)))
	assert.True(t, X86_64.DefaultType().Equal(ir.Int(64)))
}

func TestDataAdjacentToCode(t *testing.T) {
	for _, a := range []Arch{ARM, Thumb, PIC32} {
		assert.True(t, a.DataAdjacentToCode(), a.String())
	}
	for _, a := range []Arch{X86, X86_64, MIPS, PowerPC} {
		assert.False(t, a.DataAdjacentToCode(), a.String())
	}
}
