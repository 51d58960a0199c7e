// Package abi provides the little architecture knowledge the retyping
// core needs: the natural pointer-sized integer type, the machine word
// width, and which targets place data adjacent to code without
// marking it.
package abi

import "github.com/wollmilch-systems/retdec/ir"

// Arch identifies a target architecture.
type Arch uint8

// Supported architectures.
const (
	X86 Arch = iota + 1
	X86_64
	ARM
	Thumb
	MIPS
	PowerPC
	PIC32
)

func (a Arch) String() string {
	switch a {
	case X86:
		return "x86"
	case X86_64:
		return "x86-64"
	case ARM:
		return "arm"
	case Thumb:
		return "thumb"
	case MIPS:
		return "mips"
	case PowerPC:
		return "powerpc"
	case PIC32:
		return "pic32"
	}
	return "archerr"
}

// WordBytes returns the machine word width in bytes.
func (a Arch) WordBytes() int {
	if a == X86_64 {
		return 8
	}
	return 4
}

// DefaultType returns the natural pointer-sized integer type, used as
// the fallback type whenever no better type is known.
func (a Arch) DefaultType() *ir.IntType {
	return ir.Int(uint(a.WordBytes()) * 8)
}

// DataAdjacentToCode reports whether the target is known to place data
// next to code without explicit markers. ARM interleaves literal pools
// with functions and PIC32 images rarely mark read-only data sections
// as data.
func (a Arch) DataAdjacentToCode() bool {
	switch a {
	case ARM, Thumb, PIC32:
		return true
	}
	return false
}
