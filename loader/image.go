// Package loader reads raw data out of a loaded binary image. The
// retyping core consumes it through the Image interface; MemImage is
// the in-memory implementation backing tests and small lifts.
package loader

import (
	"math/big"

	"github.com/wollmilch-systems/retdec/ir"
)

// SegKind classifies a segment's contents.
type SegKind uint8

// Segment kinds.
const (
	SegData SegKind = iota + 1
	SegCode
)

// Segment is a contiguous mapped region of the image.
type Segment struct {
	Addr     uint64
	Data     []byte
	Kind     SegKind
	ReadOnly bool
}

// IsCode reports whether the segment holds code.
func (s *Segment) IsCode() bool { return s.Kind == SegCode }

// Contains reports whether an address falls inside the segment.
func (s *Segment) Contains(addr uint64) bool {
	return addr >= s.Addr && addr < s.Addr+uint64(len(s.Data))
}

// Image is the query surface of a loaded binary image.
type Image interface {
	// WordBytes returns the width of a machine word in bytes.
	WordBytes() int
	// HasData reports whether readable bytes exist at an address.
	HasData(addr uint64) bool
	// HasReadOnlyData reports whether the address lies in read-only
	// data.
	HasReadOnlyData(addr uint64) bool
	// Word reads a little-endian machine word.
	Word(addr uint64) (uint64, bool)
	// NTBS reads a null-terminated byte string.
	NTBS(addr uint64) (string, bool)
	// SegmentAt returns the segment containing an address, or nil.
	SegmentAt(addr uint64) *Segment
	// ReadConstant reads a constant of the given type from the image.
	// It returns nil if the bytes are not readable.
	ReadConstant(typ ir.Type, addr uint64) ir.Constant
	// ReadPointer reads a machine word and resolves it against the
	// module's globals: a word addressing a known global yields that
	// global, any other word a default-width integer constant.
	ReadPointer(m *ir.Module, addr uint64) ir.Constant
}

// MemImage is an Image over in-memory segments.
type MemImage struct {
	wordBytes int
	segs      []*Segment
}

// NewMemImage constructs a MemImage.
func NewMemImage(wordBytes int, segs ...*Segment) *MemImage {
	return &MemImage{wordBytes: wordBytes, segs: segs}
}

// WordBytes returns the machine word width in bytes.
func (img *MemImage) WordBytes() int { return img.wordBytes }

// SegmentAt returns the segment containing an address, or nil.
func (img *MemImage) SegmentAt(addr uint64) *Segment {
	for _, seg := range img.segs {
		if seg.Contains(addr) {
			return seg
		}
	}
	return nil
}

// HasData reports whether readable bytes exist at an address.
func (img *MemImage) HasData(addr uint64) bool {
	return img.SegmentAt(addr) != nil
}

// HasReadOnlyData reports whether the address lies in read-only data.
func (img *MemImage) HasReadOnlyData(addr uint64) bool {
	seg := img.SegmentAt(addr)
	return seg != nil && seg.ReadOnly && !seg.IsCode()
}

// read copies n bytes at addr, failing if the range leaves the
// containing segment.
func (img *MemImage) read(addr uint64, n int) ([]byte, bool) {
	seg := img.SegmentAt(addr)
	if seg == nil {
		return nil, false
	}
	off := addr - seg.Addr
	if off+uint64(n) > uint64(len(seg.Data)) {
		return nil, false
	}
	return seg.Data[off : off+uint64(n)], true
}

// Word reads a little-endian machine word.
func (img *MemImage) Word(addr uint64) (uint64, bool) {
	b, ok := img.read(addr, img.wordBytes)
	if !ok {
		return 0, false
	}
	var w uint64
	for i := len(b) - 1; i >= 0; i-- {
		w = w<<8 | uint64(b[i])
	}
	return w, true
}

// NTBS reads a null-terminated byte string.
func (img *MemImage) NTBS(addr uint64) (string, bool) {
	seg := img.SegmentAt(addr)
	if seg == nil {
		return "", false
	}
	off := addr - seg.Addr
	for i := off; i < uint64(len(seg.Data)); i++ {
		if seg.Data[i] == 0 {
			return string(seg.Data[off:i]), true
		}
	}
	return "", false
}

// ReadConstant reads a constant of the given type from the image.
func (img *MemImage) ReadConstant(typ ir.Type, addr uint64) ir.Constant {
	switch typ := typ.(type) {
	case *ir.IntType:
		b, ok := img.read(addr, ir.SizeOf(typ, img.wordBytes))
		if !ok {
			return nil
		}
		return ir.NewIntConst(leBits(b), typ)
	case *ir.FloatType:
		b, ok := img.read(addr, ir.SizeOf(typ, img.wordBytes))
		if !ok {
			return nil
		}
		return ir.NewFloatConst(leBits(b), typ)
	case *ir.PtrType:
		w, ok := img.Word(addr)
		if !ok {
			return nil
		}
		wordInt := ir.Int(uint(img.wordBytes) * 8)
		return ir.NewExprConst(ir.IntToPtr, ir.NewIntConst64(w, wordInt), typ)
	case *ir.AggregateType:
		elems := make([]ir.Constant, len(typ.Elems))
		elemAddr := addr
		for i, et := range typ.Elems {
			elem := img.ReadConstant(et, elemAddr)
			if elem == nil {
				return nil
			}
			elems[i] = elem
			elemAddr += uint64(ir.SizeOf(et, img.wordBytes))
		}
		return ir.NewAggregateConst(typ, elems...)
	}
	return nil
}

// ReadPointer reads a machine word and resolves it against the
// module's globals.
func (img *MemImage) ReadPointer(m *ir.Module, addr uint64) ir.Constant {
	w, ok := img.Word(addr)
	if !ok {
		return nil
	}
	if gv := m.GlobalAt(w); gv != nil {
		return gv
	}
	return ir.NewIntConst64(w, ir.Int(uint(img.wordBytes)*8))
}

func leBits(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	return new(big.Int).SetBytes(be)
}

// IsNiceString reports whether at least the given ratio of a string's
// characters are printable and the string is non-empty. The
// materialization gate uses it to judge string evidence quality.
func IsNiceString(s string, ratio float64) bool {
	if len(s) == 0 {
		return false
	}
	printable := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 0x20 && c < 0x7f) || c == '\t' || c == '\n' || c == '\r' {
			printable++
		}
	}
	return float64(printable) >= ratio*float64(len(s))
}
