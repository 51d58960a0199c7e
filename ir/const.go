package ir

import (
	"fmt"
	"math/big"

	"github.com/wollmilch-systems/retdec/internal/bigint"
)

// IntConst is a constant integer bit pattern. The contained ints are
// interned per width and can be compared for pointer equality.
type IntConst struct {
	val *big.Int
	typ *IntType
	ValueBase
}

var intLookup = map[uint]*bigint.Map{}

// NewIntConst constructs an IntConst, masking the value to the bit
// pattern of the given width. Negative values are stored in two's
// complement form.
func NewIntConst(val *big.Int, typ *IntType) *IntConst {
	bits := truncateToWidth(val, typ.Bits)
	lookup := intLookup[typ.Bits]
	if lookup == nil {
		lookup = bigint.NewMap()
		intLookup[typ.Bits] = lookup
	}
	pair, _ := lookup.GetOrPutPair(bits, nil) // keep only one equivalent *big.Int
	return &IntConst{val: pair.K, typ: typ}
}

// NewIntConst64 constructs an IntConst from a uint64 bit pattern.
func NewIntConst64(val uint64, typ *IntType) *IntConst {
	return NewIntConst(new(big.Int).SetUint64(val), typ)
}

// Int returns the constant bit pattern as an unsigned integer.
func (ic *IntConst) Int() *big.Int { return ic.val }

// Uint64 returns the low 64 bits of the constant.
func (ic *IntConst) Uint64() uint64 { return ic.val.Uint64() }

// Type returns the integer type.
func (ic *IntConst) Type() Type { return ic.typ }

// Cast converts the constant to another integer width with the same
// semantics as the coercion engine's integer cast: truncation when
// narrowing, sign extension when widening.
func (ic *IntConst) Cast(to *IntType) *IntConst {
	if to.Bits == ic.typ.Bits {
		return ic
	}
	if to.Bits < ic.typ.Bits {
		return NewIntConst(ic.val, to)
	}
	v := new(big.Int).Set(ic.val)
	if v.Bit(int(ic.typ.Bits)-1) == 1 { // sign bit
		ones := new(big.Int).Lsh(big.NewInt(1), to.Bits-ic.typ.Bits)
		ones.Sub(ones, big.NewInt(1))
		ones.Lsh(ones, ic.typ.Bits)
		v.Or(v, ones)
	}
	return NewIntConst(v, to)
}

// truncateToWidth reduces val modulo 2^bits. Negative values land on
// their two's complement bit pattern.
func truncateToWidth(val *big.Int, bits uint) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	return new(big.Int).Mod(val, mod)
}

// FloatConst is a constant floating-point bit pattern. The pattern is
// kept raw rather than as a Go float so that 16- and 80-bit widths
// round-trip exactly.
type FloatConst struct {
	bits *big.Int
	typ  *FloatType
	ValueBase
}

// NewFloatConst constructs a FloatConst from a raw bit pattern.
func NewFloatConst(bits *big.Int, typ *FloatType) *FloatConst {
	return &FloatConst{bits: truncateToWidth(bits, typ.Bits), typ: typ}
}

// Bits returns the raw bit pattern.
func (fc *FloatConst) Bits() *big.Int { return fc.bits }

// Type returns the floating-point type.
func (fc *FloatConst) Type() Type { return fc.typ }

// Undef is an undefined constant of a given type.
type Undef struct {
	typ Type
	ValueBase
}

// NewUndef constructs an Undef.
func NewUndef(typ Type) *Undef { return &Undef{typ: typ} }

// Type returns the type of the undefined value.
func (u *Undef) Type() Type { return u.typ }

// AggregateConst is a constant aggregate value.
type AggregateConst struct {
	typ *AggregateType
	ValueBase
	UserBase
}

// NewAggregateConst constructs an AggregateConst. The element constants
// must match the aggregate's element types.
func NewAggregateConst(typ *AggregateType, elems ...Constant) *AggregateConst {
	if len(elems) != len(typ.Elems) {
		panic(fmt.Sprintf("ir: aggregate constant arity %d does not match type %v", len(elems), typ))
	}
	vals := make([]Value, len(elems))
	for i, elem := range elems {
		if !elem.Type().Equal(typ.Elems[i]) {
			panic(fmt.Sprintf("ir: aggregate element %d has type %v, want %v", i, elem.Type(), typ.Elems[i]))
		}
		vals[i] = elem
	}
	agg := &AggregateConst{typ: typ}
	agg.initOperands(agg, vals...)
	return agg
}

// Type returns the aggregate type.
func (agg *AggregateConst) Type() Type { return agg.typ }

// Elem returns the nth element constant.
func (agg *AggregateConst) Elem(n int) Constant {
	return agg.Operand(n).Def().(Constant)
}

// ExprConst is a recorded conversion between constants. Unlike a
// CastInst it is not anchored in any code body.
type ExprConst struct {
	Op  CastOp
	typ Type
	ValueBase
	UserBase
}

// NewExprConst constructs an ExprConst converting a constant to a
// type.
func NewExprConst(op CastOp, val Constant, to Type) *ExprConst {
	expr := &ExprConst{Op: op, typ: to}
	expr.initOperands(expr, val)
	return expr
}

// Type returns the conversion's target type.
func (expr *ExprConst) Type() Type { return expr.typ }

// Arg returns the converted constant.
func (expr *ExprConst) Arg() Constant { return expr.Operand(0).Def().(Constant) }

func (*IntConst) constant()       {}
func (*FloatConst) constant()     {}
func (*Undef) constant()          {}
func (*AggregateConst) constant() {}
func (*ExprConst) constant()      {}
