// Package retype converts values between types and changes the
// declared types of storage locations in a lifted program graph,
// repairing every referrer so the graph stays well typed.
package retype

import (
	"fmt"

	"github.com/wollmilch-systems/retdec/ir"
)

// insertBeforeAfter links an instruction into a code body immediately
// adjacent to the anchor: before b when b is set, after a otherwise.
func insertBeforeAfter(inst, b, a ir.Inst) ir.Inst {
	if b != nil {
		b.Parent().InsertBefore(inst, b)
	} else {
		a.Parent().InsertAfter(inst, a)
	}
	return inst
}

// convertToType builds a value of exactly typ equivalent to val. In
// mutating mode (constExpr false) new instructions are linked into the
// code body adjacent to the anchor; in constant-fold mode only new
// constants are built and val must be a constant. A type pair with no
// legal conversion path is an internal-consistency error and panics.
func convertToType(val ir.Value, typ ir.Type, before, after ir.Inst, constExpr bool) ir.Value {
	if val == nil || typ == nil || (!constExpr && before == nil && after == nil) {
		return nil
	}

	cval, _ := val.(ir.Constant)
	if constExpr && cval == nil {
		panic(fmt.Sprintf("retype: constant-fold conversion of non-constant %T", val))
	}

	vt := val.Type()
	var conv ir.Value

	switch {
	case vt.Equal(typ):
		conv = val

	case isPtr(vt) && isPtr(typ):
		if constExpr {
			conv = ir.NewExprConst(ir.Bitcast, cval, typ)
		} else {
			conv = insertBeforeAfter(ir.NewCastInst(ir.Bitcast, val, typ), before, after).(ir.Value)
		}

	case isPtr(vt) && isInt(typ):
		if constExpr {
			conv = ir.NewExprConst(ir.PtrToInt, cval, typ)
		} else {
			conv = insertBeforeAfter(ir.NewCastInst(ir.PtrToInt, val, typ), before, after).(ir.Value)
		}

	case isInt(vt) && isPtr(typ):
		if constExpr {
			conv = ir.NewExprConst(ir.IntToPtr, cval, typ)
		} else {
			conv = insertBeforeAfter(ir.NewCastInst(ir.IntToPtr, val, typ), before, after).(ir.Value)
		}

	case isInt(vt) && isInt(typ):
		if constExpr {
			if ic, ok := cval.(*ir.IntConst); ok {
				conv = ic.Cast(typ.(*ir.IntType))
			} else {
				conv = ir.NewExprConst(ir.IntCast, cval, typ)
			}
		} else {
			conv = insertBeforeAfter(ir.NewCastInst(ir.IntCast, val, typ), before, after).(ir.Value)
		}

	case isInt(vt) && isFloat(typ):
		// Reinterpret through an integer of the float's exact width so
		// the bit pattern is preserved.
		toInt := ir.Int(typ.(*ir.FloatType).Bits)
		szConv := convertToType(val, toInt, before, after, constExpr)
		if constExpr {
			conv = ir.NewExprConst(ir.Bitcast, szConv.(ir.Constant), typ)
		} else {
			a := after
			if szConv != val {
				a = szConv.(ir.Inst)
			}
			conv = insertBeforeAfter(ir.NewCastInst(ir.Bitcast, szConv, typ), before, a).(ir.Value)
		}

	case isPtr(vt) && isFloat(typ):
		toInt := ir.Int(typ.(*ir.FloatType).Bits)
		intConv := convertToType(val, toInt, before, after, constExpr)
		a, _ := intConv.(ir.Inst)
		conv = convertToType(intConv, typ, before, a, constExpr)

	case isFloat(vt) && isInt(typ):
		intT := typ.(*ir.IntType)
		if !ir.ValidFloatWidth(intT.Bits) {
			// No float of the target's width exists; route through a
			// 32-bit pivot instead of materializing an unsupported
			// float type.
			fpConv := convertToType(val, ir.Int(32), before, after, constExpr)
			a, _ := fpConv.(ir.Inst)
			return convertToType(fpConv, intT, before, a, constExpr)
		}
		ft := ir.Float(intT.Bits)
		if !vt.Equal(ft) {
			fpConv := convertToType(val, ft, before, after, constExpr)
			a, _ := fpConv.(ir.Inst)
			conv = convertToType(fpConv, intT, before, a, constExpr)
		} else if constExpr {
			conv = ir.NewExprConst(ir.Bitcast, cval, intT)
		} else {
			conv = insertBeforeAfter(ir.NewCastInst(ir.Bitcast, val, intT), before, after).(ir.Value)
		}

	case isFloat(vt) && isPtr(typ):
		toInt := ir.Int(vt.(*ir.FloatType).Bits)
		intConv := convertToType(val, toInt, before, after, constExpr)
		a, _ := intConv.(ir.Inst)
		conv = convertToType(intConv, typ, before, a, constExpr)

	case isFloat(vt) && isFloat(typ):
		if constExpr {
			conv = ir.NewExprConst(ir.FPCast, cval, typ)
		} else {
			conv = insertBeforeAfter(ir.NewCastInst(ir.FPCast, val, typ), before, after).(ir.Value)
		}

	case isAggregate(vt):
		conv = convertAggregateSource(val, cval, typ, before, after, constExpr)

	case isAggregate(typ):
		conv = convertToAggregate(val, typ.(*ir.AggregateType), before, after, constExpr)

	default:
		panic(fmt.Sprintf("retype: unhandled type conversion from %v to %v", vt, typ))
	}

	return conv
}

// convertAggregateSource normalizes an aggregate-typed source away.
// Aggregate loads and stores cannot exist at the machine-code level,
// so a whole-aggregate load is replaced by a load through a retyped
// address and any other aggregate value decays to its first element.
func convertAggregateSource(val ir.Value, cval ir.Constant, typ ir.Type, before, after ir.Inst, constExpr bool) ir.Value {
	if load, ok := val.(*ir.LoadInst); ok && !constExpr {
		c := convertToType(load.Addr(), ir.Ptr(typ), before, after, false)
		a := after
		if ci, ok := c.(ir.Inst); ok && c != load.Addr() {
			a = ci
		}
		return insertBeforeAfter(ir.NewLoadInst(c), before, a).(ir.Value)
	}

	var toSimple ir.Value
	if constExpr {
		switch cv := cval.(type) {
		case *ir.AggregateConst:
			toSimple = cv.Elem(0)
		case *ir.Undef:
			toSimple = ir.NewUndef(cv.Type().(*ir.AggregateType).Elems[0])
		default:
			panic(fmt.Sprintf("retype: cannot extract first element of constant %T", cval))
		}
	} else {
		toSimple = insertBeforeAfter(ir.NewExtractInst(val, 0), before, after).(ir.Value)
	}
	a, _ := toSimple.(ir.Inst)
	return convertToType(toSimple, typ, before, a, constExpr)
}

// convertToAggregate wraps a value in a single-element aggregate
// construction. Only the first element is set; the remaining elements
// are left undefined.
func convertToAggregate(val ir.Value, cmp *ir.AggregateType, before, after ir.Inst, constExpr bool) ir.Value {
	if len(cmp.Elems) == 0 {
		panic("retype: conversion to empty aggregate type")
	}
	tmp := convertToType(val, cmp.Elems[0], before, after, constExpr)
	if constExpr {
		elems := make([]ir.Constant, len(cmp.Elems))
		elems[0] = tmp.(ir.Constant)
		for i := 1; i < len(elems); i++ {
			elems[i] = ir.NewUndef(cmp.Elems[i])
		}
		return ir.NewAggregateConst(cmp, elems...)
	}
	a := after
	if tmp != val {
		a = tmp.(ir.Inst)
	}
	return insertBeforeAfter(ir.NewInsertInst(ir.NewUndef(cmp), tmp, 0), before, a).(ir.Value)
}

// ConvertValueToType creates a type conversion from the provided value
// to the provided type. Created instructions are inserted before the
// specified instruction.
func ConvertValueToType(val ir.Value, typ ir.Type, before ir.Inst) ir.Value {
	return convertToType(val, typ, before, nil, false)
}

// ConvertValueToTypeAfter creates a type conversion from the provided
// value to the provided type. Created instructions are inserted after
// the specified instruction.
func ConvertValueToTypeAfter(val ir.Value, typ ir.Type, after ir.Inst) ir.Value {
	return convertToType(val, typ, nil, after, false)
}

// ConvertConstantToType is ConvertValueToType for constants. It
// inserts nothing into any code body and only builds new constants.
func ConvertConstantToType(val ir.Constant, typ ir.Type) ir.Constant {
	v := convertToType(val, typ, nil, nil, true)
	if v == nil {
		return nil
	}
	return v.(ir.Constant)
}

func isPtr(t ir.Type) bool {
	_, ok := t.(*ir.PtrType)
	return ok
}

func isInt(t ir.Type) bool {
	_, ok := t.(*ir.IntType)
	return ok
}

func isFloat(t ir.Type) bool {
	_, ok := t.(*ir.FloatType)
	return ok
}

func isAggregate(t ir.Type) bool {
	_, ok := t.(*ir.AggregateType)
	return ok
}
