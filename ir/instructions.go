package ir

import "fmt"

// Inst is an instruction at a position in a function body.
type Inst interface {
	OpString() string
	Parent() *Function
	setParent(fn *Function)
}

// InstBase stores the owning function of an instruction.
type InstBase struct {
	parent *Function
}

// Parent returns the function whose body holds this instruction, or
// nil if the instruction is detached.
func (inst *InstBase) Parent() *Function { return inst.parent }

func (inst *InstBase) setParent(fn *Function) { inst.parent = fn }

// CastOp is the conversion kind of a cast instruction or constant
// expression.
type CastOp uint8

// Cast operations.
const (
	Bitcast  CastOp = iota + 1 // reinterpret the bit pattern
	PtrToInt                   // pointer to address-width-preserving integer
	IntToPtr                   // integer to pointer
	IntCast                    // signed truncation or extension
	FPCast                     // floating-point width/format cast
)

func (op CastOp) String() string {
	switch op {
	case Bitcast:
		return "bitcast"
	case PtrToInt:
		return "ptrtoint"
	case IntToPtr:
		return "inttoptr"
	case IntCast:
		return "intcast"
	case FPCast:
		return "fpcast"
	}
	return "casterr"
}

// LoadInst is an instruction that loads the value a pointer addresses.
// The result type is fixed at creation and does not follow later
// retypes of the address operand.
type LoadInst struct {
	typ Type
	ValueBase
	UserBase
	InstBase
}

// NewLoadInst constructs a LoadInst from a pointer-typed address.
func NewLoadInst(addr Value) *LoadInst {
	ptr, ok := addr.Type().(*PtrType)
	if !ok {
		panic(fmt.Sprintf("ir: load address has non-pointer type %v", addr.Type()))
	}
	load := &LoadInst{typ: ptr.Elem}
	load.initOperands(load, addr)
	return load
}

// Addr returns the address operand.
func (load *LoadInst) Addr() Value { return load.Operand(0).Def() }

// Type returns the loaded type.
func (load *LoadInst) Type() Type { return load.typ }

// OpString pretty prints the op kind.
func (*LoadInst) OpString() string { return "load" }

// StoreInst is an instruction that stores a value through a pointer.
// Operand 0 is the stored value, operand 1 the address.
type StoreInst struct {
	UserBase
	InstBase
}

// NewStoreInst constructs a StoreInst.
func NewStoreInst(val, addr Value) *StoreInst {
	store := &StoreInst{}
	store.initOperands(store, val, addr)
	return store
}

// Val returns the stored value operand.
func (store *StoreInst) Val() Value { return store.Operand(0).Def() }

// Addr returns the address operand.
func (store *StoreInst) Addr() Value { return store.Operand(1).Def() }

// OpString pretty prints the op kind.
func (*StoreInst) OpString() string { return "store" }

// CastInst is a type conversion instruction.
type CastInst struct {
	Op  CastOp
	typ Type
	ValueBase
	UserBase
	InstBase
}

// NewCastInst constructs a CastInst converting a value to a type.
func NewCastInst(op CastOp, val Value, to Type) *CastInst {
	cast := &CastInst{Op: op, typ: to}
	cast.initOperands(cast, val)
	return cast
}

// Arg returns the converted operand.
func (cast *CastInst) Arg() Value { return cast.Operand(0).Def() }

// Type returns the conversion's target type.
func (cast *CastInst) Type() Type { return cast.typ }

// OpString pretty prints the op kind.
func (cast *CastInst) OpString() string { return cast.Op.String() }

// ExtractInst extracts an element from an aggregate value.
type ExtractInst struct {
	Index int
	typ   Type
	ValueBase
	UserBase
	InstBase
}

// NewExtractInst constructs an ExtractInst.
func NewExtractInst(agg Value, index int) *ExtractInst {
	at, ok := agg.Type().(*AggregateType)
	if !ok || index >= len(at.Elems) {
		panic(fmt.Sprintf("ir: cannot extract element %d from %v", index, agg.Type()))
	}
	extract := &ExtractInst{Index: index, typ: at.Elems[index]}
	extract.initOperands(extract, agg)
	return extract
}

// Agg returns the aggregate operand.
func (extract *ExtractInst) Agg() Value { return extract.Operand(0).Def() }

// Type returns the extracted element type.
func (extract *ExtractInst) Type() Type { return extract.typ }

// OpString pretty prints the op kind.
func (*ExtractInst) OpString() string { return "extract" }

// InsertInst inserts an element into an aggregate value. Operand 0 is
// the aggregate, operand 1 the element.
type InsertInst struct {
	Index int
	typ   Type
	ValueBase
	UserBase
	InstBase
}

// NewInsertInst constructs an InsertInst.
func NewInsertInst(agg, elem Value, index int) *InsertInst {
	at, ok := agg.Type().(*AggregateType)
	if !ok || index >= len(at.Elems) {
		panic(fmt.Sprintf("ir: cannot insert element %d into %v", index, agg.Type()))
	}
	insert := &InsertInst{Index: index, typ: at}
	insert.initOperands(insert, agg, elem)
	return insert
}

// Agg returns the aggregate operand.
func (insert *InsertInst) Agg() Value { return insert.Operand(0).Def() }

// Elem returns the inserted element operand.
func (insert *InsertInst) Elem() Value { return insert.Operand(1).Def() }

// Type returns the aggregate type.
func (insert *InsertInst) Type() Type { return insert.typ }

// OpString pretty prints the op kind.
func (*InsertInst) OpString() string { return "insert" }

// BinOp is the operator kind of a binary instruction.
type BinOp uint8

// Binary operations.
const (
	Add BinOp = iota + 1
	Sub
	Mul
	Div
	And
	Or
	Xor
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "div"
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	}
	return "binaryerr"
}

// BinInst is an arithmetic instruction with two operands. The result
// type is the left operand's type at creation.
type BinInst struct {
	Op  BinOp
	typ Type
	ValueBase
	UserBase
	InstBase
}

// NewBinInst constructs a BinInst.
func NewBinInst(op BinOp, lhs, rhs Value) *BinInst {
	bin := &BinInst{Op: op, typ: lhs.Type()}
	bin.initOperands(bin, lhs, rhs)
	return bin
}

// Type returns the result type.
func (bin *BinInst) Type() Type { return bin.typ }

// OpString pretty prints the op kind.
func (bin *BinInst) OpString() string { return bin.Op.String() }

// RetInst marks the end of a function body. It produces no result;
// the single operand, when present, is the returned value.
type RetInst struct {
	UserBase
	InstBase
}

// NewRetInst constructs a RetInst. A nil val makes a void return.
func NewRetInst(val Value) *RetInst {
	ret := &RetInst{}
	if val != nil {
		ret.initOperands(ret, val)
	}
	return ret
}

// Value returns the returned value, or nil for a void return.
func (ret *RetInst) Value() Value {
	if ret.NOperands() == 0 {
		return nil
	}
	return ret.Operand(0).Def()
}

// OpString pretty prints the op kind.
func (*RetInst) OpString() string { return "ret" }
