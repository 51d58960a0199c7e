package ir

import "fmt"

// Declarations are the storage locations of a lifted program: stack
// slots identified by a frame offset, global variables identified by a
// virtual address, and parameters identified by position. Retyping
// replaces the declaration node but preserves its external identity.

// Linkage is the visibility of a global declaration.
type Linkage uint8

// Linkage kinds.
const (
	ExternalLinkage Linkage = iota
	InternalLinkage
)

func (l Linkage) String() string {
	switch l {
	case ExternalLinkage:
		return "external"
	case InternalLinkage:
		return "internal"
	}
	return "linkageerr"
}

// StackSlot is a storage location in a function's frame. It is an
// alloca-like instruction whose value is the slot's address.
type StackSlot struct {
	name   string
	offset int
	elem   Type
	ValueBase
	InstBase
}

// NewStackSlot constructs a detached StackSlot.
func NewStackSlot(name string, offset int, elem Type) *StackSlot {
	return &StackSlot{name: name, offset: offset, elem: elem}
}

// Name returns the slot's display name.
func (slot *StackSlot) Name() string { return slot.name }

// Offset returns the byte offset identifying the slot within its
// function's frame.
func (slot *StackSlot) Offset() int { return slot.offset }

// Elem returns the declared type of the slot's storage.
func (slot *StackSlot) Elem() Type { return slot.elem }

// Type returns the slot's address type.
func (slot *StackSlot) Type() Type { return &PtrType{Elem: slot.elem} }

// OpString pretty prints the op kind.
func (*StackSlot) OpString() string { return "slot" }

// Global is a program-wide storage location at a virtual address. Its
// value is the address, so a Global is also a constant. Its single
// operand is the initializer, which may be nil for an external
// declaration.
type Global struct {
	name     string
	addr     uint64
	elem     Type
	readOnly bool
	linkage  Linkage
	ValueBase
	UserBase
}

// NewGlobal constructs a detached Global. Most callers want
// Module.NewGlobal, which also registers the address.
func NewGlobal(name string, addr uint64, elem Type, readOnly bool, linkage Linkage, init Constant) *Global {
	gv := &Global{name: name, addr: addr, elem: elem, readOnly: readOnly, linkage: linkage}
	var val Value
	if init != nil {
		if !init.Type().Equal(elem) {
			panic(fmt.Sprintf("ir: initializer type %v does not match global type %v", init.Type(), elem))
		}
		val = init
	}
	gv.initOperands(gv, val)
	return gv
}

// Name returns the global's display name.
func (gv *Global) Name() string { return gv.name }

// Addr returns the virtual address identifying the global.
func (gv *Global) Addr() uint64 { return gv.addr }

// Elem returns the declared type of the global's storage.
func (gv *Global) Elem() Type { return gv.elem }

// ReadOnly reports whether the global lives in read-only data.
func (gv *Global) ReadOnly() bool { return gv.readOnly }

// Linkage returns the global's linkage.
func (gv *Global) Linkage() Linkage { return gv.linkage }

// Type returns the global's address type.
func (gv *Global) Type() Type { return &PtrType{Elem: gv.elem} }

// Init returns the initializer constant, or nil if the global is only
// declared.
func (gv *Global) Init() Constant {
	def := gv.Operand(0).Def()
	if def == nil {
		return nil
	}
	return def.(Constant)
}

// SetInit replaces the initializer constant.
func (gv *Global) SetInit(init Constant) {
	if init != nil && !init.Type().Equal(gv.elem) {
		panic(fmt.Sprintf("ir: initializer type %v does not match global type %v", init.Type(), gv.elem))
	}
	if init == nil {
		gv.SetOperand(0, nil)
	} else {
		gv.SetOperand(0, init)
	}
}

func (*Global) constant() {}

// Param is a function parameter declaration.
type Param struct {
	name   string
	index  int
	typ    Type
	parent *Function
	ValueBase
}

// Name returns the parameter's display name.
func (p *Param) Name() string { return p.name }

// Index returns the parameter's position in its function's signature.
func (p *Param) Index() int { return p.index }

// Parent returns the function owning the parameter.
func (p *Param) Parent() *Function { return p.parent }

// Type returns the parameter's type.
func (p *Param) Type() Type { return p.typ }
