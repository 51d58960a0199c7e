package ir

import "fmt"

// Function is a linear code body with parameters and frame slots.
// Instructions have well-defined predecessor and successor positions
// for insertion.
type Function struct {
	Name   string
	Addr   uint64
	params []*Param
	insts  []Inst
	slots  map[int]*StackSlot
}

// NewFunction constructs an empty Function.
func NewFunction(name string, addr uint64) *Function {
	return &Function{Name: name, Addr: addr, slots: make(map[int]*StackSlot)}
}

// AddParam appends a parameter to the function signature.
func (fn *Function) AddParam(name string, typ Type) *Param {
	p := &Param{name: name, index: len(fn.params), typ: typ, parent: fn}
	fn.params = append(fn.params, p)
	return p
}

// Params returns the function's parameters.
func (fn *Function) Params() []*Param { return fn.params }

// Param returns the nth parameter.
func (fn *Function) Param(n int) *Param { return fn.params[n] }

// ChangeParamType replaces a parameter's declaration with one of a new
// type at the same position. Uses of the old parameter are not
// repaired here.
func (fn *Function) ChangeParamType(old *Param, typ Type) *Param {
	for i, p := range fn.params {
		if p == old {
			np := &Param{name: old.name, index: i, typ: typ, parent: fn}
			fn.params[i] = np
			return np
		}
	}
	panic(fmt.Sprintf("ir: parameter %s not in function %s", old.Name(), fn.Name))
}

// Insts returns the function body in execution order.
func (fn *Function) Insts() []Inst { return fn.insts }

// NInsts returns the number of instructions in the body.
func (fn *Function) NInsts() int { return len(fn.insts) }

// Append adds an instruction at the end of the body.
func (fn *Function) Append(inst Inst) {
	fn.adopt(inst)
	fn.insts = append(fn.insts, inst)
}

// PushFront adds an instruction at the start of the body.
func (fn *Function) PushFront(inst Inst) {
	fn.adopt(inst)
	fn.insts = append([]Inst{inst}, fn.insts...)
}

// InsertBefore inserts an instruction immediately before ref.
func (fn *Function) InsertBefore(inst, ref Inst) {
	fn.insertAt(inst, fn.indexOf(ref))
}

// InsertAfter inserts an instruction immediately after ref.
func (fn *Function) InsertAfter(inst, ref Inst) {
	fn.insertAt(inst, fn.indexOf(ref)+1)
}

func (fn *Function) insertAt(inst Inst, i int) {
	fn.adopt(inst)
	fn.insts = append(fn.insts, nil)
	copy(fn.insts[i+1:], fn.insts[i:])
	fn.insts[i] = inst
}

func (fn *Function) adopt(inst Inst) {
	if inst.Parent() != nil {
		panic(fmt.Sprintf("ir: instruction %s already has a parent", inst.OpString()))
	}
	inst.setParent(fn)
}

func (fn *Function) indexOf(ref Inst) int {
	for i, inst := range fn.insts {
		if inst == ref {
			return i
		}
	}
	panic(fmt.Sprintf("ir: instruction %s not in function %s", ref.OpString(), fn.Name))
}

// EraseInst disconnects an instruction from the graph and removes it
// from the body. The instruction must have no remaining uses.
func (fn *Function) EraseInst(inst Inst) {
	if val, ok := inst.(Value); ok && val.NUses() != 0 {
		panic(fmt.Sprintf("ir: erasing %s with %d remaining uses", inst.OpString(), val.NUses()))
	}
	if user, ok := inst.(User); ok {
		user.ClearOperands()
	}
	i := fn.indexOf(inst)
	fn.insts = append(fn.insts[:i], fn.insts[i+1:]...)
	inst.setParent(nil)
	if slot, ok := inst.(*StackSlot); ok && fn.slots[slot.Offset()] == slot {
		delete(fn.slots, slot.Offset())
	}
}

// Slot returns the stack slot registered at a frame offset, or nil.
func (fn *Function) Slot(offset int) *StackSlot { return fn.slots[offset] }

// AddSlot registers a stack slot under its frame offset, replacing any
// previous registration. The slot keeps the offset as its identity
// across retypes.
func (fn *Function) AddSlot(slot *StackSlot) {
	fn.slots[slot.Offset()] = slot
}

// Verify checks that every operand reference in the body is well
// typed.
func (fn *Function) Verify() error {
	for _, inst := range fn.insts {
		switch inst := inst.(type) {
		case *LoadInst:
			ptr, ok := inst.Addr().Type().(*PtrType)
			if !ok || !ptr.Elem.Equal(inst.Type()) {
				return fmt.Errorf("ir: %s: load of type %v from address of type %v",
					fn.Name, inst.Type(), inst.Addr().Type())
			}
		case *StoreInst:
			ptr, ok := inst.Addr().Type().(*PtrType)
			if !ok || !ptr.Elem.Equal(inst.Val().Type()) {
				return fmt.Errorf("ir: %s: store of type %v to address of type %v",
					fn.Name, inst.Val().Type(), inst.Addr().Type())
			}
		case *BinInst:
			if !inst.Operand(0).Def().Type().Equal(inst.Operand(1).Def().Type()) {
				return fmt.Errorf("ir: %s: %s operand types %v and %v differ", fn.Name,
					inst.OpString(), inst.Operand(0).Def().Type(), inst.Operand(1).Def().Type())
			}
		}
		if user, ok := inst.(User); ok {
			for i, operand := range user.Operands() {
				if operand.Def() == nil {
					return fmt.Errorf("ir: %s: %s has nil operand %d", fn.Name, inst.OpString(), i)
				}
			}
		}
	}
	return nil
}

func (fn *Function) String() string {
	return NewFormatter().FormatFunction(fn)
}
