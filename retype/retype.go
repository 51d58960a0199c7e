package retype

import (
	"fmt"
	"strings"

	"github.com/wollmilch-systems/retdec/abi"
	"github.com/wollmilch-systems/retdec/config"
	"github.com/wollmilch-systems/retdec/ir"
	"github.com/wollmilch-systems/retdec/loader"
)

// Modifier mutates a program graph and keeps the reconstruction
// configuration in sync with the mutations.
type Modifier struct {
	module *ir.Module
	config *config.Config
	arch   abi.Arch
}

// NewModifier constructs a Modifier.
func NewModifier(m *ir.Module, cfg *config.Config, arch abi.Arch) *Modifier {
	return &Modifier{module: m, config: cfg, arch: arch}
}

// EraseSet collects instructions scheduled for deferred erasure.
// Callers iterating the instruction stream pass one so obsolete
// instructions stay physically present until the caller's pass is
// finished.
type EraseSet map[ir.Inst]struct{}

// Add schedules an instruction for erasure.
func (s EraseSet) Add(inst ir.Inst) { s[inst] = struct{}{} }

// EraseAll erases every scheduled instruction from its function.
func (s EraseSet) EraseAll() {
	for inst := range s {
		if inst.Parent() != nil {
			inst.Parent().EraseInst(inst)
		}
	}
}

// declaredType returns the storage type of a declaration: the pointee
// type for stack slots and globals, the value type for parameters.
func declaredType(val ir.Value) ir.Type {
	switch val := val.(type) {
	case *ir.StackSlot:
		return val.Elem()
	case *ir.Global:
		return val.Elem()
	case *ir.Param:
		return val.Type()
	}
	panic(fmt.Sprintf("retype: %T is not a retypable declaration", val))
}

// changeDeclarationType changes a declaration's type without touching
// its referrers, so it is never safe to call alone. It returns the
// replacement declaration node.
func (m *Modifier) changeDeclarationType(img loader.Image, val ir.Value, toType ir.Type, init ir.Constant) ir.Value {
	switch val := val.(type) {
	case *ir.StackSlot:
		slot := ir.NewStackSlot(val.Name(), val.Offset(), toType)
		fn := val.Parent()
		fn.PushFront(slot)
		if fn.Slot(val.Offset()) == val {
			fn.AddSlot(slot)
		}
		return slot

	case *ir.Global:
		if init == nil {
			init = img.ReadConstant(toType, val.Addr())
		}
		elem := toType
		if init != nil {
			elem = init.Type()
		}
		gv := m.module.NewGlobal(val.Name(), val.Addr(), elem, val.ReadOnly(), val.Linkage(), init)
		m.config.SetGlobalType(val.Addr(), elem.String())
		return gv

	case *ir.Param:
		return val.Parent().ChangeParamType(val, toType)
	}
	panic(fmt.Sprintf("retype: %T is not a retypable declaration", val))
}

// ChangeObjectType changes a declaration's type to toType and repairs
// all its uses, erasing obsolete instructions immediately. init, when
// non-nil, becomes the new initializer of a global declaration.
func (m *Modifier) ChangeObjectType(img loader.Image, val ir.Value, toType ir.Type, init ir.Constant) ir.Value {
	return m.changeObjectType(img, val, toType, init, nil)
}

// ChangeObjectTypeDeferred is ChangeObjectType with caller-owned
// deletion: obsolete instructions are added to toErase and left in
// their code bodies, so iteration state held by the caller stays
// valid. The old declaration is detached only once the caller erases
// the scheduled instructions.
func (m *Modifier) ChangeObjectTypeDeferred(img loader.Image, val ir.Value, toType ir.Type, init ir.Constant, toErase EraseSet) ir.Value {
	return m.changeObjectType(img, val, toType, init, toErase)
}

func (m *Modifier) changeObjectType(img loader.Image, val ir.Value, toType ir.Type, init ir.Constant, toErase EraseSet) ir.Value {
	switch val.(type) {
	case *ir.StackSlot, *ir.Global, *ir.Param:
	default:
		panic(fmt.Sprintf("retype: only stack slots, globals and parameters can be retyped, got %T", val))
	}

	if declaredType(val).Equal(toType) {
		return val
	}

	origType := val.Type()
	nval := m.changeDeclarationType(img, val, toType, init)
	newConst, _ := nval.(ir.Constant)

	erase := func(inst ir.Inst) {
		if toErase != nil {
			toErase.Add(inst)
		} else {
			inst.Parent().EraseInst(inst)
		}
	}

	// Repairing one use can perturb enumeration of the rest, so the
	// complete referrer set is snapshotted first.
	var users []ir.User
	seen := make(map[ir.User]bool)
	for _, use := range val.Uses() {
		if user, _ := use.User(); user != nil && !seen[user] {
			seen[user] = true
			users = append(users, user)
		}
	}

	for _, user := range users {
		switch user := user.(type) {
		case *ir.StoreInst:
			if user.Addr() == val {
				ptr, ok := nval.Type().(*ir.PtrType)
				if !ok {
					panic(fmt.Sprintf("retype: store destination retyped to non-pointer %v", nval.Type()))
				}
				conv := ConvertValueToType(user.Val(), ptr.Elem, user)
				user.SetOperand(0, conv)
				user.SetOperand(1, nval)
			} else {
				// The declaration is the stored value, not the
				// destination.
				conv := ConvertValueToType(nval, origType, user)
				user.SetOperand(0, conv)
			}

		case *ir.LoadInst:
			if user.Addr() != val {
				panic("retype: load uses declaration other than as its address")
			}
			newLoad := ir.NewLoadInst(nval)
			user.Parent().InsertBefore(newLoad, user)

			// The old load keeps its original result type even though
			// the declaration's type changed, so it serves as the
			// conversion target; the old load itself is obsolete.
			conv := ConvertValueToType(newLoad, user.Type(), user)
			if conv != ir.Value(user) {
				user.ReplaceUsesWith(conv)
				erase(user)
			}

		case *ir.CastInst:
			if nval.Type().Equal(user.Type()) {
				if ir.Value(user) != val {
					user.ReplaceUsesWith(nval)
					erase(user)
				}
			} else {
				conv := ConvertValueToType(nval, user.Type(), user)
				if conv != ir.Value(user) {
					user.ReplaceUsesWith(conv)
					erase(user)
				}
			}

		case *ir.Global:
			// An initializer of another global references this
			// declaration.
			if newConst == nil {
				panic(fmt.Sprintf("retype: unhandled use of %T in global initializer", val))
			}
			conv := ConvertConstantToType(newConst, user.Elem())
			if ir.Value(conv) != ir.Value(user) {
				user.ReplaceUsesOfWith(val, conv)
			}

		case ir.Inst:
			conv := ConvertValueToType(nval, origType, user)
			if conv != val {
				user.(ir.User).ReplaceUsesOfWith(val, conv)
			}

		default:
			// Checked last: many node kinds are also constants.
			c, isConst := user.(ir.Constant)
			if newConst == nil || !isConst {
				panic(fmt.Sprintf("retype: unhandled use %T -> %v", user, toType))
			}
			conv := ConvertConstantToType(newConst, c.Type())
			if ir.Value(conv) != ir.Value(c) {
				c.ReplaceUsesWith(conv)
				if c.NUses() == 0 {
					user.ClearOperands()
				}
			}
		}
	}

	m.detachIfUnused(val)
	return nval
}

// detachIfUnused disconnects a fully migrated declaration from the
// graph. With deferred deletion the old declaration may still be
// referenced by scheduled instructions and stays until they are
// erased.
func (m *Modifier) detachIfUnused(val ir.Value) {
	if val.NUses() != 0 {
		return
	}
	switch val := val.(type) {
	case *ir.StackSlot:
		if val.Parent() != nil {
			val.Parent().EraseInst(val)
		}
	case *ir.Global:
		m.module.RemoveGlobal(val)
	}
}

// GetStackVariable returns the stack variable of fn at a frame offset,
// creating it, positioning it at the start of the body and recording
// it in the configuration on first reference. The offset is always
// appended to the display name. Types that cannot be a storage element
// fall back to the architecture's default type.
func (m *Modifier) GetStackVariable(fn *ir.Function, offset int, typ ir.Type, name string) (*ir.StackSlot, *config.StackVar) {
	if !ir.ValidElemType(typ) {
		typ = m.arch.DefaultType()
	}
	if name == "" {
		name = "stack_var"
	}
	name = fmt.Sprintf("%s_%d", name, offset)

	if slot := fn.Slot(offset); slot != nil {
		sv := m.config.StackVarAt(fn.Name, offset)
		if sv == nil {
			panic(fmt.Sprintf("retype: stack slot %s has no config entry", slot.Name()))
		}
		return slot, sv
	}

	slot := ir.NewStackSlot(name, offset, typ)
	fn.PushFront(slot)
	fn.AddSlot(slot)
	sv := m.config.InsertStackVar(&config.StackVar{
		Func:   fn.Name,
		Offset: offset,
		Name:   name,
		Type:   typ.String(),
	})
	return slot, sv
}

// CreateAlloca creates an unnamed-offset stack slot at the start of a
// function body, or returns nil if the function has no body.
func (m *Modifier) CreateAlloca(fn *ir.Function, typ ir.Type, name string) *ir.StackSlot {
	if fn.NInsts() == 0 {
		return nil
	}
	slot := ir.NewStackSlot(name, 0, typ)
	fn.PushFront(slot)
	return slot
}

// RenameFunction renames a function, normalizing the name into an
// identifier, and moves its configuration record along.
func (m *Modifier) RenameFunction(fn *ir.Function, name string) *config.Function {
	n := normalizeName(name)
	if n == fn.Name {
		return m.config.FuncByName(n)
	}
	old := fn.Name
	fn.Name = n
	if cf := m.config.RenameFunc(old, n); cf != nil {
		return cf
	}
	return m.config.InsertFunc(&config.Function{Name: n, Addr: fn.Addr})
}

// Localize turns a store through a pointer object into a definition of
// a fresh local slot and redirects the given uses of the pointer to
// it.
func (m *Modifier) Localize(def *ir.StoreInst, uses []ir.Inst) bool {
	ptr := def.Addr()
	elem, ok := ptr.Type().(*ir.PtrType)
	if !ok {
		return false
	}
	fn := def.Parent()

	local := ir.NewStackSlot("local", 0, elem.Elem)
	fn.PushFront(local)

	store := ir.NewStoreInst(def.Val(), local)
	fn.InsertBefore(store, def)
	fn.EraseInst(def)

	for _, u := range uses {
		u.(ir.User).ReplaceUsesOfWith(ptr, local)
	}
	return true
}

// normalizeName rewrites a name into a valid identifier prefix.
func normalizeName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
			b.WriteRune(r)
		case '0' <= r && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
