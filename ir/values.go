// Package ir implements the typed, mutable def-use graph of a lifted
// program.
//
// Every node carries a Type; the engine's single well-typedness
// invariant is that each operand reference matches the type the
// referrer expects at that position. Use edges are bidirectional:
// given any value, the current set of its referrers can be enumerated
// and rewritten.
package ir

// Value is a node that produces or denotes a typed value and tracks
// the set of its uses.
type Value interface {
	Type() Type
	Uses() []*ValueUse
	NUses() int
	AddUse(use *ValueUse)
	RemoveUse(use *ValueUse) bool
	ReplaceUsesWith(other Value)
}

// User is a node that holds operand references to other values.
// Instructions, constant expressions and global-variable initializers
// are users.
type User interface {
	Operands() []*ValueUse
	NOperands() int
	Operand(n int) *ValueUse
	SetOperand(n int, val Value)
	ClearOperands()
	UsesValue(val Value) bool
	ReplaceUsesOfWith(old, new Value)
}

// Constant is a compile-time-fixed value.
type Constant interface {
	Value
	constant()
}

// ValueUse is an edge between a value definition and a referrer.
type ValueUse struct {
	def     Value
	user    User
	operand int
}

// Def returns the value definition.
func (use *ValueUse) Def() Value { return use.def }

// SetDef replaces the value definition and updates use lists.
func (use *ValueUse) SetDef(def Value) {
	if use.def != def {
		if use.def != nil {
			use.def.RemoveUse(use)
		}
		if def != nil {
			def.AddUse(use)
		}
		use.def = def
	}
}

// User returns the referrer and the operand position within it.
func (use *ValueUse) User() (User, int) { return use.user, use.operand }

// ValueBase implements the use-tracking half of the Value interface.
type ValueBase struct {
	uses []*ValueUse
}

// Uses returns the set of edges referring to this value.
func (val *ValueBase) Uses() []*ValueUse { return val.uses }

// NUses returns the number of uses.
func (val *ValueBase) NUses() int { return len(val.uses) }

// AddUse adds a use edge to the value.
func (val *ValueBase) AddUse(use *ValueUse) {
	val.uses = append(val.uses, use)
}

// RemoveUse removes a use from the use list.
func (val *ValueBase) RemoveUse(use *ValueUse) bool {
	for i := range val.uses {
		if val.uses[i] == use {
			for ; i+1 < len(val.uses); i++ {
				val.uses[i] = val.uses[i+1]
			}
			val.uses = val.uses[:len(val.uses)-1]
			return true
		}
	}
	return false
}

// ReplaceUsesWith redirects all uses of this value to other.
func (val *ValueBase) ReplaceUsesWith(other Value) {
	for _, use := range val.uses {
		use.def = other
		other.AddUse(use)
	}
	val.uses = val.uses[:0]
}

// UserBase implements the User interface.
type UserBase struct {
	operands  []*ValueUse
	operands2 [2]*ValueUse // storage for operands
}

// Operands returns the user's operands.
func (user *UserBase) Operands() []*ValueUse {
	operands := make([]*ValueUse, len(user.operands))
	copy(operands, user.operands)
	return operands
}

// NOperands returns the number of operands.
func (user *UserBase) NOperands() int { return len(user.operands) }

// Operand returns the specified operand.
func (user *UserBase) Operand(n int) *ValueUse { return user.operands[n] }

// SetOperand sets the specified operand to a value and updates the use
// lists.
func (user *UserBase) SetOperand(n int, val Value) {
	operand := user.operands[n]
	if operand.def != val {
		if operand.def != nil {
			operand.def.RemoveUse(operand)
		}
		if val != nil {
			val.AddUse(operand)
		}
		operand.def = val
	}
}

// initOperands initializes user operands. User is passed as a
// parameter because ValueUse needs the full User, not the embedded
// UserBase.
func (user *UserBase) initOperands(u User, vals ...Value) {
	if len(vals) <= len(user.operands2) {
		user.operands = user.operands2[:len(vals)]
	} else {
		user.operands = make([]*ValueUse, len(vals))
	}
	for i, val := range vals {
		user.operands[i] = &ValueUse{val, u, i}
		if val != nil {
			val.AddUse(user.operands[i])
		}
	}
}

// ClearOperands clears all operands and removes the uses.
func (user *UserBase) ClearOperands() {
	for _, operand := range user.operands {
		if operand.def != nil {
			operand.def.RemoveUse(operand)
			operand.def = nil
		}
	}
}

// UsesValue returns whether an operand uses the value.
func (user *UserBase) UsesValue(val Value) bool {
	for _, operand := range user.operands {
		if operand.def == val {
			return true
		}
	}
	return false
}

// ReplaceUsesOfWith rewrites every operand referencing old to new.
func (user *UserBase) ReplaceUsesOfWith(old, new Value) {
	for n, operand := range user.operands {
		if operand.def == old {
			user.SetOperand(n, new)
		}
	}
}
