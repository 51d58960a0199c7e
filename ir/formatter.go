package ir

import (
	"fmt"
	"strings"
)

// Formatter pretty prints the program graph with stable value
// numbering.
type Formatter struct {
	ids    map[Value]int
	nextID int
}

// NewFormatter constructs a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		ids:    make(map[Value]int),
		nextID: 0,
	}
}

// FormatModule pretty prints a Module.
func (f *Formatter) FormatModule(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", m.Name)
	for _, gv := range m.Globals() {
		b.WriteByte('\n')
		b.WriteString(f.FormatGlobal(gv))
	}
	for _, fn := range m.Funcs {
		b.WriteByte('\n')
		b.WriteString(f.FormatFunction(fn))
	}
	return b.String()
}

// FormatGlobal pretty prints a global declaration.
func (f *Formatter) FormatGlobal(gv *Global) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s = ", gv.Name())
	if gv.Linkage() != ExternalLinkage {
		fmt.Fprintf(&b, "%v ", gv.Linkage())
	}
	if gv.ReadOnly() {
		b.WriteString("constant ")
	} else {
		b.WriteString("global ")
	}
	b.WriteString(gv.Elem().String())
	if gv.Init() != nil {
		b.WriteByte(' ')
		b.WriteString(f.FormatValue(gv.Init()))
	}
	fmt.Fprintf(&b, " ; 0x%x\n", gv.Addr())
	return b.String()
}

// FormatFunction pretty prints a Function.
func (f *Formatter) FormatFunction(fn *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func %s(", fn.Name)
	for i, p := range fn.Params() {
		if i != 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %v", f.FormatValue(p), p.Type())
	}
	b.WriteString(") {\n")
	for _, inst := range fn.Insts() {
		b.WriteString("    ")
		b.WriteString(f.FormatInst(inst))
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// FormatInst pretty prints an Inst.
func (f *Formatter) FormatInst(inst Inst) string {
	var b strings.Builder
	if val, ok := inst.(Value); ok {
		b.WriteString(f.FormatValue(val))
		b.WriteString(" = ")
	}
	b.WriteString(inst.OpString())
	if slot, ok := inst.(*StackSlot); ok {
		fmt.Fprintf(&b, " %v, offset %d", slot.Elem(), slot.Offset())
		return b.String()
	}
	if user, ok := inst.(User); ok {
		for _, op := range user.Operands() {
			b.WriteByte(' ')
			if op == nil || op.Def() == nil {
				b.WriteString("<nil>")
			} else {
				b.WriteString(f.FormatValue(op.Def()))
			}
		}
	}
	switch inst := inst.(type) {
	case *CastInst:
		fmt.Fprintf(&b, " to %v", inst.Type())
	case *ExtractInst:
		fmt.Fprintf(&b, " %d", inst.Index)
	case *InsertInst:
		fmt.Fprintf(&b, " %d", inst.Index)
	}
	return b.String()
}

// FormatValue pretty prints a value. Named declarations print by name,
// constants by content, and instruction results by a stable local
// number.
func (f *Formatter) FormatValue(val Value) string {
	switch v := val.(type) {
	case *IntConst:
		return v.Int().String()
	case *FloatConst:
		return fmt.Sprintf("0x%s:%v", v.Bits().Text(16), v.Type())
	case *Undef:
		return "undef"
	case *Global:
		return "@" + v.Name()
	case *StackSlot:
		return "%" + v.Name()
	case *Param:
		return "%" + v.Name()
	case *AggregateConst:
		var b strings.Builder
		b.WriteByte('{')
		for i, op := range v.Operands() {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.FormatValue(op.Def()))
		}
		b.WriteByte('}')
		return b.String()
	case *ExprConst:
		var b strings.Builder
		fmt.Fprintf(&b, "%s(%s to %v)", v.Op, f.FormatValue(v.Arg()), v.Type())
		return b.String()
	}
	var id int
	if vid, ok := f.ids[val]; ok {
		id = vid
	} else {
		id = f.nextID
		f.ids[val] = f.nextID
		f.nextID++
	}
	return fmt.Sprintf("%%%d", id)
}
