package retype

import (
	"fmt"

	"github.com/wollmilch-systems/retdec/config"
	"github.com/wollmilch-systems/retdec/ir"
	"github.com/wollmilch-systems/retdec/loader"
)

// DebugInfo answers queries against debugging information shipped with
// the binary. Debug records win over recorded configuration entries.
type DebugInfo interface {
	// GlobalVarAt returns the source name and type of the global
	// variable at an address, if debug info describes one.
	GlobalVarAt(addr uint64) (name string, typ ir.Type, ok bool)
}

// CanMaterializeGlobal reports whether an address should become a
// global variable. Addresses in data regions always qualify. An
// address in a code region qualifies only with evidence that data
// actually lives there: a clean null-terminated string, or a machine
// word at the address or one word to either side that itself addresses
// image data. Without evidence, architectures that mix data into code
// streams are still accepted unless strict is set.
//
// Materializing every referenced address produces heaps of spurious
// variables that are really code or padding, which is why the code
// side is gated at all.
func (m *Modifier) CanMaterializeGlobal(img loader.Image, addr uint64, strict bool) bool {
	if !img.HasData(addr) {
		return false
	}
	seg := img.SegmentAt(addr)
	inCode := (seg != nil && seg.IsCode()) || m.config.FuncAt(addr) != nil
	if !inCode {
		return true
	}
	if s, ok := img.NTBS(addr); ok && loader.IsNiceString(s, 1.0) {
		return true
	}
	wb := uint64(img.WordBytes())
	for _, a := range []uint64{addr, addr + wb, addr - wb} {
		if w, ok := img.Word(a); ok && img.HasData(w) {
			return true
		}
	}
	return m.arch.DataAdjacentToCode() && !strict
}

// breakInitCycle returns an initializer for gv that is guaranteed not
// to reach gv through a chain of global references. When the candidate
// chain loops back to gv, the offending reference is replaced by a
// concrete scalar read straight from the image. A nil result means the
// image could not supply that scalar and materialization must be
// deferred.
func (m *Modifier) breakInitCycle(img loader.Image, gv *ir.Global, init ir.Constant, addr uint64) ir.Constant {
	cur := init
	seen := make(map[*ir.Global]bool)
	for {
		ref, ok := cur.(*ir.Global)
		if !ok {
			return init
		}
		if ref == gv || seen[ref] {
			return img.ReadConstant(m.arch.DefaultType(), addr)
		}
		seen[ref] = true
		next := ref.Init()
		if next == nil {
			return init
		}
		cur = next
	}
}

// GetGlobalVariable returns the global variable at an address,
// materializing it on first reference. The address is appended to the
// display name; an empty name defaults to "global_var". A name and
// type recorded in debug info win over a recorded configuration
// entry, which wins over the architecture default; the initializer is
// read from the image. A nil global means the address was rejected by the
// materialization gate or its initializer could not be read yet.
func (m *Modifier) GetGlobalVariable(img loader.Image, dbg DebugInfo, addr uint64, strict bool, name string) (*ir.Global, *config.Global) {
	if !m.CanMaterializeGlobal(img, addr, strict) {
		return nil, nil
	}
	if gv := m.module.GlobalAt(addr); gv != nil {
		return gv, m.config.GlobalAt(addr)
	}

	if name == "" {
		name = "global_var"
	}
	name = appendHex(name, addr)
	typ := ir.Type(m.arch.DefaultType())
	readOnly := img.HasReadOnlyData(addr)
	fromDebug := false
	realName := ""

	if dbg != nil {
		if n, t, ok := dbg.GlobalVarAt(addr); ok {
			if n != "" {
				realName = n
				name = normalizeName(n)
			}
			if ir.ValidElemType(t) {
				typ = t
			}
			fromDebug = true
		}
	}
	if !fromDebug {
		if ce := m.config.GlobalAt(addr); ce != nil {
			if ce.Name != "" {
				realName = ce.Name
				name = normalizeName(ce.Name)
			}
			if ce.Type != "" {
				if t, err := ir.ParseType(ce.Type); err == nil && ir.ValidElemType(t) {
					typ = t
				}
			}
			fromDebug = true
		}
	}

	// The global is registered before its initializer is read so a
	// word at addr pointing back to addr resolves to the new global
	// and the cycle breaker can see it.
	gv := m.module.NewGlobal(name, addr, typ, readOnly, ir.InternalLinkage, nil)

	var init ir.Constant
	if fromDebug || !typ.Equal(m.arch.DefaultType()) {
		init = img.ReadConstant(typ, addr)
	} else {
		init = img.ReadPointer(m.module, addr)
	}
	init = m.breakInitCycle(img, gv, init, addr)

	cg := &config.Global{
		Name:      name,
		Addr:      addr,
		FromDebug: fromDebug,
		RealName:  realName,
	}
	if init == nil {
		// Leave the uninitialized declaration in place so a later run
		// with more of the image mapped can finish the job.
		cg.Type = typ.String()
		return nil, m.config.InsertGlobal(cg)
	}

	if !init.Type().Equal(gv.Elem()) {
		m.module.RemoveGlobal(gv)
		gv = m.module.NewGlobal(name, addr, init.Type(), readOnly, ir.InternalLinkage, init)
	} else {
		gv.SetInit(init)
	}
	cg.Type = gv.Elem().String()
	return gv, m.config.InsertGlobal(cg)
}

func appendHex(name string, addr uint64) string {
	return fmt.Sprintf("%s_%x", name, addr)
}
