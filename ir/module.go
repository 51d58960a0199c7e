package ir

import (
	"fmt"

	"github.com/wollmilch-systems/retdec/internal/digraph"
)

// Module is a whole lifted program: globals in creation order, indexed
// by virtual address, and functions. The graph is process-local shared
// mutable state; callers serialize all mutations.
type Module struct {
	Name    string
	globals []*Global
	byAddr  map[uint64]*Global
	Funcs   []*Function
}

// NewModule constructs an empty Module.
func NewModule(name string) *Module {
	return &Module{Name: name, byAddr: make(map[uint64]*Global)}
}

// NewGlobal constructs a Global and registers it under its address.
// A global created for an address already registered takes over that
// address's identity.
func (m *Module) NewGlobal(name string, addr uint64, elem Type, readOnly bool, linkage Linkage, init Constant) *Global {
	gv := NewGlobal(name, addr, elem, readOnly, linkage, init)
	m.globals = append(m.globals, gv)
	m.byAddr[addr] = gv
	return gv
}

// NewFunction constructs a Function and adds it to the module.
func (m *Module) NewFunction(name string, addr uint64) *Function {
	fn := NewFunction(name, addr)
	m.Funcs = append(m.Funcs, fn)
	return fn
}

// Globals returns the module's globals in creation order.
func (m *Module) Globals() []*Global { return m.globals }

// GlobalAt returns the global registered at a virtual address, or nil.
func (m *Module) GlobalAt(addr uint64) *Global { return m.byAddr[addr] }

// FuncAt returns the function at a virtual address, or nil.
func (m *Module) FuncAt(addr uint64) *Function {
	for _, fn := range m.Funcs {
		if fn.Addr == addr {
			return fn
		}
	}
	return nil
}

// RemoveGlobal disconnects a global's initializer and removes the node
// from the module. The address index is cleared only when it still
// names this node, so removing a superseded declaration keeps its
// replacement registered.
func (m *Module) RemoveGlobal(gv *Global) {
	gv.ClearOperands()
	for i, g := range m.globals {
		if g == gv {
			m.globals = append(m.globals[:i], m.globals[i+1:]...)
			break
		}
	}
	if m.byAddr[gv.Addr()] == gv {
		delete(m.byAddr, gv.Addr())
	}
}

// InitCycles audits every global initializer chain and returns the
// groups of globals whose initializers reach back to themselves. A
// well-formed module returns no groups.
func (m *Module) InitCycles() [][]*Global {
	index := make(map[*Global]int, len(m.globals))
	for i, gv := range m.globals {
		index[gv] = i
	}
	g := make(digraph.Digraph, len(m.globals))
	for i, gv := range m.globals {
		if gv.Init() != nil {
			addInitEdges(g, index, i, gv.Init())
		}
	}
	var cycles [][]*Global
	for _, scc := range g.SCCs() {
		if len(scc) == 1 && !g.HasEdge(scc[0], scc[0]) {
			continue
		}
		group := make([]*Global, len(scc))
		for i, node := range scc {
			group[i] = m.globals[node]
		}
		cycles = append(cycles, group)
	}
	return cycles
}

// addInitEdges walks a constant, following nested constant expressions
// and aggregates, and adds an edge for every referenced global.
func addInitEdges(g digraph.Digraph, index map[*Global]int, from int, c Constant) {
	if gv, ok := c.(*Global); ok {
		g.AddEdge(from, index[gv])
		return
	}
	if user, ok := c.(User); ok {
		for _, operand := range user.Operands() {
			if def := operand.Def(); def != nil {
				addInitEdges(g, index, from, def.(Constant))
			}
		}
	}
}

// Verify checks module-wide well-typedness: function bodies and global
// initializer types.
func (m *Module) Verify() error {
	for _, gv := range m.globals {
		if init := gv.Init(); init != nil && !init.Type().Equal(gv.Elem()) {
			return fmt.Errorf("ir: global %s has initializer of type %v, want %v",
				gv.Name(), init.Type(), gv.Elem())
		}
	}
	for _, fn := range m.Funcs {
		if err := fn.Verify(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) String() string {
	return NewFormatter().FormatModule(m)
}
