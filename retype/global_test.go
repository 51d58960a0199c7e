package retype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wollmilch-systems/retdec/abi"
	"github.com/wollmilch-systems/retdec/config"
	"github.com/wollmilch-systems/retdec/ir"
	"github.com/wollmilch-systems/retdec/loader"
)

type debugStub struct {
	addr uint64
	name string
	typ  ir.Type
}

func (d *debugStub) GlobalVarAt(addr uint64) (string, ir.Type, bool) {
	if addr != d.addr {
		return "", nil, false
	}
	return d.name, d.typ, true
}

func gateImage() *loader.MemImage {
	return loader.NewMemImage(4,
		// Code with a clean string at 0x1004 and a word at 0x1010
		// addressing the data segment.
		&loader.Segment{Addr: 0x1000, Data: []byte{
			0x90, 0x90, 0x90, 0x90,
			'h', 'e', 'l', 'l', 'o', 0x00, 0x01, 0x02,
			0x01, 0x02, 0x03, 0x04,
			0x00, 0x80, 0x00, 0x00,
			0x01, 0x02, 0x03, 0x04,
		}, Kind: loader.SegCode},
		&loader.Segment{Addr: 0x8000, Data: []byte{
			0x2A, 0x00, 0x00, 0x00,
		}, Kind: loader.SegData},
	)
}

func TestCanMaterializeGlobal(t *testing.T) {
	img := gateImage()
	mod := NewModifier(ir.NewModule("prog"), config.New(), abi.X86)

	// Data addresses always qualify; unmapped addresses never do.
	assert.True(t, mod.CanMaterializeGlobal(img, 0x8000, true))
	assert.False(t, mod.CanMaterializeGlobal(img, 0x9000, false))

	// Code addresses need evidence: a clean string or a word nearby
	// addressing data.
	assert.True(t, mod.CanMaterializeGlobal(img, 0x1004, true))
	assert.True(t, mod.CanMaterializeGlobal(img, 0x1010, true))

	// 0x1014 reads the pointer word at one word before it.
	assert.True(t, mod.CanMaterializeGlobal(img, 0x1014, true))

	// No evidence at 0x1000 on x86.
	assert.False(t, mod.CanMaterializeGlobal(img, 0x1000, false))
	assert.False(t, mod.CanMaterializeGlobal(img, 0x1000, true))

	// ARM accepts speculatively unless strict.
	arm := NewModifier(ir.NewModule("prog"), config.New(), abi.ARM)
	assert.True(t, arm.CanMaterializeGlobal(img, 0x1000, false))
	assert.False(t, arm.CanMaterializeGlobal(img, 0x1000, true))
}

func TestCanMaterializeGlobalDeterministic(t *testing.T) {
	img := gateImage()
	mod := NewModifier(ir.NewModule("prog"), config.New(), abi.X86)
	for _, addr := range []uint64{0x1000, 0x1004, 0x8000, 0x9000} {
		first := mod.CanMaterializeGlobal(img, addr, false)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, mod.CanMaterializeGlobal(img, addr, false), "0x%x", addr)
		}
	}
}

func TestCanMaterializeGlobalConfigFunc(t *testing.T) {
	// A data address claimed by a recorded function is treated as
	// code.
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x8000,
		Data: []byte{0x01, 0x02, 0x03, 0x04},
		Kind: loader.SegData,
	})
	cfg := config.New()
	cfg.InsertFunc(&config.Function{Name: "f", Addr: 0x8000})
	mod := NewModifier(ir.NewModule("prog"), cfg, abi.X86)
	assert.False(t, mod.CanMaterializeGlobal(img, 0x8000, false))
}

func TestGetGlobalVariable(t *testing.T) {
	mod, m, cfg := testModifier()
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x8000,
		Data: []byte{0x2A, 0x00, 0x00, 0x00},
		Kind: loader.SegData,
	})

	gv, cg := mod.GetGlobalVariable(img, nil, 0x8000, false, "")
	require.NotNil(t, gv)
	require.NotNil(t, cg)
	assert.Equal(t, "global_var_8000", gv.Name())
	assert.True(t, gv.Elem().Equal(ir.Int(32)))
	ic, ok := gv.Init().(*ir.IntConst)
	require.True(t, ok)
	assert.Equal(t, uint64(42), ic.Uint64())
	assert.Equal(t, "i32", cg.Type)

	// Repeat requests return the materialized node.
	again, _ := mod.GetGlobalVariable(img, nil, 0x8000, false, "")
	assert.Equal(t, gv, again)
	assert.Len(t, m.Globals(), 1)
	assert.Len(t, cfg.Globals, 1)
}

func TestGetGlobalVariableRejected(t *testing.T) {
	mod, m, _ := testModifier()
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x1000,
		Data: []byte{0x90, 0x90, 0x90, 0x90},
		Kind: loader.SegCode,
	})
	gv, cg := mod.GetGlobalVariable(img, nil, 0x1000, true, "")
	assert.Nil(t, gv)
	assert.Nil(t, cg)
	assert.Empty(t, m.Globals())
}

func TestGetGlobalVariableDebugInfo(t *testing.T) {
	mod, _, _ := testModifier()
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x8000,
		Data: []byte{0x00, 0x00, 0x80, 0x3F},
		Kind: loader.SegData,
	})
	dbg := &debugStub{addr: 0x8000, name: "scale factor", typ: ir.Float(32)}

	gv, cg := mod.GetGlobalVariable(img, dbg, 0x8000, false, "")
	require.NotNil(t, gv)
	assert.Equal(t, "scale_factor", gv.Name())
	assert.True(t, gv.Elem().Equal(ir.Float(32)))
	fc, ok := gv.Init().(*ir.FloatConst)
	require.True(t, ok)
	assert.Equal(t, uint64(0x3F800000), fc.Bits().Uint64())
	require.NotNil(t, cg)
	assert.True(t, cg.FromDebug)
	assert.Equal(t, "scale factor", cg.RealName)
}

func TestGetGlobalVariableConfigType(t *testing.T) {
	mod, _, cfg := testModifier()
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x8000,
		Data: []byte{0x00, 0x90, 0x00, 0x00},
		Kind: loader.SegData,
	})
	cfg.InsertGlobal(&config.Global{Name: "old one", Addr: 0x8000, Type: "i8*"})

	gv, cg := mod.GetGlobalVariable(img, nil, 0x8000, false, "")
	require.NotNil(t, gv)
	assert.Equal(t, "old_one", gv.Name())
	assert.True(t, gv.Elem().Equal(ir.Ptr(ir.Int(8))))
	expr, ok := gv.Init().(*ir.ExprConst)
	require.True(t, ok)
	assert.Equal(t, ir.IntToPtr, expr.Op)
	assert.Equal(t, "old_one", cg.Name)
	assert.Equal(t, "old one", cg.RealName)
	assert.True(t, cg.FromDebug)
	assert.Equal(t, "i8*", cg.Type)
}

func TestGetGlobalVariablePointerChain(t *testing.T) {
	mod, m, _ := testModifier()
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x8000,
		Data: []byte{
			0x08, 0x80, 0x00, 0x00, // 0x8000 -> 0x8008
			0x00, 0x00, 0x00, 0x00,
			0x07, 0x00, 0x00, 0x00, // 0x8008: 7
		},
		Kind: loader.SegData,
	})
	target := m.NewGlobal("target", 0x8008, ir.Int(32), false, ir.ExternalLinkage, ir.NewIntConst64(7, ir.Int(32)))

	gv, _ := mod.GetGlobalVariable(img, nil, 0x8000, false, "")
	require.NotNil(t, gv)
	assert.Equal(t, ir.Constant(target), gv.Init())
	assert.True(t, gv.Elem().Equal(ir.Ptr(ir.Int(32))))
	require.NoError(t, m.Verify())
}

func TestGetGlobalVariableSelfCycle(t *testing.T) {
	mod, m, _ := testModifier()
	// The word at the address is the address itself.
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x8000,
		Data: []byte{0x00, 0x80, 0x00, 0x00},
		Kind: loader.SegData,
	})

	gv, _ := mod.GetGlobalVariable(img, nil, 0x8000, false, "")
	require.NotNil(t, gv)

	// The self-reference is broken with the concrete word.
	ic, ok := gv.Init().(*ir.IntConst)
	require.True(t, ok)
	assert.Equal(t, uint64(0x8000), ic.Uint64())
	assert.Empty(t, m.InitCycles())
}

func TestBreakInitCycleChain(t *testing.T) {
	mod, m, _ := testModifier()
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x8000,
		Data: []byte{0x2A, 0x00, 0x00, 0x00},
		Kind: loader.SegData,
	})

	// gv <- a <- b <- gv, presented as candidate initializer a.
	gv := m.NewGlobal("gv", 0x8000, ir.Int(32), false, ir.ExternalLinkage, nil)
	b := m.NewGlobal("b", 0x800C, ir.Ptr(ir.Int(32)), false, ir.ExternalLinkage, gv)
	a := m.NewGlobal("a", 0x8008, ir.Ptr(ir.Ptr(ir.Int(32))), false, ir.ExternalLinkage, b)

	c := mod.breakInitCycle(img, gv, a, 0x8000)
	ic, ok := c.(*ir.IntConst)
	require.True(t, ok)
	assert.Equal(t, uint64(42), ic.Uint64())
}

func TestBreakInitCycleAcyclic(t *testing.T) {
	mod, m, _ := testModifier()
	img := emptyImage()

	end := m.NewGlobal("end", 0x8004, ir.Int(32), false, ir.ExternalLinkage, ir.NewIntConst64(1, ir.Int(32)))
	gv := m.NewGlobal("gv", 0x8000, ir.Ptr(ir.Int(32)), false, ir.ExternalLinkage, nil)

	// A chain that never reaches gv passes through untouched.
	assert.Equal(t, ir.Constant(end), mod.breakInitCycle(img, gv, end, 0x8000))
}

func TestGetGlobalVariableDeferred(t *testing.T) {
	mod, m, cfg := testModifier()
	// Two readable bytes: the gate passes but no word can be read.
	img := loader.NewMemImage(4, &loader.Segment{
		Addr: 0x8000,
		Data: []byte{0x2A, 0x00},
		Kind: loader.SegData,
	})

	gv, cg := mod.GetGlobalVariable(img, nil, 0x8000, false, "")
	assert.Nil(t, gv)
	require.NotNil(t, cg)
	assert.Equal(t, "i32", cg.Type)

	// The uninitialized declaration stays registered for a later run.
	placeholder := m.GlobalAt(0x8000)
	require.NotNil(t, placeholder)
	assert.Nil(t, placeholder.Init())
	assert.Len(t, cfg.Globals, 1)
}
