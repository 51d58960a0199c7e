package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	c := New()
	c.InsertGlobal(&Global{Name: "global_var_8000", Addr: 0x8000, Type: "i32*"})
	c.InsertStackVar(&StackVar{Func: "entry", Offset: -4, Name: "stack_var_-4", Type: "i32"})
	c.InsertFunc(&Function{Name: "entry", Addr: 0x1000})

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	g := loaded.GlobalAt(0x8000)
	require.NotNil(t, g)
	assert.Equal(t, "global_var_8000", g.Name)
	assert.Equal(t, "i32*", g.Type)

	sv := loaded.StackVarAt("entry", -4)
	require.NotNil(t, sv)
	assert.Equal(t, "i32", sv.Type)

	fn := loaded.FuncByName("entry")
	require.NotNil(t, fn)
	assert.Equal(t, uint64(0x1000), fn.Addr)
}

func TestInsertGlobalReplaces(t *testing.T) {
	c := New()
	c.InsertGlobal(&Global{Name: "g", Addr: 0x8000, Type: "i32"})
	c.InsertGlobal(&Global{Name: "g", Addr: 0x8000, Type: "i32*"})
	require.Len(t, c.Globals, 1)
	assert.Equal(t, "i32*", c.GlobalAt(0x8000).Type)
}

func TestSetGlobalType(t *testing.T) {
	c := New()
	c.InsertGlobal(&Global{Name: "g", Addr: 0x8000, Type: "i32"})
	c.SetGlobalType(0x8000, "f64")
	assert.Equal(t, "f64", c.GlobalAt(0x8000).Type)

	// Unknown addresses are ignored.
	c.SetGlobalType(0x9000, "i8")
	assert.Nil(t, c.GlobalAt(0x9000))
}

func TestRenameFunc(t *testing.T) {
	c := New()
	c.InsertFunc(&Function{Name: "sub_1000", Addr: 0x1000})
	fn := c.RenameFunc("sub_1000", "main")
	require.NotNil(t, fn)
	assert.Equal(t, "main", fn.Name)
	assert.Nil(t, c.FuncByName("sub_1000"))
	assert.Equal(t, fn, c.FuncByName("main"))

	assert.Nil(t, c.RenameFunc("missing", "x"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
