// Package config persists reconstruction metadata across lifting runs:
// names, types and user-supplied descriptions for globals, stack
// variables and functions. The retyping core records what it creates
// and keeps recorded types in sync when declarations are retyped.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Global is the recorded metadata of a global variable.
type Global struct {
	Name        string `yaml:"name"`
	Addr        uint64 `yaml:"addr"`
	Type        string `yaml:"type,omitempty"`
	FromDebug   bool   `yaml:"fromDebug,omitempty"`
	RealName    string `yaml:"realName,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// StackVar is the recorded metadata of a stack variable, keyed by the
// owning function's name and the frame offset.
type StackVar struct {
	Func     string `yaml:"func"`
	Offset   int    `yaml:"offset"`
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"`
	RealName string `yaml:"realName,omitempty"`
}

// Function is the recorded metadata of a function.
type Function struct {
	Name     string `yaml:"name"`
	Addr     uint64 `yaml:"addr,omitempty"`
	RealName string `yaml:"realName,omitempty"`
}

// Config is the persisted reconstruction configuration.
type Config struct {
	Globals   []*Global   `yaml:"globals,omitempty"`
	StackVars []*StackVar `yaml:"stackVariables,omitempty"`
	Functions []*Function `yaml:"functions,omitempty"`

	globalsByAddr map[uint64]*Global
	funcsByName   map[string]*Function
}

// New constructs an empty Config.
func New() *Config {
	c := &Config{}
	c.reindex()
	return c
}

// Load reads a Config from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}
	c.reindex()
	return c, nil
}

// Save writes the Config to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %v", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) reindex() {
	c.globalsByAddr = make(map[uint64]*Global, len(c.Globals))
	for _, g := range c.Globals {
		c.globalsByAddr[g.Addr] = g
	}
	c.funcsByName = make(map[string]*Function, len(c.Functions))
	for _, fn := range c.Functions {
		c.funcsByName[fn.Name] = fn
	}
}

// GlobalAt returns the recorded global at an address, or nil.
func (c *Config) GlobalAt(addr uint64) *Global { return c.globalsByAddr[addr] }

// InsertGlobal records a global, replacing any record at the same
// address.
func (c *Config) InsertGlobal(g *Global) *Global {
	if old := c.globalsByAddr[g.Addr]; old != nil {
		*old = *g
		return old
	}
	c.Globals = append(c.Globals, g)
	c.globalsByAddr[g.Addr] = g
	return g
}

// SetGlobalType updates the recorded type string of the global at an
// address, if one is recorded.
func (c *Config) SetGlobalType(addr uint64, typ string) {
	if g := c.globalsByAddr[addr]; g != nil {
		g.Type = typ
	}
}

// StackVarAt returns the recorded stack variable of a function at a
// frame offset, or nil.
func (c *Config) StackVarAt(fnName string, offset int) *StackVar {
	for _, sv := range c.StackVars {
		if sv.Func == fnName && sv.Offset == offset {
			return sv
		}
	}
	return nil
}

// InsertStackVar records a stack variable, replacing any record with
// the same identity.
func (c *Config) InsertStackVar(sv *StackVar) *StackVar {
	if old := c.StackVarAt(sv.Func, sv.Offset); old != nil {
		*old = *sv
		return old
	}
	c.StackVars = append(c.StackVars, sv)
	return sv
}

// FuncByName returns the recorded function with a name, or nil.
func (c *Config) FuncByName(name string) *Function { return c.funcsByName[name] }

// FuncAt returns the recorded function at an address, or nil.
func (c *Config) FuncAt(addr uint64) *Function {
	for _, fn := range c.Functions {
		if fn.Addr != 0 && fn.Addr == addr {
			return fn
		}
	}
	return nil
}

// InsertFunc records a function.
func (c *Config) InsertFunc(fn *Function) *Function {
	if old := c.funcsByName[fn.Name]; old != nil {
		*old = *fn
		return old
	}
	c.Functions = append(c.Functions, fn)
	c.funcsByName[fn.Name] = fn
	return fn
}

// RenameFunc moves a function record to a new name and returns it.
func (c *Config) RenameFunc(old, new string) *Function {
	fn := c.funcsByName[old]
	if fn == nil {
		return nil
	}
	delete(c.funcsByName, old)
	fn.Name = new
	c.funcsByName[new] = fn
	return fn
}
