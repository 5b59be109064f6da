// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

type (
	// FlagType enumerates the flag value types a defineCommand hook can
	// declare.
	FlagType string

	// FlagSpec is one flag declared by a module's defineCommand hook.
	FlagSpec struct {
		Name        string
		Short       string
		Type        FlagType
		Default     string
		Description string
		Required    bool
	}

	// ArgSpec bounds the positional arguments a command accepts.
	// Max < 0 means unbounded.
	ArgSpec struct {
		Min   int
		Max   int
		Usage string
	}

	// CommandSpec is the result of running a defineCommand hook: the flags
	// and positional-argument shape the command declared for itself.
	CommandSpec struct {
		Flags []FlagSpec
		Args  *ArgSpec
	}
)

const (
	FlagString FlagType = "string"
	FlagBool   FlagType = "bool"
	FlagInt    FlagType = "int"
)

// RunDefine invokes the command's defineCommand hook, handing it a builder
// table with 'flag' and 'args' functions. Returns nil when the command has
// no hook.
func (c *CommandDefinition) RunDefine() (*CommandSpec, error) {
	if c.define == nil {
		return nil, nil
	}

	L := c.rt.L
	spec := &CommandSpec{}

	builder := L.NewTable()
	builder.RawSetString("flag", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		fs := FlagSpec{Name: name, Type: FlagString}
		if opts, ok := L.Get(2).(*lua.LTable); ok {
			applyFlagOpts(&fs, opts)
		}
		spec.Flags = append(spec.Flags, fs)
		return 0
	}))
	builder.RawSetString("args", L.NewFunction(func(L *lua.LState) int {
		as := &ArgSpec{Min: L.CheckInt(1), Max: L.CheckInt(2)}
		if L.GetTop() >= 3 {
			as.Usage = L.CheckString(3)
		}
		spec.Args = as
		return 0
	}))

	if err := L.CallByParam(lua.P{Fn: c.define, NRet: 0, Protect: true}, builder); err != nil {
		return nil, fmt.Errorf("defineCommand hook for %q: %w", c.Name, err)
	}

	for _, f := range spec.Flags {
		switch f.Type {
		case FlagString, FlagBool, FlagInt:
		default:
			return nil, fmt.Errorf("defineCommand hook for %q: unsupported flag type %q", c.Name, f.Type)
		}
	}

	return spec, nil
}

func applyFlagOpts(fs *FlagSpec, opts *lua.LTable) {
	if v := opts.RawGetString("type"); v.Type() == lua.LTString {
		fs.Type = FlagType(v.String())
	}
	if v := opts.RawGetString("short"); v.Type() == lua.LTString {
		fs.Short = v.String()
	}
	if v := opts.RawGetString("default"); v != lua.LNil {
		fs.Default = v.String()
	}
	if v := opts.RawGetString("description"); v.Type() == lua.LTString {
		fs.Description = v.String()
	}
	if v := opts.RawGetString("required"); v.Type() == lua.LTBool {
		fs.Required = lua.LVAsBool(v)
	}
}
