// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	lua "github.com/yuin/gopher-lua"
)

// MetaExportName is the reserved export carrying module metadata.
const MetaExportName = "meta"

type (
	// CommandDefinition is one discovered command. Identified structurally:
	// any exported table with a string description and a callable execute
	// (or a run script) qualifies. Immutable after discovery.
	CommandDefinition struct {
		// Name is the export name the command was discovered under.
		Name string

		// Description is the required human-readable summary.
		Description string

		// Usage is an optional usage string shown in help output.
		Usage string

		// execute is the Lua function invoked on dispatch, when present.
		execute *lua.LFunction

		// runScript is a POSIX shell script body executed by the virtual
		// shell when no execute function is present.
		runScript string

		// define is the optional defineCommand customization hook.
		define *lua.LFunction

		rt *Runtime
	}

	// Metadata is the optional 'meta' export of a module.
	Metadata struct {
		// Group is the namespace for the module's commands. Empty means
		// "derive from the specifier"; Flatten reports group = false.
		Group string

		// Flatten is true when the module set group = false, merging its
		// commands into the top level.
		Flatten bool

		// Description describes the group in help output.
		Description string
	}

	// Module is the discovery result for one loaded module.
	Module struct {
		// GroupName is the effective group: explicit metadata group, or the
		// name derived from the specifier's final path segment.
		GroupName string

		// Flatten is true when the module's commands merge into the top level.
		Flatten bool

		// Description is the optional group description from metadata.
		Description string

		// Commands maps command name to definition. Name collisions between
		// the default export and named exports resolve last-write-wins.
		Commands map[string]*CommandDefinition
	}
)

// HasExecute reports whether the command dispatches to a Lua function.
func (c *CommandDefinition) HasExecute() bool { return c.execute != nil }

// HasRunScript reports whether the command dispatches to a shell script body.
func (c *CommandDefinition) HasRunScript() bool { return c.runScript != "" }

// HasDefine reports whether the command customizes its own flags/arguments.
func (c *CommandDefinition) HasDefine() bool { return c.define != nil }

// isCommandTable reports whether a Lua value is structurally a command:
// a table exposing a string 'description' and either a function 'execute'
// or a string 'run'.
func isCommandTable(v lua.LValue) bool {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return false
	}

	desc := tbl.RawGetString("description")
	if desc.Type() != lua.LTString {
		return false
	}

	if _, ok := tbl.RawGetString("execute").(*lua.LFunction); ok {
		return true
	}
	run := tbl.RawGetString("run")
	return run.Type() == lua.LTString && run.String() != ""
}

// commandFromTable builds a CommandDefinition from a structurally matching
// table. Callers must have checked isCommandTable first.
func (r *Runtime) commandFromTable(name string, tbl *lua.LTable) *CommandDefinition {
	def := &CommandDefinition{
		Name:        name,
		Description: tbl.RawGetString("description").String(),
		rt:          r,
	}

	if usage := tbl.RawGetString("usage"); usage.Type() == lua.LTString {
		def.Usage = usage.String()
	}
	if fn, ok := tbl.RawGetString("execute").(*lua.LFunction); ok {
		def.execute = fn
	}
	if run := tbl.RawGetString("run"); run.Type() == lua.LTString {
		def.runScript = run.String()
	}
	if fn, ok := tbl.RawGetString("defineCommand").(*lua.LFunction); ok {
		def.define = fn
	}

	return def
}

// metadataFromValue reads the 'meta' export. A missing or non-table value
// yields zero metadata.
func metadataFromValue(v lua.LValue) Metadata {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return Metadata{}
	}

	var md Metadata

	switch group := tbl.RawGetString("group"); group.Type() {
	case lua.LTString:
		md.Group = group.String()
	case lua.LTBool:
		if !lua.LVAsBool(group) {
			md.Flatten = true
		}
	}

	if desc := tbl.RawGetString("description"); desc.Type() == lua.LTString {
		md.Description = desc.String()
	}

	return md
}
