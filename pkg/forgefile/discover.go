// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"forge-cli/pkg/forgemod"

	lua "github.com/yuin/gopher-lua"
)

// discover classifies a loaded module's exported bindings.
//
// Scan order: default-export table properties first, then named exports
// (skipping the metadata binding). The same name discovered twice resolves
// last-write-wins, so a named export shadows a default-export property.
func (r *Runtime) discover(spec forgemod.Specifier, defaultExport lua.LValue, env *lua.LTable) *Module {
	md := metadataFromValue(env.RawGetString(MetaExportName))

	mod := &Module{
		GroupName:   md.Group,
		Flatten:     md.Flatten,
		Description: md.Description,
		Commands:    make(map[string]*CommandDefinition),
	}
	if mod.GroupName == "" && !mod.Flatten {
		mod.GroupName = spec.GroupName()
	}

	if tbl, ok := defaultExport.(*lua.LTable); ok {
		tbl.ForEach(func(k, v lua.LValue) {
			if k.Type() != lua.LTString || !isCommandTable(v) {
				return
			}
			name := k.String()
			mod.Commands[name] = r.commandFromTable(name, v.(*lua.LTable))
		})
	}

	env.ForEach(func(k, v lua.LValue) {
		if k.Type() != lua.LTString {
			return
		}
		name := k.String()
		if name == MetaExportName || name == "print" {
			return
		}
		if !isCommandTable(v) {
			return
		}
		mod.Commands[name] = r.commandFromTable(name, v.(*lua.LTable))
	})

	return mod
}
