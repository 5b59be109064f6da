// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"forge-cli/pkg/forgefile"
)

// registerBuiltins registers the built-in command groups. They go through
// the same registry as module commands, and they register first, so a
// module that claims the same group name merges its commands into the group
// without shadowing the builtins themselves.
func registerBuiltins(a *app) {
	a.registry.AddToGroup("modules", "Inspect loaded command modules",
		modulesListCommand(a),
		modulesInfoCommand(a),
	)
	a.registry.AddToGroup("config", "Inspect the merged configuration",
		configShowCommand(a),
		configPathCommand(a),
	)
	a.registry.AddToGroup("state", "Read and write persistent state",
		stateGetCommand(a),
		stateSetCommand(a),
		stateDeleteCommand(a),
		stateListCommand(a),
	)
}

// argsSpec builds a Define hook that declares only a positional-argument
// shape, for builtins that take no flags.
func argsSpec(min, max int, usage string) func() (*forgefile.CommandSpec, error) {
	return func() (*forgefile.CommandSpec, error) {
		return &forgefile.CommandSpec{
			Args: &forgefile.ArgSpec{Min: min, Max: max, Usage: usage},
		}, nil
	}
}
