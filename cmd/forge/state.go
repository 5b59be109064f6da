// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"forge-cli/internal/issue"
	"forge-cli/internal/registry"
	"forge-cli/pkg/forgefile"
)

// stateGetCommand prints one state value as JSON.
func stateGetCommand(a *app) *registry.Command {
	return &registry.Command{
		Name:        "get",
		Description: "Print a persistent state value",
		Define:      argsSpec(1, 1, "<key>"),
		Run: func(inv forgefile.Invocation) error {
			v, ok := a.state.Get(inv.Args[0])
			if !ok {
				return issue.NewErrorContext().
					WithOperation("read state").
					WithResource(inv.Args[0]).
					WithSuggestion("Run 'forge state list' to see the stored keys").
					Wrap(fmt.Errorf("key not set")).
					BuildError()
			}
			data, err := json.Marshal(v)
			if err != nil {
				return issue.WrapWithOperation(err, "encode state value")
			}
			fmt.Fprintln(inv.Stdout, string(data))
			return nil
		},
	}
}

// stateSetCommand stores one string value.
func stateSetCommand(a *app) *registry.Command {
	return &registry.Command{
		Name:        "set",
		Description: "Store a persistent state value",
		Define:      argsSpec(2, 2, "<key> <value>"),
		Run: func(inv forgefile.Invocation) error {
			if err := a.state.Set(inv.Args[0], inv.Args[1]); err != nil {
				return issue.WrapWithOperation(err, "write state")
			}
			return nil
		},
	}
}

// stateDeleteCommand removes one key.
func stateDeleteCommand(a *app) *registry.Command {
	return &registry.Command{
		Name:        "delete",
		Description: "Delete a persistent state value",
		Define:      argsSpec(1, 1, "<key>"),
		Run: func(inv forgefile.Invocation) error {
			if err := a.state.Delete(inv.Args[0]); err != nil {
				return issue.WrapWithOperation(err, "delete state")
			}
			return nil
		},
	}
}

// stateListCommand prints the stored keys.
func stateListCommand(a *app) *registry.Command {
	return &registry.Command{
		Name:        "list",
		Description: "List persistent state keys",
		Run: func(inv forgefile.Invocation) error {
			keys := a.state.Keys()
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintln(inv.Stdout, k)
			}
			return nil
		},
	}
}
