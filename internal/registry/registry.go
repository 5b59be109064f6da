// SPDX-License-Identifier: MPL-2.0

// Package registry assembles discovered commands into the two-level dispatch
// tree: a flat map of top-level commands and a map of group name to grouped
// commands. A Registry is built fresh for every invocation and passed
// explicitly into the CLI binder; there is no process-wide registry, so
// tests can construct independent ones.
package registry

import (
	"sort"

	"forge-cli/pkg/forgefile"
)

type (
	// Command is one dispatchable command, either builtin or module-backed.
	Command struct {
		Name        string
		Description string
		Usage       string

		// Define is the optional customization hook that declares the
		// command's own flags and arguments before the strict parse.
		Define func() (*forgefile.CommandSpec, error)

		// Run dispatches the command.
		Run func(inv forgefile.Invocation) error
	}

	// Group is a namespace of related commands.
	Group struct {
		Name        string
		Description string
		Commands    map[string]*Command

		order []string
	}

	// Registry is the per-invocation command tree.
	Registry struct {
		topLevel   map[string]*Command
		topOrder   []string
		groups     map[string]*Group
		groupOrder []string
	}
)

// FromDefinition adapts a discovered module command.
func FromDefinition(def *forgefile.CommandDefinition) *Command {
	c := &Command{
		Name:        def.Name,
		Description: def.Description,
		Usage:       def.Usage,
		Run:         def.Execute,
	}
	if def.HasDefine() {
		c.Define = def.RunDefine
	}
	return c
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		topLevel: make(map[string]*Command),
		groups:   make(map[string]*Group),
	}
}

// AddTopLevel registers a command at the top level. Re-registering a name
// replaces the previous command (last-write-wins).
func (r *Registry) AddTopLevel(cmd *Command) {
	if _, exists := r.topLevel[cmd.Name]; !exists {
		r.topOrder = append(r.topOrder, cmd.Name)
	}
	r.topLevel[cmd.Name] = cmd
}

// AddToGroup registers commands under a group, creating it on first use.
// Later registrations under the same group name add to the existing group's
// command map rather than replacing it; the first non-empty description wins.
func (r *Registry) AddToGroup(name, description string, cmds ...*Command) {
	g, ok := r.groups[name]
	if !ok {
		g = &Group{Name: name, Commands: make(map[string]*Command)}
		r.groups[name] = g
		r.groupOrder = append(r.groupOrder, name)
	}
	if g.Description == "" {
		g.Description = description
	}
	for _, cmd := range cmds {
		if _, exists := g.Commands[cmd.Name]; !exists {
			g.order = append(g.order, cmd.Name)
		}
		g.Commands[cmd.Name] = cmd
	}
}

// AddModule registers every command of a discovered module: flattened
// modules merge into the top level, grouped modules into their group.
// Command names are registered in sorted order for deterministic binding.
func (r *Registry) AddModule(mod *forgefile.Module) {
	names := make([]string, 0, len(mod.Commands))
	for name := range mod.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := FromDefinition(mod.Commands[name])
		if mod.Flatten {
			r.AddTopLevel(cmd)
			continue
		}
		r.AddToGroup(mod.GroupName, mod.Description, cmd)
	}

	// A grouped module with no commands still claims its group so help
	// output shows it.
	if !mod.Flatten && len(mod.Commands) == 0 {
		r.AddToGroup(mod.GroupName, mod.Description)
	}
}

// TopLevel returns top-level commands in registration order.
func (r *Registry) TopLevel() []*Command {
	out := make([]*Command, 0, len(r.topOrder))
	for _, name := range r.topOrder {
		out = append(out, r.topLevel[name])
	}
	return out
}

// Groups returns groups in registration order.
func (r *Registry) Groups() []*Group {
	out := make([]*Group, 0, len(r.groupOrder))
	for _, name := range r.groupOrder {
		out = append(out, r.groups[name])
	}
	return out
}

// Group returns one group by name.
func (r *Registry) Group(name string) (*Group, bool) {
	g, ok := r.groups[name]
	return g, ok
}

// Ordered returns a group's commands in registration order.
func (g *Group) Ordered() []*Command {
	out := make([]*Command, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.Commands[name])
	}
	return out
}
