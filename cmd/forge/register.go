// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strconv"

	"forge-cli/internal/issue"
	"forge-cli/internal/registry"
	"forge-cli/pkg/forgefile"
	"forge-cli/pkg/types"

	"github.com/spf13/cobra"
)

// buildRootCommand turns the assembled registry into the cobra tree: one
// subcommand per top-level command, one parent per group with its commands
// nested beneath. The global flags are declared again here so the strict
// second-pass parse accepts everything the first pass already consumed.
func (a *app) buildRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "forge",
		Short: "A personal command-line automation framework",
		Long: TitleStyle.Render("forge") + SubtitleStyle.Render(" - a personal command-line automation framework") + `

forge turns small Lua modules into CLI commands. Modules are listed in
your forge config and discovered from the project, the shared install
tree, or the project's own dependency directory.

` + SubtitleStyle.Render("Examples:") + `
  forge modules list        Show every loaded module and its commands
  forge config show         Show the merged configuration
  forge <group> <command>   Run a module command`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindGlobalFlags(root.PersistentFlags(), a.globals)

	for _, c := range a.registry.TopLevel() {
		root.AddCommand(a.bindCommand(c, ""))
	}
	for _, g := range a.registry.Groups() {
		parent := &cobra.Command{
			Use:   g.Name,
			Short: g.Description,
		}
		for _, c := range g.Ordered() {
			parent.AddCommand(a.bindCommand(c, g.Name))
		}
		root.AddCommand(parent)
	}

	return root
}

// bindCommand builds the cobra command for one registry entry. Commands with
// a customization hook get declared flags and validated arguments; commands
// without one accept anything and see only positional arguments.
func (a *app) bindCommand(c *registry.Command, group string) *cobra.Command {
	cc := &cobra.Command{
		Use:   c.Name,
		Short: c.Description,
	}
	if c.Usage != "" {
		cc.Use = c.Name + " " + c.Usage
	}

	var spec *forgefile.CommandSpec
	var specErr error
	if c.Define != nil {
		spec, specErr = c.Define()
	}

	if spec != nil {
		declareFlags(cc, spec.Flags)
		applyArgSpec(cc, spec.Args)
	} else {
		cc.Args = cobra.ArbitraryArgs
		cc.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}
	}

	cc.RunE = func(cmd *cobra.Command, args []string) error {
		if specErr != nil {
			return &ExitError{Code: types.ExitInternal, Err: specErr}
		}

		inv := forgefile.Invocation{
			Context:     cmd.Context(),
			Options:     collectOptions(cmd, spec),
			Args:        args,
			GroupName:   group,
			CommandName: c.Name,
			Settings:    a.cfg.SettingsFor(c.Name),
			Config:      a.configView(),
			State:       a.state,
			WorkDir:     a.projectRoot,
			LogLevel:    firstNonEmpty(a.globals.LogLevel, a.cfg.Log.Level),
			LogFormat:   firstNonEmpty(a.globals.LogFormat, a.cfg.Log.Format),
			ColorMode:   firstNonEmpty(a.globals.Color, a.cfg.Log.Color),
			Stdin:       cmd.InOrStdin(),
			Stdout:      cmd.OutOrStdout(),
			Stderr:      cmd.ErrOrStderr(),
		}

		if err := c.Run(inv); err != nil {
			return &ExitError{
				Code: types.ExitInternal,
				Err:  issue.WrapWithOperation(err, "run command "+dispatchName(group, c.Name)),
			}
		}
		return nil
	}

	return cc
}

// declareFlags registers a command's declared flags on its cobra flag set.
func declareFlags(cc *cobra.Command, flags []forgefile.FlagSpec) {
	for _, f := range flags {
		switch f.Type {
		case forgefile.FlagBool:
			def := f.Default == "true"
			cc.Flags().BoolP(f.Name, f.Short, def, f.Description)
		case forgefile.FlagInt:
			def, _ := strconv.Atoi(f.Default)
			cc.Flags().IntP(f.Name, f.Short, def, f.Description)
		default:
			cc.Flags().StringP(f.Name, f.Short, f.Default, f.Description)
		}
		if f.Required {
			_ = cc.MarkFlagRequired(f.Name)
		}
	}
}

// applyArgSpec maps a declared argument shape to cobra's validators.
func applyArgSpec(cc *cobra.Command, args *forgefile.ArgSpec) {
	switch {
	case args == nil:
		cc.Args = cobra.NoArgs
	case args.Max < 0:
		cc.Args = cobra.MinimumNArgs(args.Min)
	default:
		cc.Args = cobra.RangeArgs(args.Min, args.Max)
	}
	if args != nil && args.Usage != "" {
		cc.Use = cc.Name() + " " + args.Usage
	}
}

// collectOptions reads the parsed values of every declared flag into the
// string map handed to the command. Commands without a customization hook
// declared no flags and get an empty map.
func collectOptions(cmd *cobra.Command, spec *forgefile.CommandSpec) map[string]string {
	opts := map[string]string{}
	if spec == nil {
		return opts
	}
	for _, f := range spec.Flags {
		flag := cmd.Flags().Lookup(f.Name)
		if flag == nil {
			continue
		}
		opts[f.Name] = flag.Value.String()
	}
	return opts
}

func dispatchName(group, name string) string {
	if group == "" {
		return name
	}
	return group + " " + name
}
