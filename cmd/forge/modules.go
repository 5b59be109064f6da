// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"forge-cli/internal/issue"
	"forge-cli/internal/registry"
	"forge-cli/pkg/forgefile"

	"github.com/charmbracelet/glamour"
)

// modulesListCommand lists every loaded module with its origin and commands.
func modulesListCommand(a *app) *registry.Command {
	return &registry.Command{
		Name:        "list",
		Description: "List loaded modules and their commands",
		Run: func(inv forgefile.Invocation) error {
			if len(a.modules) == 0 {
				fmt.Fprintln(inv.Stdout, SubtitleStyle.Render("No modules loaded. Add specifiers to the 'modules' list in your forge config."))
				return nil
			}

			for _, lm := range a.modules {
				group := lm.Module.GroupName
				if lm.Module.Flatten {
					group = SubtitleStyle.Render("(top level)")
				} else {
					group = TitleStyle.Render(group)
				}

				fmt.Fprintf(inv.Stdout, "%s  %s  %s\n",
					group,
					CmdStyle.Render(lm.Resolved.Specifier.Raw),
					SubtitleStyle.Render(lm.Resolved.Origin.String()))

				for _, name := range sortedCommandNames(lm.Module) {
					def := lm.Module.Commands[name]
					fmt.Fprintf(inv.Stdout, "  %s  %s\n", name, SubtitleStyle.Render(def.Description))
				}
			}
			return nil
		},
	}
}

// modulesInfoCommand renders one module's full details as markdown.
func modulesInfoCommand(a *app) *registry.Command {
	return &registry.Command{
		Name:        "info",
		Description: "Show details for one loaded module",
		Define:      argsSpec(1, 1, "<module>"),
		Run: func(inv forgefile.Invocation) error {
			lm := a.findModule(inv.Args[0])
			if lm == nil {
				return issue.NewErrorContext().
					WithOperation("show module info").
					WithResource(inv.Args[0]).
					WithSuggestion("Run 'forge modules list' to see the loaded modules").
					Wrap(fmt.Errorf("module not loaded")).
					BuildError()
			}

			out, err := renderMarkdown(moduleMarkdown(lm))
			if err != nil {
				// Fall back to the raw markdown when the terminal renderer
				// cannot be constructed.
				out = moduleMarkdown(lm)
			}
			fmt.Fprint(inv.Stdout, out)
			return nil
		},
	}
}

// findModule matches a loaded module by its specifier or its group name.
func (a *app) findModule(name string) *loadedModule {
	for _, lm := range a.modules {
		if lm.Resolved.Specifier.Raw == name || lm.Module.GroupName == name {
			return lm
		}
	}
	return nil
}

// moduleMarkdown builds the markdown document rendered by 'modules info'.
func moduleMarkdown(lm *loadedModule) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", lm.Resolved.Specifier.Raw)
	if lm.Module.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", lm.Module.Description)
	}

	fmt.Fprintf(&sb, "- **Origin:** %s\n", lm.Resolved.Origin)
	fmt.Fprintf(&sb, "- **Path:** `%s`\n", lm.Resolved.Path)
	if lm.Module.Flatten {
		sb.WriteString("- **Group:** none (commands merge into the top level)\n")
	} else {
		fmt.Fprintf(&sb, "- **Group:** %s\n", lm.Module.GroupName)
	}

	sb.WriteString("\n## Commands\n\n")
	for _, name := range sortedCommandNames(lm.Module) {
		def := lm.Module.Commands[name]
		fmt.Fprintf(&sb, "### %s\n\n%s\n\n", name, def.Description)
		if def.Usage != "" {
			fmt.Fprintf(&sb, "Usage: `%s`\n\n", def.Usage)
		}
	}

	return sb.String()
}

// renderMarkdown renders markdown for the terminal using glamour.
func renderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

func sortedCommandNames(mod *forgefile.Module) []string {
	names := make([]string, 0, len(mod.Commands))
	for name := range mod.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
