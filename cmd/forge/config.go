// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"forge-cli/internal/config"
	"forge-cli/internal/issue"
	"forge-cli/internal/registry"
	"forge-cli/pkg/forgefile"

	toml "github.com/pelletier/go-toml/v2"
)

// configShowCommand prints the merged configuration after all layers and
// overrides have been applied.
func configShowCommand(a *app) *registry.Command {
	return &registry.Command{
		Name:        "show",
		Description: "Show the merged configuration",
		Run: func(inv forgefile.Invocation) error {
			data, err := toml.Marshal(a.configView())
			if err != nil {
				return issue.WrapWithOperation(err, "encode configuration")
			}
			fmt.Fprint(inv.Stdout, string(data))
			return nil
		},
	}
}

// configPathCommand prints every location forge reads configuration from,
// marking the ones that exist.
func configPathCommand(a *app) *registry.Command {
	return &registry.Command{
		Name:        "path",
		Description: "Show configuration file locations",
		Run: func(inv forgefile.Invocation) error {
			userDir := a.globals.ConfigDir
			if userDir == "" {
				if dir, err := config.UserConfigDir(); err == nil {
					userDir = dir
				}
			}

			layers := []struct {
				label string
				path  string
			}{
				{"user", filepath.Join(userDir, config.UserConfigFileName)},
				{"project", filepath.Join(a.projectRoot, config.ProjectConfigFileName)},
				{"local", filepath.Join(a.projectRoot, ".forge", config.LocalConfigFileName)},
			}

			fmt.Fprintf(inv.Stdout, "%s %s\n", SubtitleStyle.Render("project root:"), a.projectRoot)
			fmt.Fprintf(inv.Stdout, "%s %s\n", SubtitleStyle.Render("shared tree: "), a.sharedDir)
			for _, layer := range layers {
				marker := SubtitleStyle.Render("absent")
				if info, err := os.Stat(layer.path); err == nil && !info.IsDir() {
					marker = SuccessStyle.Render("found")
				}
				fmt.Fprintf(inv.Stdout, "%-8s %s  [%s]\n", layer.label, CmdStyle.Render(layer.path), marker)
			}
			return nil
		},
	}
}
