// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
)

type (
	// Config is the merged forge configuration for one invocation.
	Config struct {
		// Modules is the ordered list of module specifiers to load.
		Modules []string `mapstructure:"modules"`

		// Dependencies are package-manager-compatible dependency strings
		// that must be installed in the shared tree before modules load.
		Dependencies []string `mapstructure:"dependencies"`

		// Settings holds per-command override maps, keyed by command name.
		Settings map[string]map[string]any `mapstructure:"settings"`

		// InstallMode is auto, manual, or ask.
		InstallMode string `mapstructure:"install_mode"`

		// Installer is the external package-manager command template for
		// registry dependencies ({name}, {constraint}, {shared} expand per
		// dependency). Empty uses the built-in default.
		Installer []string `mapstructure:"installer"`

		// SharedDir overrides the shared install tree location.
		SharedDir string `mapstructure:"shared_dir"`

		// Log configures default logging behavior; global flags win.
		Log LogConfig `mapstructure:"log"`
	}

	// LogConfig is the logging section.
	LogConfig struct {
		// Level is debug, info, warn, or error.
		Level string `mapstructure:"level"`
		// Format is text, logfmt, or json.
		Format string `mapstructure:"format"`
		// Color is auto, always, or never.
		Color string `mapstructure:"color"`
	}
)

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		InstallMode: "auto",
		Settings:    map[string]map[string]any{},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Color:  "auto",
		},
	}
}

// Validate checks constraints the CUE schema cannot express for merged
// values (overrides bypass per-file validation).
func (c *Config) Validate() error {
	switch c.InstallMode {
	case "", "auto", "manual", "ask":
	default:
		return fmt.Errorf("invalid install_mode %q (must be auto, manual, or ask)", c.InstallMode)
	}

	switch c.Log.Format {
	case "", "text", "logfmt", "json":
	default:
		return fmt.Errorf("invalid log.format %q (must be text, logfmt, or json)", c.Log.Format)
	}

	return nil
}

// SettingsFor returns the settings slice for one command, or an empty map.
func (c *Config) SettingsFor(command string) map[string]any {
	if s, ok := c.Settings[command]; ok {
		return s
	}
	return map[string]any{}
}
