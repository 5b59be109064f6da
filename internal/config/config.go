// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"forge-cli/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the user config directory.
	AppName = "forge"

	// ProjectConfigFileName is the project-level config at the project root.
	ProjectConfigFileName = "forge.cue"

	// LocalConfigFileName is the project-local override inside .forge/.
	LocalConfigFileName = "config.cue"

	// UserConfigFileName is the user-level config inside the config dir.
	UserConfigFileName = "config.cue"
)

//go:embed config_schema.cue
var configSchema string

// LoadOptions controls config loading.
type LoadOptions struct {
	// ProjectRoot is the project root directory. Empty skips the project
	// and project-local layers.
	ProjectRoot string

	// UserConfigDir overrides the user config directory (tests).
	UserConfigDir string

	// Overrides are key=value pairs applied after every file layer.
	Overrides []string
}

// UserConfigDir returns the forge configuration directory:
// $XDG_CONFIG_HOME/forge (or the platform equivalent).
func UserConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Load reads and merges all configuration layers. Missing files are not
// errors; malformed files are.
//
// Layer order (last wins per key, nested maps merge recursively):
//  1. defaults
//  2. user config dir config.cue
//  3. <root>/forge.cue
//  4. <root>/.forge/config.cue
//  5. --override key=value pairs
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("install_mode", defaults.InstallMode)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.color", defaults.Log.Color)

	userDir := opts.UserConfigDir
	if userDir == "" {
		dir, err := UserConfigDir()
		if err == nil {
			userDir = dir
		}
	}

	var layers []string
	if userDir != "" {
		layers = append(layers, filepath.Join(userDir, UserConfigFileName))
	}
	if opts.ProjectRoot != "" {
		layers = append(layers,
			filepath.Join(opts.ProjectRoot, ProjectConfigFileName),
			filepath.Join(opts.ProjectRoot, ".forge", LocalConfigFileName),
		)
	}

	for _, path := range layers {
		if !fileExists(path) {
			continue
		}
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'forge config show' to inspect the merged configuration").
				Wrap(err).
				BuildError()
		}
	}

	for _, pair := range opts.Overrides {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, issue.NewErrorContext().
				WithOperation("apply configuration override").
				WithResource(pair).
				WithSuggestion("Overrides use the form --override key=value").
				Wrap(fmt.Errorf("not a key=value pair")).
				BuildError()
		}
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse merged config: %w", err)
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]map[string]any{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, issue.WrapWithOperation(err, "validate configuration")
	}

	return &cfg, nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into viper. Decoding to map[string]any
// (rather than a struct) keeps viper's recursive merge semantics.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return fmt.Errorf("parse %s: %w", path, userValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("validate %s: %w", path, err)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
