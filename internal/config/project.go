// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// SharedDirEnvVar overrides the shared install tree location.
const SharedDirEnvVar = "FORGE_HOME"

// FindProjectRoot walks upward from start looking for a directory containing
// forge.cue or a .forge directory. It returns start itself when no marker is
// found, so forge still runs (with no modules) outside a project.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}

	for probe := dir; ; {
		if isProjectRoot(probe) {
			return probe, nil
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return dir, nil
		}
		probe = parent
	}
}

func isProjectRoot(dir string) bool {
	if info, err := os.Stat(filepath.Join(dir, ProjectConfigFileName)); err == nil && !info.IsDir() {
		return true
	}
	if info, err := os.Stat(filepath.Join(dir, ".forge")); err == nil && info.IsDir() {
		return true
	}
	return false
}

// SharedDir resolves the shared install tree: the config value, then
// $FORGE_HOME, then ~/.forge.
func SharedDir(cfg *Config) (string, error) {
	if cfg != nil && cfg.SharedDir != "" {
		return cfg.SharedDir, nil
	}
	if env := os.Getenv(SharedDirEnvVar); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName), nil
}
