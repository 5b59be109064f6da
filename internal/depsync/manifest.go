// SPDX-License-Identifier: MPL-2.0

package depsync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFileName is the shared install manifest inside the shared tree.
const ManifestFileName = "manifest.toml"

type (
	// Manifest records what is installed in the shared install tree. There
	// is no first-class install-state record elsewhere: membership here is
	// the install state, re-read on every run.
	Manifest struct {
		Version  string                      `toml:"version"`
		Packages map[string]InstalledPackage `toml:"packages"`

		path string `toml:"-"`
	}

	// InstalledPackage is one manifest entry.
	InstalledPackage struct {
		// Version is the installed version, when known.
		Version string `toml:"version,omitempty"`

		// Kind is the dependency kind that produced the entry.
		Kind string `toml:"kind"`

		// Source is the literal source for git/local packages.
		Source string `toml:"source,omitempty"`

		// InstalledAt is when the package was recorded.
		InstalledAt time.Time `toml:"installed_at"`
	}
)

// LoadManifest reads the manifest from the shared tree, returning an empty
// manifest when none exists yet.
func LoadManifest(sharedDir string) (*Manifest, error) {
	m := &Manifest{
		Version:  "1",
		Packages: make(map[string]InstalledPackage),
		path:     filepath.Join(sharedDir, ManifestFileName),
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", m.path, err)
	}
	if m.Packages == nil {
		m.Packages = make(map[string]InstalledPackage)
	}

	return m, nil
}

// Save writes the manifest back to the shared tree.
func (m *Manifest) Save() error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create shared tree: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Has reports whether a declared dependency is already installed: registry
// dependencies match by parsed package name, git and local dependencies by
// literal source.
func (m *Manifest) Has(dep DependencySpec) bool {
	if dep.Kind == KindRegistry {
		_, ok := m.Packages[dep.Name]
		return ok
	}

	if pkg, ok := m.Packages[dep.Name]; ok && pkg.Source == dep.Source {
		return true
	}
	for _, pkg := range m.Packages {
		if pkg.Source != "" && pkg.Source == dep.Source {
			return true
		}
	}
	return false
}

// Record adds (or replaces) the entry for an installed dependency.
func (m *Manifest) Record(dep DependencySpec, version string) {
	m.Packages[dep.Name] = InstalledPackage{
		Version:     version,
		Kind:        dep.Kind.String(),
		Source:      dep.Source,
		InstalledAt: time.Now().UTC(),
	}
}
