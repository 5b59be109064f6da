// SPDX-License-Identifier: MPL-2.0

package depsync

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifestMissingFile(t *testing.T) {
	m, err := LoadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Packages) != 0 {
		t.Errorf("fresh manifest has %d packages, want 0", len(m.Packages))
	}
}

func TestManifestRoundtrip(t *testing.T) {
	sharedDir := t.TempDir()

	m, err := LoadManifest(sharedDir)
	if err != nil {
		t.Fatal(err)
	}

	dep, err := ParseDependency("left-pad@^1.3.0")
	if err != nil {
		t.Fatal(err)
	}
	m.Record(dep, "1.3.2")

	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(sharedDir, ManifestFileName)); err != nil {
		t.Fatalf("manifest file not written: %v", err)
	}

	reloaded, err := LoadManifest(sharedDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	pkg, ok := reloaded.Packages["left-pad"]
	if !ok {
		t.Fatalf("package not found after reload; have %v", reloaded.Packages)
	}
	if pkg.Version != "1.3.2" || pkg.Kind != "registry" {
		t.Errorf("entry = %+v, want version 1.3.2 kind registry", pkg)
	}
	if !reloaded.Has(dep) {
		t.Error("Has() = false after reload")
	}
}

func TestManifestHas(t *testing.T) {
	m := &Manifest{Packages: map[string]InstalledPackage{
		"left-pad": {Kind: "registry", Version: "1.0.0"},
		"repo":     {Kind: "git", Source: "https://github.com/user/repo.git"},
	}}

	tests := []struct {
		name     string
		raw      string
		expected bool
	}{
		{name: "registry by name", raw: "left-pad", expected: true},
		{name: "registry constraint ignored for membership", raw: "left-pad@^2.0.0", expected: true},
		{name: "registry missing", raw: "right-pad", expected: false},
		{name: "git by literal source", raw: "https://github.com/user/repo.git", expected: true},
		{name: "git different source same name", raw: "https://example.com/other/repo.git", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep, err := ParseDependency(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if got := m.Has(dep); got != tt.expected {
				t.Errorf("Has(%q) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}
