// SPDX-License-Identifier: MPL-2.0

package depsync

import (
	"fmt"
	"path"
	"strings"
)

type (
	// DependencyKind classifies how a declared dependency is installed.
	DependencyKind int

	// DependencySpec is one parsed entry from a config's 'dependencies'
	// list.
	DependencySpec struct {
		// Raw is the original dependency string.
		Raw string

		// Kind selects the installer.
		Kind DependencyKind

		// Name is the package name used as the manifest key.
		Name string

		// Constraint is the version constraint for registry dependencies
		// (empty means latest).
		Constraint string

		// Source is the literal location for git and local dependencies.
		Source string
	}
)

const (
	// KindRegistry is a package-manager dependency ("left-pad@^1.0.0").
	KindRegistry DependencyKind = iota
	// KindGit is a git repository URL.
	KindGit
	// KindLocal is a local filesystem path.
	KindLocal
)

// String returns a human-readable kind name.
func (k DependencyKind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindGit:
		return "git"
	case KindLocal:
		return "local"
	default:
		return "unknown"
	}
}

// ParseDependency classifies a dependency string.
//
// Git URLs (https://, git@, ssh://) and local paths (./, ../, /) match by
// their literal source; everything else is a registry package, optionally
// with an @constraint suffix.
func ParseDependency(raw string) (DependencySpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DependencySpec{}, fmt.Errorf("empty dependency")
	}

	spec := DependencySpec{Raw: raw}

	switch {
	case isGitSource(raw):
		spec.Kind = KindGit
		spec.Source = raw
		spec.Name = gitName(raw)
	case isLocalSource(raw):
		spec.Kind = KindLocal
		spec.Source = raw
		spec.Name = path.Base(strings.TrimSuffix(raw, "/"))
	default:
		spec.Kind = KindRegistry
		spec.Name, spec.Constraint = splitConstraint(raw)
	}

	if spec.Name == "" || spec.Name == "." || spec.Name == ".." {
		return DependencySpec{}, fmt.Errorf("cannot derive a package name from %q", raw)
	}

	return spec, nil
}

func isGitSource(s string) bool {
	return strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "git@") ||
		strings.HasPrefix(s, "ssh://")
}

func isLocalSource(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") || strings.HasPrefix(s, "/")
}

// gitName derives the package name from a git URL: the final path segment
// without the .git suffix.
func gitName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	if at := strings.LastIndexByte(trimmed, ':'); at >= 0 && !strings.Contains(trimmed[at:], "/") {
		// git@host:user/repo with no slash after the colon
		return trimmed[at+1:]
	}
	return path.Base(trimmed)
}

// splitConstraint splits "name@^1.0.0" into name and constraint. A leading
// '@' belongs to the scope, not the constraint, so scoped packages split on
// the last '@'.
func splitConstraint(s string) (name, constraint string) {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return s, ""
	}
	return s[:at], s[at+1:]
}
