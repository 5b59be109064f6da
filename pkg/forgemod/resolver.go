// SPDX-License-Identifier: MPL-2.0

package forgemod

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ModuleExt is the file extension of command modules.
	ModuleExt = ".lua"

	// LocalDirName is the project-local command directory, relative to the
	// project root.
	LocalDirName = ".forge"

	// ProjectModulesDirName is the project's own dependency tree, the final
	// resolution fallback.
	ProjectModulesDirName = "forge_modules"

	// SharedModulesDirName is the package directory inside the shared
	// install tree.
	SharedModulesDirName = "modules"
)

type (
	// Origin identifies the resolution tier a module was found in.
	Origin int

	// ResolvedModule is the chosen filesystem path for a specifier, tagged
	// with its origin tier. It is recomputed on every invocation and never
	// cached to disk.
	ResolvedModule struct {
		Specifier Specifier
		Path      string
		Origin    Origin
	}

	// Resolver turns specifiers into concrete filesystem locations, searching
	// the candidate roots in priority order.
	Resolver struct {
		// ProjectRoot is the invoking project's root directory.
		ProjectRoot string

		// SharedDir is the root of the shared install tree.
		SharedDir string
	}

	// NotFoundError is returned when a specifier matches nothing. It lists
	// every candidate path that was tried.
	NotFoundError struct {
		Specifier  string
		Candidates []string
	}
)

const (
	// OriginLocal is the project-local command directory (.forge).
	OriginLocal Origin = iota
	// OriginShared is the shared install tree.
	OriginShared
	// OriginProject is the project's own dependency tree.
	OriginProject
)

// String returns a human-readable origin name.
func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginShared:
		return "shared"
	case OriginProject:
		return "project"
	default:
		return "unknown"
	}
}

// Error implements the error interface, listing every candidate tried.
func (e *NotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %q not found; tried:\n", e.Specifier)
	for _, c := range e.Candidates {
		fmt.Fprintf(&sb, "  - %s\n", c)
	}
	sb.WriteString("check the 'modules' list in your forge config")
	return sb.String()
}

// NewResolver creates a resolver for the given project root and shared tree.
func NewResolver(projectRoot, sharedDir string) (*Resolver, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	absShared, err := filepath.Abs(sharedDir)
	if err != nil {
		return nil, fmt.Errorf("resolve shared tree: %w", err)
	}
	return &Resolver{ProjectRoot: absRoot, SharedDir: absShared}, nil
}

// LocalDir returns the project-local command directory.
func (r *Resolver) LocalDir() string {
	return filepath.Join(r.ProjectRoot, LocalDirName)
}

// SharedModulesDir returns the package directory of the shared install tree.
func (r *Resolver) SharedModulesDir() string {
	return filepath.Join(r.SharedDir, SharedModulesDirName)
}

// ProjectModulesDir returns the project's own dependency tree.
func (r *Resolver) ProjectModulesDir() string {
	return filepath.Join(r.ProjectRoot, ProjectModulesDirName)
}

// Resolve turns a raw specifier into exactly one resolved path, or fails
// with a NotFoundError listing every candidate tried.
//
// Resolution order, first match wins:
//  1. local:   <root>/.forge/<name>.lua (bare specifiers only)
//  2. shared:  <shared>/modules/<pkg>.lua, <shared>/modules/<pkg>/init.lua
//  3. project: <root>/forge_modules/<pkg>.lua, <root>/forge_modules/<pkg>/init.lua
func (r *Resolver) Resolve(raw string) (*ResolvedModule, error) {
	spec, err := ParseSpecifier(raw)
	if err != nil {
		return nil, err
	}

	var candidates []string

	if spec.Kind == SpecifierBare {
		local := filepath.Join(r.LocalDir(), spec.Name+ModuleExt)
		if fileExists(local) {
			return &ResolvedModule{Specifier: spec, Path: local, Origin: OriginLocal}, nil
		}
		candidates = append(candidates, local)
	}

	pkgPath := filepath.FromSlash(spec.PackagePath())

	for _, c := range packageCandidates(r.SharedModulesDir(), pkgPath) {
		if fileExists(c) {
			return &ResolvedModule{Specifier: spec, Path: c, Origin: OriginShared}, nil
		}
		candidates = append(candidates, c)
	}

	for _, c := range packageCandidates(r.ProjectModulesDir(), pkgPath) {
		if fileExists(c) {
			return &ResolvedModule{Specifier: spec, Path: c, Origin: OriginProject}, nil
		}
		candidates = append(candidates, c)
	}

	return nil, &NotFoundError{Specifier: raw, Candidates: candidates}
}

// packageCandidates lists the candidate files for a package path inside one
// tier root: the file itself and the package entry file.
func packageCandidates(root, pkgPath string) []string {
	return []string{
		filepath.Join(root, pkgPath+ModuleExt),
		filepath.Join(root, pkgPath, "init"+ModuleExt),
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
