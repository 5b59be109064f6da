// SPDX-License-Identifier: MPL-2.0

package forgemod

import (
	"fmt"
	"path"
	"strings"
)

type (
	// SpecifierKind classifies how a module reference string is resolved.
	SpecifierKind int

	// Specifier is a parsed module reference from the 'modules' list of a
	// forge config.
	Specifier struct {
		// Raw is the original reference string.
		Raw string

		// Kind determines which resolution tiers apply.
		Kind SpecifierKind

		// Scope is the package scope without the '@' (e.g., "acme" for
		// "@acme/tools"). Empty for unscoped references.
		Scope string

		// Name is the package or file name (final name for bare specifiers,
		// package name for package references).
		Name string

		// Subpath is the path below the package root, if any.
		Subpath string
	}
)

const (
	// SpecifierBare is a plain name with no path separator and no scope
	// prefix. Bare specifiers check the project-local command directory
	// before any package tier.
	SpecifierBare SpecifierKind = iota

	// SpecifierPackage contains a path separator or a scope prefix and is
	// resolved directly as a package/subpath reference, skipping the
	// project-local shortcut.
	SpecifierPackage
)

// String returns a human-readable kind name.
func (k SpecifierKind) String() string {
	switch k {
	case SpecifierBare:
		return "bare"
	case SpecifierPackage:
		return "package"
	default:
		return "unknown"
	}
}

// ParseSpecifier classifies a module reference string.
// An empty specifier is an error; everything else parses.
func ParseSpecifier(raw string) (Specifier, error) {
	if strings.TrimSpace(raw) == "" {
		return Specifier{}, fmt.Errorf("empty module specifier")
	}

	spec := Specifier{Raw: raw}

	scoped := strings.HasPrefix(raw, "@")
	if !scoped && !strings.ContainsRune(raw, '/') {
		spec.Kind = SpecifierBare
		spec.Name = raw
		return spec, nil
	}

	spec.Kind = SpecifierPackage
	rest := raw
	if scoped {
		slash := strings.IndexRune(raw, '/')
		if slash < 0 {
			return Specifier{}, fmt.Errorf("scoped specifier %q is missing a package name after the scope", raw)
		}
		spec.Scope = strings.TrimPrefix(raw[:slash], "@")
		if spec.Scope == "" {
			return Specifier{}, fmt.Errorf("scoped specifier %q has an empty scope", raw)
		}
		rest = raw[slash+1:]
		if rest == "" {
			return Specifier{}, fmt.Errorf("scoped specifier %q is missing a package name after the scope", raw)
		}
	}

	if slash := strings.IndexRune(rest, '/'); slash >= 0 {
		spec.Name = rest[:slash]
		spec.Subpath = rest[slash+1:]
	} else {
		spec.Name = rest
	}

	if spec.Name == "" {
		return Specifier{}, fmt.Errorf("specifier %q has an empty package name", raw)
	}

	return spec, nil
}

// PackagePath returns the specifier as a relative path inside a package
// tree, including the scope directory when present.
func (s Specifier) PackagePath() string {
	p := s.Name
	if s.Scope != "" {
		p = path.Join("@"+s.Scope, s.Name)
	}
	if s.Subpath != "" {
		p = path.Join(p, s.Subpath)
	}
	return p
}

// GroupName derives the default command group for this specifier: the final
// path segment, without any file extension.
func (s Specifier) GroupName() string {
	base := s.Name
	if s.Subpath != "" {
		base = path.Base(s.Subpath)
	}
	if dot := strings.LastIndexByte(base, '.'); dot > 0 {
		base = base[:dot]
	}
	return base
}
