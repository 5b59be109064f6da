// SPDX-License-Identifier: MPL-2.0

package forgemod

import (
	"testing"
)

func TestParseSpecifier(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Specifier
	}{
		{
			name: "bare name",
			raw:  "tools",
			expected: Specifier{
				Raw:  "tools",
				Kind: SpecifierBare,
				Name: "tools",
			},
		},
		{
			name: "package with subpath",
			raw:  "utils/strings",
			expected: Specifier{
				Raw:     "utils/strings",
				Kind:    SpecifierPackage,
				Name:    "utils",
				Subpath: "strings",
			},
		},
		{
			name: "scoped package",
			raw:  "@acme/tools",
			expected: Specifier{
				Raw:   "@acme/tools",
				Kind:  SpecifierPackage,
				Scope: "acme",
				Name:  "tools",
			},
		},
		{
			name: "scoped package with subpath",
			raw:  "@acme/tools/deploy",
			expected: Specifier{
				Raw:     "@acme/tools/deploy",
				Kind:    SpecifierPackage,
				Scope:   "acme",
				Name:    "tools",
				Subpath: "deploy",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpecifier(tt.raw)
			if err != nil {
				t.Fatalf("ParseSpecifier(%q) returned error: %v", tt.raw, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSpecifier(%q) = %+v, want %+v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestParseSpecifierErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace only", raw: "   "},
		{name: "scope without package", raw: "@acme"},
		{name: "empty scope", raw: "@/tools"},
		{name: "scope with trailing slash", raw: "@acme/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSpecifier(tt.raw); err == nil {
				t.Errorf("ParseSpecifier(%q) succeeded, want error", tt.raw)
			}
		})
	}
}

func TestSpecifierPackagePath(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "tools", expected: "tools"},
		{raw: "utils/strings", expected: "utils/strings"},
		{raw: "@acme/tools", expected: "@acme/tools"},
		{raw: "@acme/tools/deploy", expected: "@acme/tools/deploy"},
	}

	for _, tt := range tests {
		spec, err := ParseSpecifier(tt.raw)
		if err != nil {
			t.Fatalf("ParseSpecifier(%q): %v", tt.raw, err)
		}
		if got := spec.PackagePath(); got != tt.expected {
			t.Errorf("PackagePath(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}

func TestSpecifierGroupName(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "tools", expected: "tools"},
		{raw: "utils/strings", expected: "strings"},
		{raw: "@acme/tools", expected: "tools"},
		{raw: "@acme/tools/deploy.lua", expected: "deploy"},
	}

	for _, tt := range tests {
		spec, err := ParseSpecifier(tt.raw)
		if err != nil {
			t.Fatalf("ParseSpecifier(%q): %v", tt.raw, err)
		}
		if got := spec.GroupName(); got != tt.expected {
			t.Errorf("GroupName(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}
