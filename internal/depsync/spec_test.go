// SPDX-License-Identifier: MPL-2.0

package depsync

import (
	"testing"
)

func TestParseDependency(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected DependencySpec
	}{
		{
			name: "registry package",
			raw:  "left-pad",
			expected: DependencySpec{
				Raw:  "left-pad",
				Kind: KindRegistry,
				Name: "left-pad",
			},
		},
		{
			name: "registry package with constraint",
			raw:  "left-pad@^1.3.0",
			expected: DependencySpec{
				Raw:        "left-pad@^1.3.0",
				Kind:       KindRegistry,
				Name:       "left-pad",
				Constraint: "^1.3.0",
			},
		},
		{
			name: "scoped registry package with constraint",
			raw:  "@acme/tools@2.0.0",
			expected: DependencySpec{
				Raw:        "@acme/tools@2.0.0",
				Kind:       KindRegistry,
				Name:       "@acme/tools",
				Constraint: "2.0.0",
			},
		},
		{
			name: "scoped registry package without constraint",
			raw:  "@acme/tools",
			expected: DependencySpec{
				Raw:  "@acme/tools",
				Kind: KindRegistry,
				Name: "@acme/tools",
			},
		},
		{
			name: "https git URL",
			raw:  "https://github.com/user/repo.git",
			expected: DependencySpec{
				Raw:    "https://github.com/user/repo.git",
				Kind:   KindGit,
				Name:   "repo",
				Source: "https://github.com/user/repo.git",
			},
		},
		{
			name: "scp-style git URL",
			raw:  "git@github.com:user/repo.git",
			expected: DependencySpec{
				Raw:    "git@github.com:user/repo.git",
				Kind:   KindGit,
				Name:   "repo",
				Source: "git@github.com:user/repo.git",
			},
		},
		{
			name: "relative local path",
			raw:  "./vendor/tools",
			expected: DependencySpec{
				Raw:    "./vendor/tools",
				Kind:   KindLocal,
				Name:   "tools",
				Source: "./vendor/tools",
			},
		},
		{
			name: "absolute local path",
			raw:  "/opt/forge/tools",
			expected: DependencySpec{
				Raw:    "/opt/forge/tools",
				Kind:   KindLocal,
				Name:   "tools",
				Source: "/opt/forge/tools",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDependency(tt.raw)
			if err != nil {
				t.Fatalf("ParseDependency(%q): %v", tt.raw, err)
			}
			if got != tt.expected {
				t.Errorf("ParseDependency(%q) = %+v, want %+v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestParseDependencyErrors(t *testing.T) {
	tests := []string{"", "   ", "./", "/"}

	for _, raw := range tests {
		if _, err := ParseDependency(raw); err == nil {
			t.Errorf("ParseDependency(%q) succeeded, want error", raw)
		}
	}
}
