// SPDX-License-Identifier: MPL-2.0

package depsync

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"forge-cli/pkg/forgemod"

	git "github.com/go-git/go-git/v5"
)

type (
	// Installer puts one missing dependency into the shared install tree and
	// returns the version it recorded.
	Installer interface {
		Install(ctx context.Context, dep DependencySpec) (version string, err error)
	}

	// ExecRunner runs an external command. Swapped out in tests.
	ExecRunner func(ctx context.Context, argv []string) error

	// TreeInstaller is the production installer. Git dependencies are cloned
	// with go-git, local paths are linked, and registry packages delegate to
	// the configured external package manager.
	TreeInstaller struct {
		// SharedDir is the root of the shared install tree.
		SharedDir string

		// RegistryArgv is the external package-manager command template.
		// The placeholders {name}, {constraint} and {shared} are expanded
		// per dependency.
		RegistryArgv []string

		// Run executes external commands; nil means exec with inherited
		// stdio.
		Run ExecRunner
	}
)

// DefaultRegistryArgv is the package-manager template used when the config
// does not override 'installer'.
var DefaultRegistryArgv = []string{"luarocks", "install", "--tree", "{shared}", "{name}", "{constraint}"}

// Install implements Installer.
func (t *TreeInstaller) Install(ctx context.Context, dep DependencySpec) (string, error) {
	switch dep.Kind {
	case KindGit:
		return t.installGit(ctx, dep)
	case KindLocal:
		return t.installLocal(dep)
	default:
		return t.installRegistry(ctx, dep)
	}
}

func (t *TreeInstaller) modulesDir() string {
	return filepath.Join(t.SharedDir, forgemod.SharedModulesDirName)
}

// installGit shallow-clones the repository into the shared module tree.
func (t *TreeInstaller) installGit(ctx context.Context, dep DependencySpec) (string, error) {
	dest := filepath.Join(t.modulesDir(), dep.Name)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create shared module tree: %w", err)
	}

	repo, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:   dep.Source,
		Depth: 1,
	})
	if err != nil {
		return "", fmt.Errorf("clone %s: %w", dep.Source, err)
	}

	version := "HEAD"
	if head, err := repo.Head(); err == nil {
		version = head.Hash().String()[:12]
	}
	return version, nil
}

// installLocal links a local path into the shared module tree.
func (t *TreeInstaller) installLocal(dep DependencySpec) (string, error) {
	src, err := filepath.Abs(dep.Source)
	if err != nil {
		return "", fmt.Errorf("resolve local dependency %s: %w", dep.Source, err)
	}
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("local dependency %s: %w", dep.Source, err)
	}

	dest := filepath.Join(t.modulesDir(), dep.Name)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create shared module tree: %w", err)
	}
	if err := os.Symlink(src, dest); err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("link local dependency: %w", err)
	}
	return "local", nil
}

// installRegistry invokes the external package manager.
func (t *TreeInstaller) installRegistry(ctx context.Context, dep DependencySpec) (string, error) {
	argv := t.RegistryArgv
	if len(argv) == 0 {
		argv = DefaultRegistryArgv
	}

	expanded := make([]string, 0, len(argv))
	for _, a := range argv {
		a = strings.ReplaceAll(a, "{name}", dep.Name)
		a = strings.ReplaceAll(a, "{constraint}", dep.Constraint)
		a = strings.ReplaceAll(a, "{shared}", t.SharedDir)
		if a == "" {
			// A dependency without a constraint leaves the {constraint}
			// placeholder empty; drop the argument entirely.
			continue
		}
		expanded = append(expanded, a)
	}

	if len(expanded) == 0 {
		return "", fmt.Errorf("installer template %q expands to an empty command for %s", strings.Join(argv, " "), dep.Name)
	}

	run := t.Run
	if run == nil {
		run = execWithStdio
	}
	if err := run(ctx, expanded); err != nil {
		return "", fmt.Errorf("package manager %q: %w", expanded[0], err)
	}

	version := dep.Constraint
	if version == "" {
		version = "latest"
	}
	return version, nil
}

func execWithStdio(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
