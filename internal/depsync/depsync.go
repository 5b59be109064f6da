// SPDX-License-Identifier: MPL-2.0

package depsync

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"forge-cli/internal/issue"

	"github.com/charmbracelet/log"
)

type (
	// InstallMode controls what happens when a declared dependency is
	// missing from the shared install tree.
	InstallMode string

	// Synchronizer compares declared dependencies against the shared install
	// manifest and installs what is missing.
	Synchronizer struct {
		// SharedDir is the root of the shared install tree.
		SharedDir string

		// Mode is the configured install mode.
		Mode InstallMode

		// Installer performs installations. Nil uses a TreeInstaller with
		// the default registry command.
		Installer Installer

		// AlreadyRestarted is true when this process was launched by the
		// restart wrapper. A second restart request is then fatal.
		AlreadyRestarted bool

		// Prompt is the ask-mode confirmation source. Nil means stdin is
		// not interactive and ask falls back to auto.
		Prompt func(question string) (bool, error)

		// Logger reports sync progress. Nil uses the default logger.
		Logger *log.Logger
	}

	// Result is the outcome of one synchronization pass.
	Result struct {
		// Missing are the dependencies that were not installed when the
		// pass started.
		Missing []DependencySpec

		// Installed are the dependencies installed during this pass.
		Installed []DependencySpec

		// RestartRequired is true when the installed set changed: the
		// current process's module graph is stale and must be replaced by
		// a fresh process.
		RestartRequired bool
	}
)

const (
	// InstallAuto installs missing dependencies without asking.
	InstallAuto InstallMode = "auto"
	// InstallManual fails with instructions instead of installing.
	InstallManual InstallMode = "manual"
	// InstallAsk prompts before installing, falling back to auto when the
	// session is not interactive.
	InstallAsk InstallMode = "ask"
)

// Sync ensures every declared dependency is present in the shared install
// tree. It never installs anything when all dependencies are already
// present.
func (s *Synchronizer) Sync(ctx context.Context, declared []string) (Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	manifest, err := LoadManifest(s.SharedDir)
	if err != nil {
		return Result{}, issue.WrapWithOperation(err, "read shared install manifest")
	}

	var result Result
	for _, raw := range declared {
		dep, err := ParseDependency(raw)
		if err != nil {
			return Result{}, issue.NewErrorContext().
				WithOperation("parse dependency").
				WithResource(raw).
				WithSuggestion("Dependencies are package names with an optional @constraint, git URLs, or local paths").
				Wrap(err).
				BuildError()
		}
		if !manifest.Has(dep) {
			result.Missing = append(result.Missing, dep)
		}
	}

	if len(result.Missing) == 0 {
		return result, nil
	}

	// A restarted process whose dependencies are still missing would just
	// install and restart forever. Refuse instead.
	if s.AlreadyRestarted {
		return Result{}, issue.NewErrorContext().
			WithOperation("synchronize dependencies").
			WithResource(joinNames(result.Missing)).
			WithSuggestion("The dependency was installed but is still not visible in the shared manifest").
			WithSuggestion("Check that the configured package manager writes to the shared install tree").
			Wrap(fmt.Errorf("still missing after restart")).
			BuildError()
	}

	mode := s.Mode
	if mode == "" {
		mode = InstallAuto
	}

	switch mode {
	case InstallManual:
		return Result{}, issue.NewErrorContext().
			WithOperation("synchronize dependencies").
			WithResource(joinNames(result.Missing)).
			WithSuggestion("Install the missing dependencies, or set install_mode to \"auto\"").
			Wrap(fmt.Errorf("install_mode is \"manual\" and %d dependencies are missing", len(result.Missing))).
			BuildError()
	case InstallAsk:
		if s.Prompt != nil {
			ok, err := s.Prompt(fmt.Sprintf("Install %d missing dependencies (%s)?", len(result.Missing), joinNames(result.Missing)))
			if err != nil {
				return Result{}, fmt.Errorf("prompt for install: %w", err)
			}
			if !ok {
				return Result{}, issue.NewErrorContext().
					WithOperation("synchronize dependencies").
					WithResource(joinNames(result.Missing)).
					Wrap(fmt.Errorf("installation declined")).
					BuildError()
			}
		}
		// No prompt available: fall through to auto.
	case InstallAuto:
	default:
		return Result{}, fmt.Errorf("unknown install_mode %q", mode)
	}

	installer := s.Installer
	if installer == nil {
		installer = &TreeInstaller{SharedDir: s.SharedDir}
	}

	for _, dep := range result.Missing {
		logger.Info("installing dependency", "name", dep.Name, "kind", dep.Kind.String())

		version, err := installer.Install(ctx, dep)
		if err != nil {
			return Result{}, issue.NewErrorContext().
				WithOperation("install dependency").
				WithResource(dep.Raw).
				WithSuggestion("Check that the package name and constraint are correct").
				WithSuggestion("Run with --debug for the full error chain").
				Wrap(err).
				BuildError()
		}

		// Persist after every install so a failure on a later dependency
		// does not forget the work already done.
		manifest.Record(dep, version)
		if err := manifest.Save(); err != nil {
			return Result{}, issue.WrapWithOperation(err, "write shared install manifest")
		}
		result.Installed = append(result.Installed, dep)
	}

	result.RestartRequired = len(result.Installed) > 0
	return result, nil
}

// StdinPrompt builds an ask-mode prompt reading y/N confirmations from in
// and writing the question to out.
func StdinPrompt(in io.Reader, out io.Writer) func(string) (bool, error) {
	reader := bufio.NewReader(in)
	return func(question string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N] ", question)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

func joinNames(deps []DependencySpec) string {
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name
	}
	return strings.Join(names, ", ")
}
