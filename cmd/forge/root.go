// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the forge CLI: bootstrap, command registration and
// the builtins. The command tree is rebuilt on every invocation from the
// merged configuration, so Execute returns an exit code to main instead of
// exiting itself (main owns the restart protocol).
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"forge-cli/internal/issue"
	"forge-cli/internal/restart"
	"forge-cli/pkg/types"

	"github.com/charmbracelet/fang"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs one forge invocation end to end: bootstrap flags, config,
// dependency sync, module loading, then the strict cobra pass over the
// assembled tree. The returned exit code includes the restart sentinel when
// dependency sync changed the installed set.
func Execute() types.ExitCode {
	globals, err := ParseGlobalOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return types.ExitUsage
	}

	a, err := newApp(globals)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, globals.Debug))
		return types.ExitUsage
	}
	defer a.close()

	ctx := context.Background()

	if err := a.syncDependencies(ctx); err != nil {
		if errors.Is(err, restart.ErrRequested) {
			return restart.SentinelExitCode
		}
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, globals.Debug))
		return types.ExitInternal
	}

	if err := a.loadModules(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, globals.Debug))
		return types.ExitInternal
	}

	rootCmd := a.buildRootCommand()

	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return types.ExitUsage
	}

	return types.ExitSuccess
}

// formatErrorForDisplay formats an error for user display. Actionable errors
// render their suggestions; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
