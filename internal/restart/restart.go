// SPDX-License-Identifier: MPL-2.0

// Package restart implements the continue-via-re-exec protocol used when the
// installed dependency set changes mid-run. The inner process cannot safely
// pick up a changed dependency graph — its module state already initialized
// against the old one — so it exits with a reserved sentinel code and the
// thin launcher in main re-invokes it once, with an environment marker set
// so a second restart request fails instead of looping.
package restart

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"forge-cli/pkg/types"
)

const (
	// SentinelExitCode is the reserved exit code signaling "restart me" to
	// the launcher. Distinct from 0/1/2 so it never collides with ordinary
	// success or usage failures.
	SentinelExitCode types.ExitCode = 86

	// EnvMarker is set by the launcher before re-invoking. Its presence
	// tells the inner process it already restarted once.
	EnvMarker = "FORGE_RESTARTED"
)

// ErrRequested is returned through the command chain when dependency sync
// changed the installed set. The CLI layer maps it to SentinelExitCode.
var ErrRequested = errors.New("restart requested: dependency set changed")

// AlreadyRestarted reports whether this process was launched by the restart
// wrapper.
func AlreadyRestarted() bool {
	return os.Getenv(EnvMarker) != ""
}

// Relaunch re-invokes the current executable with the same arguments and the
// restart marker set, passing stdio through, and returns the child's exit
// code. This is the launcher half of the protocol; it must only be called
// when AlreadyRestarted is false.
func Relaunch() (types.ExitCode, error) {
	self, err := os.Executable()
	if err != nil {
		return types.ExitInternal, fmt.Errorf("locate executable for restart: %w", err)
	}

	cmd := exec.Command(self, os.Args[1:]...)
	cmd.Env = append(os.Environ(), EnvMarker+"=1")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err = cmd.Run()
	if err == nil {
		return types.ExitSuccess, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return types.ExitCode(exitErr.ExitCode()), nil
	}
	return types.ExitInternal, fmt.Errorf("relaunch: %w", err)
}
