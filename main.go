// SPDX-License-Identifier: MPL-2.0

// forge is a personal command-line automation framework: it turns small Lua
// modules into CLI commands.
//
// main is deliberately thin. It runs one CLI pass and owns the restart
// protocol: when dependency sync changes the installed set the inner pass
// exits with the reserved sentinel code, and main re-invokes the executable
// exactly once with the restart marker set.
package main

import (
	"fmt"
	"os"

	cmd "forge-cli/cmd/forge"
	"forge-cli/internal/restart"
)

func main() {
	code := cmd.Execute()

	if code == restart.SentinelExitCode && !restart.AlreadyRestarted() {
		childCode, err := restart.Relaunch()
		if err != nil {
			fmt.Fprintln(os.Stderr, "forge: restart failed:", err)
			os.Exit(int(childCode))
		}
		os.Exit(int(childCode))
	}

	os.Exit(int(code))
}
