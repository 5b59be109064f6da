// SPDX-License-Identifier: MPL-2.0

package restart

import (
	"testing"
)

func TestAlreadyRestarted(t *testing.T) {
	t.Setenv(EnvMarker, "")
	if AlreadyRestarted() {
		t.Error("AlreadyRestarted() = true with marker unset")
	}

	t.Setenv(EnvMarker, "1")
	if !AlreadyRestarted() {
		t.Error("AlreadyRestarted() = false with marker set")
	}
}

func TestSentinelExitCodeIsReserved(t *testing.T) {
	if err := SentinelExitCode.Validate(); err != nil {
		t.Errorf("sentinel code invalid: %v", err)
	}
	// The sentinel must not collide with ordinary success/usage codes.
	if SentinelExitCode == 0 || SentinelExitCode == 1 || SentinelExitCode == 2 {
		t.Errorf("sentinel code %d collides with common exit codes", SentinelExitCode)
	}
}
