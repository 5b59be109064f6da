// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestSetupLevelResolution(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		expected log.Level
	}{
		{name: "default", opts: Options{}, expected: log.InfoLevel},
		{name: "explicit level", opts: Options{Level: "error"}, expected: log.ErrorLevel},
		{name: "quiet", opts: Options{Quiet: true}, expected: log.WarnLevel},
		{name: "silent", opts: Options{Silent: true}, expected: log.ErrorLevel},
		{name: "debug wins over silent", opts: Options{Debug: true, Silent: true}, expected: log.DebugLevel},
		{name: "unknown level falls back", opts: Options{Level: "nonsense"}, expected: log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Setup(tt.opts)
			if got := logger.GetLevel(); got != tt.expected {
				t.Errorf("level = %v, want %v", got, tt.expected)
			}
		})
	}
}
