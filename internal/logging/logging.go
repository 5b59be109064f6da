// SPDX-License-Identifier: MPL-2.0

// Package logging configures the process-wide logger from bootstrap options.
// The logger must be usable before configuration is loaded, so Setup takes
// only values extracted by the permissive first-pass flag parse.
package logging

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Options captures the global logging flags extracted during bootstrap.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is one of text, logfmt, json. Empty means text.
	Format string
	// Color is one of auto, always, never. Empty means auto.
	Color string
	// Debug forces level=debug and enables caller reporting.
	Debug bool
	// Quiet raises the level to warn unless Debug is set.
	Quiet bool
	// Silent raises the level to error unless Debug is set.
	Silent bool
}

// Setup configures the default charmbracelet logger. It never fails: unknown
// level/format values fall back to defaults so logging is available even when
// the flags are garbage.
func Setup(opts Options) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	logger.SetLevel(resolveLevel(opts))
	logger.SetFormatter(resolveFormatter(opts.Format))

	switch strings.ToLower(opts.Color) {
	case "always":
		logger.SetColorProfile(termenv.ANSI256)
	case "never":
		logger.SetColorProfile(termenv.Ascii)
	default:
		// auto: let the terminal detection in termenv decide
	}

	if opts.Debug {
		logger.SetReportCaller(true)
	}

	log.SetDefault(logger)
	return logger
}

func resolveLevel(opts Options) log.Level {
	if opts.Debug {
		return log.DebugLevel
	}
	if opts.Silent {
		return log.ErrorLevel
	}
	if opts.Quiet {
		return log.WarnLevel
	}

	switch strings.ToLower(opts.Level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func resolveFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
