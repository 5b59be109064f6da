// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"io"

	"github.com/spf13/pflag"
)

// GlobalOptions are the flags that must be known before the command tree can
// even be built: they control logging, where the project root is, and which
// configuration is loaded. They are extracted by a permissive first-pass
// parse and declared again on the root command so the strict second pass
// accepts them.
type GlobalOptions struct {
	// Debug forces debug-level logging with caller reporting.
	Debug bool
	// Quiet raises the log level to warn.
	Quiet bool
	// Silent raises the log level to error.
	Silent bool

	// LogLevel, LogFormat and Color override the config's log section.
	LogLevel  string
	LogFormat string
	Color     string

	// Root overrides project root discovery.
	Root string

	// ConfigDir overrides the user configuration directory.
	ConfigDir string

	// Overrides are key=value configuration overrides, applied last.
	Overrides []string
}

// ParseGlobalOptions runs the permissive first-pass parse over the raw
// arguments. Unknown flags belong to commands that have not been registered
// yet, so they are skipped rather than rejected; strict validation happens in
// the second pass once the full tree exists.
func ParseGlobalOptions(args []string) (*GlobalOptions, error) {
	opts := &GlobalOptions{}

	fs := pflag.NewFlagSet("forge", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	bindGlobalFlags(fs, opts)

	if err := fs.Parse(args); err != nil {
		// --help is handled by the real command tree in the second pass.
		if errors.Is(err, pflag.ErrHelp) {
			return opts, nil
		}
		return nil, err
	}

	return opts, nil
}

// bindGlobalFlags declares the global flags on a flag set. It is shared
// between the first-pass parse and the root command's persistent flags so
// both passes agree on names and defaults.
func bindGlobalFlags(fs *pflag.FlagSet, opts *GlobalOptions) {
	fs.BoolVar(&opts.Debug, "debug", false, "enable debug logging with caller reporting")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "only log warnings and errors")
	fs.BoolVar(&opts.Silent, "silent", false, "only log errors")
	fs.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFormat, "log-format", "", "log format (text, logfmt, json)")
	fs.StringVar(&opts.Color, "color", "", "color output (auto, always, never)")
	fs.StringVar(&opts.Root, "root", "", "project root (default: walk up from the working directory)")
	fs.StringVar(&opts.ConfigDir, "config", "", "user configuration directory")
	fs.StringArrayVar(&opts.Overrides, "override", nil, "configuration override (key=value, repeatable)")
}
