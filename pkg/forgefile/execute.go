// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// StateStore is the persistent state collaborator exposed to commands.
	StateStore interface {
		Get(key string) (any, bool)
		Set(key string, value any) error
		Delete(key string) error
	}

	// Invocation carries everything a dispatched command can see.
	Invocation struct {
		Context context.Context

		// Options are the parsed flag values, keyed by flag name.
		Options map[string]string

		// Args are the positional arguments after strict parsing.
		Args []string

		// GroupName and CommandName identify the dispatch target.
		GroupName   string
		CommandName string

		// Settings is this command's slice of the merged config settings.
		Settings map[string]any

		// Config is a read-only view of the merged configuration.
		Config map[string]any

		// State is the persistent state collaborator. May be nil.
		State StateStore

		// WorkDir is the working directory for run scripts.
		WorkDir string

		// Log reporting context, as resolved during bootstrap.
		LogLevel  string
		LogFormat string
		ColorMode string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}
)

// Execute dispatches the command: Lua execute functions are called with
// (options, args, ctx); run scripts are executed by the virtual shell with
// options exported as environment variables.
func (c *CommandDefinition) Execute(inv Invocation) error {
	if inv.Context == nil {
		inv.Context = context.Background()
	}
	if inv.Stdin == nil {
		inv.Stdin = os.Stdin
	}
	if inv.Stdout == nil {
		inv.Stdout = c.rt.host.Stdout
	}
	if inv.Stderr == nil {
		inv.Stderr = os.Stderr
	}

	if c.execute != nil {
		return c.executeLua(inv)
	}
	return c.executeScript(inv)
}

func (c *CommandDefinition) executeLua(inv Invocation) error {
	L := c.rt.L

	opts := L.NewTable()
	for k, v := range inv.Options {
		opts.RawSetString(k, lua.LString(v))
	}

	args := L.NewTable()
	for _, a := range inv.Args {
		args.Append(lua.LString(a))
	}

	return L.CallByParam(lua.P{Fn: c.execute, NRet: 0, Protect: true},
		opts, args, c.contextTable(inv))
}

// contextTable builds the ctx argument handed to execute functions.
func (c *CommandDefinition) contextTable(inv Invocation) *lua.LTable {
	L := c.rt.L

	ctx := L.NewTable()
	ctx.RawSetString("group", lua.LString(inv.GroupName))
	ctx.RawSetString("command", lua.LString(inv.CommandName))
	ctx.RawSetString("workdir", lua.LString(inv.WorkDir))
	ctx.RawSetString("log_level", lua.LString(inv.LogLevel))
	ctx.RawSetString("log_format", lua.LString(inv.LogFormat))
	ctx.RawSetString("color", lua.LString(inv.ColorMode))
	ctx.RawSetString("settings", toLValue(L, inv.Settings))
	ctx.RawSetString("config", toLValue(L, inv.Config))

	logTbl := L.NewTable()
	logTbl.RawSetString("debug", L.NewFunction(c.rt.logFn(c.rt.host.Logger.Debug)))
	logTbl.RawSetString("info", L.NewFunction(c.rt.logFn(c.rt.host.Logger.Info)))
	logTbl.RawSetString("warn", L.NewFunction(c.rt.logFn(c.rt.host.Logger.Warn)))
	logTbl.RawSetString("error", L.NewFunction(c.rt.logFn(c.rt.host.Logger.Error)))
	ctx.RawSetString("log", logTbl)

	if inv.State != nil {
		st := inv.State
		stateTbl := L.NewTable()
		stateTbl.RawSetString("get", L.NewFunction(func(L *lua.LState) int {
			v, ok := st.Get(L.CheckString(1))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(toLValue(L, v))
			return 1
		}))
		stateTbl.RawSetString("set", L.NewFunction(func(L *lua.LState) int {
			if err := st.Set(L.CheckString(1), fromLValue(L.Get(2))); err != nil {
				L.RaiseError("state set: %v", err)
			}
			return 0
		}))
		stateTbl.RawSetString("delete", L.NewFunction(func(L *lua.LState) int {
			if err := st.Delete(L.CheckString(1)); err != nil {
				L.RaiseError("state delete: %v", err)
			}
			return 0
		}))
		ctx.RawSetString("state", stateTbl)
	}

	return ctx
}

// executeScript runs the command's shell script body with the virtual shell.
// Flag values are exported as FORGE_OPT_* environment variables and the
// positional arguments become $1, $2, ...
func (c *CommandDefinition) executeScript(inv Invocation) error {
	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(c.runScript), c.Name)
	if err != nil {
		return fmt.Errorf("parse run script: %w", err)
	}

	env := os.Environ()
	for name, value := range inv.Options {
		env = append(env, OptionEnvVar(name)+"="+value)
	}
	env = append(env,
		"FORGE_GROUP="+inv.GroupName,
		"FORGE_COMMAND="+inv.CommandName,
	)

	opts := []interp.RunnerOption{
		interp.Dir(inv.WorkDir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(inv.Stdin, inv.Stdout, inv.Stderr),
	}

	// Prepend "--" so args like "-v" are not taken as shell options.
	if len(inv.Args) > 0 {
		params := append([]string{"--"}, inv.Args...)
		opts = append(opts, interp.Params(params...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("create interpreter: %w", err)
	}

	if err := runner.Run(inv.Context, prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return fmt.Errorf("run script exited with status %d", status)
		}
		return err
	}
	return nil
}

// OptionEnvVar maps a flag name to the environment variable exported to run
// scripts: FORGE_OPT_ plus the upper-cased name with dashes as underscores.
func OptionEnvVar(name string) string {
	return "FORGE_OPT_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
