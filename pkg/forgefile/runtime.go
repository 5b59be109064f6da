// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"forge-cli/pkg/forgemod"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
)

// HostModuleName is the Lua module name under which the host framework's
// shared bindings are exposed. The table is preloaded once per process, so
// every command module that requires it sees the exact same instance —
// including the host's already-configured logger.
const HostModuleName = "forge"

type (
	// Host carries the framework singletons exposed to command modules.
	Host struct {
		// Version is the forge version string.
		Version string

		// SharedDir is the root of the shared install tree.
		SharedDir string

		// Logger is the process-wide logger. Nil falls back to the default.
		Logger *log.Logger

		// Stdout receives module print output. Nil falls back to os.Stdout.
		Stdout io.Writer
	}

	// Runtime owns the Lua state for one process invocation. Modules are
	// re-imported into a fresh Runtime on every run; nothing survives the
	// process.
	Runtime struct {
		L    *lua.LState
		host Host
	}
)

// NewRuntime creates the invocation-scoped Lua state with the host bindings
// preloaded and the shared install tree on the require path.
func NewRuntime(host Host) *Runtime {
	if host.Logger == nil {
		host.Logger = log.Default()
	}
	if host.Stdout == nil {
		host.Stdout = os.Stdout
	}

	r := &Runtime{L: lua.NewState(), host: host}

	r.L.PreloadModule(HostModuleName, r.hostModuleLoader)
	if host.SharedDir != "" {
		r.AddRequirePath(filepath.Join(host.SharedDir, forgemod.SharedModulesDirName))
	}

	return r
}

// Close releases the Lua state.
func (r *Runtime) Close() {
	r.L.Close()
}

// AddRequirePath appends dir to the Lua require search path so modules in
// dir resolve each other (and shared packages) by name.
func (r *Runtime) AddRequirePath(dir string) {
	pkg := r.L.GetGlobal("package")
	current := lua.LVAsString(r.L.GetField(pkg, "path"))

	patterns := filepath.Join(dir, "?"+forgemod.ModuleExt) + ";" +
		filepath.Join(dir, "?", "init"+forgemod.ModuleExt)
	if current != "" {
		patterns = patterns + ";" + current
	}
	r.L.SetField(pkg, "path", lua.LString(patterns))
}

// LoadModule imports a resolved module and discovers its commands.
//
// Project-local modules are loaded through the alias link rather than their
// real absolute path, so the Lua loader's path-keyed caches treat their
// files as siblings of the shared tree and resolve the host bindings to the
// instance already loaded in this process.
func (r *Runtime) LoadModule(res *forgemod.ResolvedModule, alias *forgemod.AliasEntry) (*Module, error) {
	path := res.Path
	if res.Origin == forgemod.OriginLocal && alias != nil {
		if rewritten, ok := alias.Rewrite(res.Path); ok {
			path = rewritten
			r.AddRequirePath(alias.Path)
		}
	}

	fn, err := r.L.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load module %s: %w", res.Specifier.Raw, err)
	}

	// The chunk runs in a fresh environment table so the globals it assigns
	// become its named exports. Reads still fall through to the real globals.
	env := r.L.NewTable()
	mt := r.L.NewTable()
	mt.RawSetString("__index", r.L.Get(lua.GlobalsIndex))
	r.L.SetMetatable(env, mt)
	env.RawSetString("print", r.L.NewFunction(r.hostPrint))
	r.L.SetFEnv(fn, env)

	r.L.Push(fn)
	if err := r.L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("run module %s: %w", res.Specifier.Raw, err)
	}
	defaultExport := r.L.Get(-1)
	r.L.Pop(1)

	return r.discover(res.Specifier, defaultExport, env), nil
}

// hostPrint writes print() output to the host stdout writer.
func (r *Runtime) hostPrint(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(r.host.Stdout, strings.Join(parts, "\t"))
	return 0
}

// hostModuleLoader builds the shared 'forge' bindings table.
func (r *Runtime) hostModuleLoader(L *lua.LState) int {
	mod := L.NewTable()
	mod.RawSetString("version", lua.LString(r.host.Version))
	mod.RawSetString("shared_dir", lua.LString(r.host.SharedDir))

	logTbl := L.NewTable()
	logTbl.RawSetString("debug", L.NewFunction(r.logFn(r.host.Logger.Debug)))
	logTbl.RawSetString("info", L.NewFunction(r.logFn(r.host.Logger.Info)))
	logTbl.RawSetString("warn", L.NewFunction(r.logFn(r.host.Logger.Warn)))
	logTbl.RawSetString("error", L.NewFunction(r.logFn(r.host.Logger.Error)))
	mod.RawSetString("log", logTbl)

	L.Push(mod)
	return 1
}

// logFn adapts a leveled logger method into a Lua function taking a message
// plus optional key/value pairs.
func (r *Runtime) logFn(emit func(any, ...any)) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.CheckString(1)
		var kv []any
		for i := 2; i <= L.GetTop(); i++ {
			kv = append(kv, fromLValue(L.Get(i)))
		}
		emit(msg, kv...)
		return 0
	}
}
