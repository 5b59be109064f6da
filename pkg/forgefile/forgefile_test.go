// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"forge-cli/pkg/forgemod"
)

// loadSource writes source to a temp module file and imports it under the
// given specifier.
func loadSource(t *testing.T, rt *Runtime, specRaw, source string) *Module {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mod.lua")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := forgemod.ParseSpecifier(specRaw)
	if err != nil {
		t.Fatalf("ParseSpecifier(%q): %v", specRaw, err)
	}

	mod, err := rt.LoadModule(&forgemod.ResolvedModule{
		Specifier: spec,
		Path:      path,
		Origin:    forgemod.OriginShared,
	}, nil)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	return mod
}

func newTestRuntime(t *testing.T) (*Runtime, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	rt := NewRuntime(Host{Version: "test", Stdout: &out})
	t.Cleanup(rt.Close)
	return rt, &out
}

func TestDiscoverNamedExports(t *testing.T) {
	rt, _ := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
greet = {
  description = "say hi",
  execute = function(opts, args, ctx) end,
}

build = {
  description = "build it",
  run = "echo built",
}

-- not commands: wrong shape
helper = function() end
config = { description = 42, execute = function() end }
notes = { description = "no body" }
`)

	if len(mod.Commands) != 2 {
		t.Fatalf("len(Commands) = %d, want 2 (%v)", len(mod.Commands), commandNames(mod))
	}

	greet := mod.Commands["greet"]
	if greet == nil || !greet.HasExecute() {
		t.Errorf("greet not discovered as an execute command: %+v", greet)
	}
	build := mod.Commands["build"]
	if build == nil || !build.HasRunScript() {
		t.Errorf("build not discovered as a run-script command: %+v", build)
	}
	if build != nil && build.Description != "build it" {
		t.Errorf("build.Description = %q, want %q", build.Description, "build it")
	}
}

func TestDiscoverDefaultExport(t *testing.T) {
	rt, _ := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
return {
  deploy = {
    description = "deploy things",
    execute = function() end,
  },
}
`)

	if _, ok := mod.Commands["deploy"]; !ok {
		t.Fatalf("default-export command not discovered: %v", commandNames(mod))
	}
}

func TestNamedExportShadowsDefaultExport(t *testing.T) {
	rt, _ := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
deploy = {
  description = "named wins",
  execute = function() end,
}

return {
  deploy = {
    description = "default loses",
    execute = function() end,
  },
}
`)

	if len(mod.Commands) != 1 {
		t.Fatalf("len(Commands) = %d, want 1", len(mod.Commands))
	}
	if got := mod.Commands["deploy"].Description; got != "named wins" {
		t.Errorf("Description = %q, want the named export to win", got)
	}
}

func TestMetadataGroupName(t *testing.T) {
	tests := []struct {
		name        string
		spec        string
		meta        string
		wantGroup   string
		wantFlatten bool
	}{
		{
			name:      "derived from bare specifier",
			spec:      "tools",
			meta:      "",
			wantGroup: "tools",
		},
		{
			name:      "derived from subpath",
			spec:      "@acme/tools/deploy",
			meta:      "",
			wantGroup: "deploy",
		},
		{
			name:      "explicit group",
			spec:      "tools",
			meta:      `meta = { group = "aws", description = "cloud helpers" }`,
			wantGroup: "aws",
		},
		{
			name:        "group false flattens",
			spec:        "tools",
			meta:        `meta = { group = false }`,
			wantFlatten: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, _ := newTestRuntime(t)
			mod := loadSource(t, rt, tt.spec, tt.meta+`
go = { description = "x", execute = function() end }
`)
			if mod.Flatten != tt.wantFlatten {
				t.Errorf("Flatten = %v, want %v", mod.Flatten, tt.wantFlatten)
			}
			if !tt.wantFlatten && mod.GroupName != tt.wantGroup {
				t.Errorf("GroupName = %q, want %q", mod.GroupName, tt.wantGroup)
			}
			if _, ok := mod.Commands["meta"]; ok {
				t.Error("meta export must not be discovered as a command")
			}
		})
	}
}

func TestExecuteLuaCommand(t *testing.T) {
	rt, out := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
greet = {
  description = "say hi",
  execute = function(opts, args, ctx)
    print("hi " .. (opts.name or "?") .. " " .. (args[1] or "?") .. " from " .. ctx.group)
  end,
}
`)

	err := mod.Commands["greet"].Execute(Invocation{
		Options:     map[string]string{"name": "ada"},
		Args:        []string{"world"},
		GroupName:   "tools",
		CommandName: "greet",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := out.String(); !strings.Contains(got, "hi ada world from tools") {
		t.Errorf("output = %q, want greeting with option, arg and group", got)
	}
}

func TestExecuteLuaSeesHostBindings(t *testing.T) {
	rt, out := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
local forge = require("forge")

version = {
  description = "print host version",
  execute = function()
    print(forge.version)
  end,
}
`)

	if err := mod.Commands["version"].Execute(Invocation{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "test") {
		t.Errorf("output = %q, want the host version", got)
	}
}

func TestExecuteRunScript(t *testing.T) {
	rt, _ := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
build = {
  description = "build",
  run = "echo target=$FORGE_OPT_TARGET first=$1 cmd=$FORGE_COMMAND",
}
`)

	var out bytes.Buffer
	err := mod.Commands["build"].Execute(Invocation{
		Options:     map[string]string{"target": "linux"},
		Args:        []string{"alpha", "beta"},
		GroupName:   "tools",
		CommandName: "build",
		WorkDir:     t.TempDir(),
		Stdout:      &out,
		Stderr:      &out,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := out.String()
	for _, want := range []string{"target=linux", "first=alpha", "cmd=build"} {
		if !strings.Contains(got, want) {
			t.Errorf("script output %q missing %q", got, want)
		}
	}
}

func TestExecuteRunScriptFailure(t *testing.T) {
	rt, _ := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
fail = {
  description = "always fails",
  run = "exit 3",
}
`)

	var out bytes.Buffer
	err := mod.Commands["fail"].Execute(Invocation{
		WorkDir: t.TempDir(),
		Stdout:  &out,
		Stderr:  &out,
	})
	if err == nil {
		t.Fatal("Execute succeeded, want exit status error")
	}
	if !strings.Contains(err.Error(), "3") {
		t.Errorf("error = %v, want it to carry exit status 3", err)
	}
}

func TestRunDefine(t *testing.T) {
	rt, _ := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
release = {
  description = "cut a release",
  execute = function() end,
  defineCommand = function(cmd)
    cmd.flag("tag", { type = "string", required = true, description = "tag name" })
    cmd.flag("dry-run", { type = "bool", short = "n" })
    cmd.args(1, -1, "<target>...")
  end,
}
`)

	spec, err := mod.Commands["release"].RunDefine()
	if err != nil {
		t.Fatalf("RunDefine: %v", err)
	}

	if len(spec.Flags) != 2 {
		t.Fatalf("len(Flags) = %d, want 2", len(spec.Flags))
	}
	tag := spec.Flags[0]
	if tag.Name != "tag" || tag.Type != FlagString || !tag.Required {
		t.Errorf("tag flag = %+v, want required string", tag)
	}
	dry := spec.Flags[1]
	if dry.Name != "dry-run" || dry.Type != FlagBool || dry.Short != "n" {
		t.Errorf("dry-run flag = %+v, want bool with short n", dry)
	}

	if spec.Args == nil || spec.Args.Min != 1 || spec.Args.Max != -1 {
		t.Errorf("Args = %+v, want min 1 unbounded", spec.Args)
	}
}

func TestRunDefineRejectsUnknownFlagType(t *testing.T) {
	rt, _ := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
bad = {
  description = "bad flag type",
  execute = function() end,
  defineCommand = function(cmd)
    cmd.flag("x", { type = "float" })
  end,
}
`)

	if _, err := mod.Commands["bad"].RunDefine(); err == nil {
		t.Fatal("RunDefine succeeded, want unsupported flag type error")
	}
}

func TestRunDefineNilWithoutHook(t *testing.T) {
	rt, _ := newTestRuntime(t)

	mod := loadSource(t, rt, "tools", `
plain = { description = "no hook", execute = function() end }
`)

	spec, err := mod.Commands["plain"].RunDefine()
	if err != nil {
		t.Fatalf("RunDefine: %v", err)
	}
	if spec != nil {
		t.Errorf("spec = %+v, want nil without a hook", spec)
	}
}

func TestOptionEnvVar(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{name: "target", expected: "FORGE_OPT_TARGET"},
		{name: "dry-run", expected: "FORGE_OPT_DRY_RUN"},
		{name: "log-level", expected: "FORGE_OPT_LOG_LEVEL"},
	}

	for _, tt := range tests {
		if got := OptionEnvVar(tt.name); got != tt.expected {
			t.Errorf("OptionEnvVar(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func commandNames(mod *Module) []string {
	names := make([]string, 0, len(mod.Commands))
	for name := range mod.Commands {
		names = append(names, name)
	}
	return names
}
