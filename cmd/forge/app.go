// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"

	"forge-cli/internal/config"
	"forge-cli/internal/depsync"
	"forge-cli/internal/issue"
	"forge-cli/internal/logging"
	"forge-cli/internal/registry"
	"forge-cli/internal/restart"
	"forge-cli/internal/state"
	"forge-cli/pkg/forgefile"
	"forge-cli/pkg/forgemod"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

type (
	// app wires one invocation together: resolved project, merged config,
	// logger, shared tree, state store, Lua runtime and command registry.
	// It is built fresh on every run; nothing here outlives the process.
	app struct {
		globals     *GlobalOptions
		cfg         *config.Config
		logger      *log.Logger
		projectRoot string
		sharedDir   string
		state       *state.Store
		runtime     *forgefile.Runtime
		registry    *registry.Registry
		modules     []*loadedModule
	}

	// loadedModule pairs a resolved module with its discovery result, for
	// the modules builtins.
	loadedModule struct {
		Resolved *forgemod.ResolvedModule
		Module   *forgefile.Module
	}
)

// newApp resolves the project root, loads configuration, and configures
// logging. Dependency sync and module loading happen in later phases so a
// broken module never hides a config error.
func newApp(globals *GlobalOptions) (*app, error) {
	a := &app{globals: globals}

	root := globals.Root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, issue.WrapWithOperation(err, "determine working directory")
		}
		root = cwd
	}
	projectRoot, err := config.FindProjectRoot(root)
	if err != nil {
		return nil, err
	}
	a.projectRoot = projectRoot

	cfg, err := config.Load(config.LoadOptions{
		ProjectRoot:   projectRoot,
		UserConfigDir: globals.ConfigDir,
		Overrides:     globals.Overrides,
	})
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	a.logger = logging.Setup(logging.Options{
		Level:  firstNonEmpty(globals.LogLevel, cfg.Log.Level),
		Format: firstNonEmpty(globals.LogFormat, cfg.Log.Format),
		Color:  firstNonEmpty(globals.Color, cfg.Log.Color),
		Debug:  globals.Debug,
		Quiet:  globals.Quiet,
		Silent: globals.Silent,
	})

	sharedDir, err := config.SharedDir(cfg)
	if err != nil {
		return nil, err
	}
	a.sharedDir = sharedDir

	st, err := state.Open(sharedDir)
	if err != nil {
		return nil, issue.WrapWithOperation(err, "open state store")
	}
	a.state = st

	return a, nil
}

// syncDependencies brings the shared install tree up to date with the
// config's declared dependencies. When the installed set changed the current
// process's view of the shared tree is stale, so it returns
// restart.ErrRequested and the launcher re-invokes a fresh process.
func (a *app) syncDependencies(ctx context.Context) error {
	if len(a.cfg.Dependencies) == 0 {
		return nil
	}

	sync := &depsync.Synchronizer{
		SharedDir:        a.sharedDir,
		Mode:             depsync.InstallMode(a.cfg.InstallMode),
		AlreadyRestarted: restart.AlreadyRestarted(),
		Logger:           a.logger,
	}
	if len(a.cfg.Installer) > 0 {
		sync.Installer = &depsync.TreeInstaller{
			SharedDir:    a.sharedDir,
			RegistryArgv: a.cfg.Installer,
		}
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		sync.Prompt = depsync.StdinPrompt(os.Stdin, os.Stderr)
	}

	result, err := sync.Sync(ctx, a.cfg.Dependencies)
	if err != nil {
		return err
	}
	if result.RestartRequired {
		a.logger.Info("dependencies installed, restarting",
			"installed", len(result.Installed))
		return restart.ErrRequested
	}
	return nil
}

// loadModules resolves every configured module specifier, imports it through
// the Lua runtime, and registers its commands. Builtins register first so a
// module cannot shadow them. A module that fails to resolve or load is fatal:
// a typo'd specifier must not let the run succeed against a partial registry.
func (a *app) loadModules() error {
	a.registry = registry.New()
	registerBuiltins(a)

	a.runtime = forgefile.NewRuntime(forgefile.Host{
		Version:   Version,
		SharedDir: a.sharedDir,
		Logger:    a.logger,
		Stdout:    os.Stdout,
	})

	if len(a.cfg.Modules) == 0 {
		return nil
	}

	resolver, err := forgemod.NewResolver(a.projectRoot, a.sharedDir)
	if err != nil {
		return err
	}

	// The alias link is created lazily, on the first module that actually
	// resolves to the project-local tier; shared and project-tier modules
	// never touch the alias bucket.
	var (
		alias        *forgemod.AliasEntry
		aliasChecked bool
	)

	for _, spec := range a.cfg.Modules {
		res, err := resolver.Resolve(spec)
		if err != nil {
			// A no-match specifier is a hard failure; the resolver's error
			// already lists every candidate tried.
			return err
		}

		if res.Origin == forgemod.OriginLocal && !aliasChecked {
			aliasChecked = true
			entry, err := forgemod.EnsureAlias(a.sharedDir, a.projectRoot)
			if err != nil {
				return issue.WrapWithOperation(err, "prepare project alias")
			}
			if entry.Conflict {
				a.logger.Warn("project alias points at a different directory; loading local modules by real path",
					"alias", entry.Path,
					"existing", entry.ExistingTarget,
					"expected", entry.Target)
			} else {
				alias = entry
			}
		}

		mod, err := a.runtime.LoadModule(res, alias)
		if err != nil {
			return issue.NewErrorContext().
				WithOperation("load module").
				WithResource(spec).
				WithSuggestion("Run with --debug for the full error chain").
				Wrap(err).
				BuildError()
		}

		a.registry.AddModule(mod)
		a.modules = append(a.modules, &loadedModule{Resolved: res, Module: mod})
	}

	return nil
}

// close releases per-invocation resources.
func (a *app) close() {
	if a.runtime != nil {
		a.runtime.Close()
	}
}

// configView is the read-only configuration map handed to dispatched
// commands.
func (a *app) configView() map[string]any {
	settings := make(map[string]any, len(a.cfg.Settings))
	for name, s := range a.cfg.Settings {
		settings[name] = s
	}
	return map[string]any{
		"modules":      a.cfg.Modules,
		"dependencies": a.cfg.Dependencies,
		"settings":     settings,
		"install_mode": a.cfg.InstallMode,
		"shared_dir":   a.sharedDir,
		"log": map[string]any{
			"level":  a.cfg.Log.Level,
			"format": a.cfg.Log.Format,
			"color":  a.cfg.Log.Color,
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
