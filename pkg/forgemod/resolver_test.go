// SPDX-License-Identifier: MPL-2.0

package forgemod

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeModule creates an empty module file, making parent directories as
// needed.
func writeModule(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("-- test module\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestResolver(t *testing.T) (*Resolver, string, string) {
	t.Helper()
	projectRoot := t.TempDir()
	sharedDir := t.TempDir()
	r, err := NewResolver(projectRoot, sharedDir)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r, projectRoot, sharedDir
}

func TestResolveLocalWinsOverShared(t *testing.T) {
	r, projectRoot, sharedDir := newTestResolver(t)

	local := filepath.Join(projectRoot, LocalDirName, "tools.lua")
	shared := filepath.Join(sharedDir, SharedModulesDirName, "tools.lua")
	writeModule(t, local)
	writeModule(t, shared)

	res, err := r.Resolve("tools")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Origin != OriginLocal {
		t.Errorf("Origin = %v, want %v", res.Origin, OriginLocal)
	}
	if res.Path != local {
		t.Errorf("Path = %q, want %q", res.Path, local)
	}
}

func TestResolvePackageSkipsLocalTier(t *testing.T) {
	r, projectRoot, sharedDir := newTestResolver(t)

	// A same-named file in the local tier must not shadow a package
	// reference: package specifiers never check .forge/.
	writeModule(t, filepath.Join(projectRoot, LocalDirName, "tools.lua"))
	shared := filepath.Join(sharedDir, SharedModulesDirName, "@acme", "tools.lua")
	writeModule(t, shared)

	res, err := r.Resolve("@acme/tools")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Origin != OriginShared {
		t.Errorf("Origin = %v, want %v", res.Origin, OriginShared)
	}
	if res.Path != shared {
		t.Errorf("Path = %q, want %q", res.Path, shared)
	}
}

func TestResolveInitFileFallback(t *testing.T) {
	r, _, sharedDir := newTestResolver(t)

	entry := filepath.Join(sharedDir, SharedModulesDirName, "utils", "init.lua")
	writeModule(t, entry)

	res, err := r.Resolve("utils/extra")
	if err == nil {
		t.Fatalf("Resolve(utils/extra) = %v, want not-found (only utils/init.lua exists)", res.Path)
	}

	res, err = r.Resolve("utils")
	if err != nil {
		t.Fatalf("Resolve(utils): %v", err)
	}
	if res.Path != entry {
		t.Errorf("Path = %q, want %q", res.Path, entry)
	}
}

func TestResolveProjectTierIsLastFallback(t *testing.T) {
	r, projectRoot, _ := newTestResolver(t)

	project := filepath.Join(projectRoot, ProjectModulesDirName, "tools.lua")
	writeModule(t, project)

	res, err := r.Resolve("tools")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Origin != OriginProject {
		t.Errorf("Origin = %v, want %v", res.Origin, OriginProject)
	}
}

func TestResolveNotFoundListsAllCandidates(t *testing.T) {
	r, projectRoot, sharedDir := newTestResolver(t)

	_, err := r.Resolve("missing")
	if err == nil {
		t.Fatal("Resolve succeeded, want NotFoundError")
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error type = %T, want *NotFoundError", err)
	}

	// 1 local + 2 shared + 2 project candidates for a bare specifier.
	if len(nf.Candidates) != 5 {
		t.Errorf("len(Candidates) = %d, want 5", len(nf.Candidates))
	}

	msg := nf.Error()
	for _, want := range []string{
		filepath.Join(projectRoot, LocalDirName, "missing.lua"),
		filepath.Join(sharedDir, SharedModulesDirName, "missing.lua"),
		filepath.Join(projectRoot, ProjectModulesDirName, "missing", "init.lua"),
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing candidate %q:\n%s", want, msg)
		}
	}
}
