// SPDX-License-Identifier: MPL-2.0

package forgemod

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AliasDirName is the alias bucket root inside the shared install tree.
const AliasDirName = "aliases"

type (
	// AliasEntry is a stable symbolic reference inside the shared tree's
	// alias bucket, keyed by a hash of the project's canonical root path.
	// It is created lazily, is idempotent, and persists across invocations.
	//
	// The alias makes a project-local command directory appear to live
	// inside the shared install tree, so module files loaded through it
	// resolve the framework's shared bindings to the same loaded instance
	// the host process is already using.
	AliasEntry struct {
		// Path is the symlink inside the alias bucket.
		Path string

		// Target is the real project-local command directory.
		Target string

		// Conflict is true when the link already existed but pointed at a
		// different target (hash collision or stale state). The existing
		// link is kept; callers must surface a warning at minimum.
		Conflict bool

		// ExistingTarget is the target of the pre-existing link when
		// Conflict is true.
		ExistingTarget string
	}
)

// HashProjectRoot computes the content address for a project root: the hex
// sha256 of its canonical absolute path.
func HashProjectRoot(projectRoot string) (string, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("canonicalize project root: %w", err)
	}
	// Resolve symlinks best-effort so two spellings of one directory hash
	// identically. A missing path still hashes by its absolute form.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:]), nil
}

// AliasPath returns the alias link location for a project root hash. The
// first two hash characters bucket the entries so the alias directory never
// degenerates into one unbounded flat directory.
func AliasPath(sharedDir, hash string) string {
	return filepath.Join(sharedDir, AliasDirName, hash[:2], hash[2:])
}

// EnsureAlias creates (or verifies) the alias link for projectRoot inside
// sharedDir. Calling it twice for the same root is a no-op. When the link
// exists but points elsewhere, the existing link is kept and the returned
// entry has Conflict set; it is never silently replaced, to avoid racing
// other concurrent forge processes.
func EnsureAlias(sharedDir, projectRoot string) (*AliasEntry, error) {
	hash, err := HashProjectRoot(projectRoot)
	if err != nil {
		return nil, err
	}

	target := filepath.Join(projectRoot, LocalDirName)
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}

	entry := &AliasEntry{
		Path:   AliasPath(sharedDir, hash),
		Target: target,
	}

	if existing, err := os.Readlink(entry.Path); err == nil {
		if sameAliasTarget(existing, target) {
			return entry, nil
		}
		entry.Conflict = true
		entry.ExistingTarget = existing
		return entry, nil
	}

	if err := os.MkdirAll(filepath.Dir(entry.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create alias bucket: %w", err)
	}

	if err := os.Symlink(target, entry.Path); err != nil {
		// A concurrent invocation may have won the race; re-check before
		// reporting failure.
		if existing, rlErr := os.Readlink(entry.Path); rlErr == nil {
			if sameAliasTarget(existing, target) {
				return entry, nil
			}
			entry.Conflict = true
			entry.ExistingTarget = existing
			return entry, nil
		}
		return nil, fmt.Errorf("create alias link %s: %w", entry.Path, err)
	}

	return entry, nil
}

// Rewrite maps a path under the alias target to the equivalent path under
// the alias link. It returns the input unchanged (and false) for paths
// outside the target directory.
func (a *AliasEntry) Rewrite(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, false
	}

	rel, err := filepath.Rel(a.Target, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path, false
	}
	if rel == "." {
		return a.Path, true
	}
	return filepath.Join(a.Path, rel), true
}

func sameAliasTarget(a, b string) bool {
	if a == b {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}
