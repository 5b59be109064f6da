// SPDX-License-Identifier: MPL-2.0

package state

import (
	"path/filepath"
	"sort"
	"testing"
)

func TestStoreRoundtrip(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q, want inside %q", s.Path(), dir)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty store reported a value")
	}

	if err := s.Set("last_deploy", "v1.2.3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("count", 3); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Values must survive a fresh Open (a new invocation).
	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.GetString("last_deploy"); got != "v1.2.3" {
		t.Errorf("GetString = %q, want v1.2.3", got)
	}
	// JSON numbers decode as float64.
	if v, ok := reopened.Get("count"); !ok || v.(float64) != 3 {
		t.Errorf("Get(count) = %v, %v, want 3", v, ok)
	}

	keys := reopened.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "count" || keys[1] != "last_deploy" {
		t.Errorf("Keys = %v", keys)
	}
}

func TestStoreDelete(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get("k"); ok {
		t.Error("key still present after Delete")
	}

	// Deleting a missing key is a no-op.
	if err := s.Delete("k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reopened.Get("k"); ok {
		t.Error("deleted key came back after reopen")
	}
}

func TestStoreGetStringTypeMismatch(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("n", 42); err != nil {
		t.Fatal(err)
	}
	if got := s.GetString("n"); got != "" {
		t.Errorf("GetString on non-string = %q, want empty", got)
	}
}
