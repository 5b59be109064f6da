// SPDX-License-Identifier: MPL-2.0

// Package state persists small key/value records across forge invocations.
// The store is a single JSON file in the shared tree, written atomically
// (temp file + rename) so a crash mid-write never leaves a torn file.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the state file name inside the shared tree.
const FileName = "state.json"

// Store is a file-backed key/value store. It is loaded once per invocation;
// Set persists immediately.
type Store struct {
	path   string
	values map[string]any
}

// Open loads the store at dir/state.json, creating an empty store when the
// file does not exist yet.
func Open(dir string) (*Store, error) {
	s := &Store{
		path:   filepath.Join(dir, FileName),
		values: make(map[string]any),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", s.path, err)
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Get returns the value for key and whether it exists.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the value for key as a string, or "" when absent or not
// a string.
func (s *Store) GetString(key string) string {
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return ""
}

// Set stores key=value and persists the store.
func (s *Store) Set(key string, value any) error {
	s.values[key] = value
	return s.save()
}

// Delete removes key and persists the store. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.save()
}

// Keys returns all keys currently in the store.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return writeFileAtomic(s.path, data, 0o644)
}

// writeFileAtomic writes data to path via a temp file in the same directory
// and renames it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	_ = tmp.Chmod(perm)

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	committed = true
	return nil
}
