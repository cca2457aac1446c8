// Package fixture stores sample documents on disk and prunes the ones that
// no longer affect the aggregate schema.
package fixture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ryn-cx/gapi/document"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrStorage marks fixture directory and file failures.
var ErrStorage = errors.New("fixture storage error")

// Store keeps fixtures as one JSON document per file under a per-entity
// directory beneath the root.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// EntityDir returns the directory that holds an entity's fixtures.
func (s *Store) EntityDir(entity string) string {
	return filepath.Join(s.root, entity)
}

// Save writes a document as a fixture file and returns its path. The
// entity directory is created on demand.
func (s *Store) Save(entity, name string, v any) (string, error) {
	dir := s.EntityDir(entity)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrStorage, dir, err)
	}

	data, err := document.EncodeIndent(v)
	if err != nil {
		return "", fmt.Errorf("encoding fixture %s: %w", name, err)
	}

	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrStorage, path, err)
	}

	return path, nil
}

// Files returns the entity's fixture files sorted by name. A missing
// entity directory yields an empty list, not an error.
func (s *Store) Files(entity string) ([]string, error) {
	return ListDir(s.EntityDir(entity))
}

// ListDir returns the *.json files directly inside dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrStorage, dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", ErrStorage, dir, err)
	}

	sort.Strings(files)

	return files, nil
}

// Load reads and decodes a fixture file.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorage, path, err)
	}

	v, err := document.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}

	return v, nil
}
