// Package storage owns the uploaded image assets. Files live under a root
// directory partitioned by resource kind; records reference assets by the
// generated filename only, never by path.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Asset kinds, one subdirectory each.
const (
	KindCategories = "categories"
	KindVideos     = "videos"
	KindOthers     = "others"
)

// Store saves and removes uploaded image files.
type Store struct {
	root string
}

// NewStore creates the upload directories and returns a store rooted at root.
func NewStore(root string) (*Store, error) {
	for _, kind := range []string{KindCategories, KindVideos, KindOthers} {
		if err := os.MkdirAll(filepath.Join(root, kind), 0755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory for %s: %w", kind, err)
		}
	}
	return &Store{root: root}, nil
}

// Save writes the uploaded content under the given kind. The stored filename
// is derived from the current timestamp plus the original extension, and is
// what the caller must persist on the record.
func (s *Store) Save(kind, originalName string, r io.Reader) (string, error) {
	name := strconv.FormatInt(time.Now().UnixMilli(), 10) + filepath.Ext(filepath.Base(originalName))

	f, err := os.Create(filepath.Join(s.root, kind, name))
	if err != nil {
		return "", fmt.Errorf("failed to create asset file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write asset file: %w", err)
	}
	return name, nil
}

// Remove deletes an asset by kind and name. A missing file is not an error,
// so concurrent deletes of the same asset stay idempotent.
func (s *Store) Remove(kind, name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, kind, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the on-disk path of an asset.
func (s *Store) Path(kind, name string) string {
	return filepath.Join(s.root, kind, filepath.Base(name))
}

// Root returns the upload root directory.
func (s *Store) Root() string {
	return s.root
}
