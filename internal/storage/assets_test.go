package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreSaveAndRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	name, err := store.Save(KindVideos, "thumbnail.png", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("expected the original extension to be kept, got %q", name)
	}
	if strings.ContainsAny(name, "/\\") {
		t.Errorf("expected a bare filename, got %q", name)
	}

	data, err := os.ReadFile(store.Path(KindVideos, name))
	if err != nil {
		t.Fatalf("read saved asset: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("content mismatch: %q", data)
	}

	if err := store.Remove(KindVideos, name); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(store.Path(KindVideos, name)); !os.IsNotExist(err) {
		t.Errorf("expected asset to be gone, stat err: %v", err)
	}

	// Removing again, or removing nothing, is not an error.
	if err := store.Remove(KindVideos, name); err != nil {
		t.Errorf("expected repeated remove to succeed: %v", err)
	}
	if err := store.Remove(KindVideos, ""); err != nil {
		t.Errorf("expected empty-name remove to succeed: %v", err)
	}
}

func TestStoreCreatesKindDirectories(t *testing.T) {
	root := t.TempDir()
	if _, err := NewStore(root); err != nil {
		t.Fatalf("create store: %v", err)
	}

	for _, kind := range []string{KindCategories, KindVideos, KindOthers} {
		info, err := os.Stat(filepath.Join(root, kind))
		if err != nil || !info.IsDir() {
			t.Errorf("expected %s directory to exist: %v", kind, err)
		}
	}
}

func TestStoreRemoveIgnoresPathTraversal(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	outside := filepath.Join(root, "secret.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := store.Remove(KindVideos, "../secret.txt"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("expected file outside the kind directory to survive: %v", err)
	}
}
