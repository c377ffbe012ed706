package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newLocalStore(t *testing.T) *Store {
	t.Helper()

	backend, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("new local client: %v", err)
	}
	if err := backend.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	return NewStore(backend)
}

func TestSavePreservesExtension(t *testing.T) {
	store := newLocalStore(t)

	name, err := store.Save(context.Background(), []byte("img"), "photo.png", 1000)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(name, "photo-") || !strings.HasSuffix(name, ".png") {
		t.Fatalf("unexpected stored name %q", name)
	}

	path := filepath.Join(store.Bucket(), name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "img" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := newLocalStore(t)

	first, err := store.Save(context.Background(), []byte("a"), "photo.png", 1000)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := store.Save(context.Background(), []byte("b"), "photo.png", 1000)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatalf("expected unique names, both %q", first)
	}
}

func TestSaveRejectsOversized(t *testing.T) {
	store := newLocalStore(t)

	_, err := store.Save(context.Background(), make([]byte, 1001), "photo.png", 1000)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	entries, err := os.ReadDir(store.Bucket())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no stored files, found %d", len(entries))
	}
}

func TestRemove(t *testing.T) {
	store := newLocalStore(t)

	name, err := store.Save(context.Background(), []byte("img"), "photo.png", 1000)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Remove(context.Background(), name); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Bucket(), name)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file still present after remove: %v", err)
	}
}

// Removing a file that is already gone is not an error.
func TestRemoveMissingIsNoOp(t *testing.T) {
	store := newLocalStore(t)

	if err := store.Remove(context.Background(), "never-stored.png"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if err := store.Remove(context.Background(), ""); err != nil {
		t.Fatalf("remove empty name: %v", err)
	}
}

func TestOpen(t *testing.T) {
	store := newLocalStore(t)

	name, err := store.Save(context.Background(), []byte("img"), "photo.png", 1000)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	reader, err := store.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "img" {
		t.Fatalf("content mismatch: %q", data)
	}

	if _, err := store.Open(context.Background(), "missing.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalClientRejectsPathKeys(t *testing.T) {
	backend, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("new local client: %v", err)
	}

	for _, key := range []string{"../escape.png", "a/b.png", ".hidden", ""} {
		if err := backend.Delete(context.Background(), key); err == nil || errors.Is(err, ErrObjectNotFound) {
			t.Fatalf("expected invalid key error for %q, got %v", key, err)
		}
	}
}
