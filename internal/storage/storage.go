package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrFileTooLarge is returned when an upload exceeds its size bound.
var ErrFileTooLarge = errors.New("file too large")

// ErrObjectNotFound is returned by backends when an object does not exist.
// Removing a missing object is treated as a no-op by the Store wrapper.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Store is the asset store: it wraps an ObjectStorage backend with
// upload naming and size-limit semantics. Every stored file is owned by
// exactly one record reference (a post's thumbnail or a user's avatar).
type Store struct {
	backend ObjectStorage
}

// NewStore constructs a Store over the provided backend.
func NewStore(backend ObjectStorage) *Store {
	return &Store{backend: backend}
}

// EnsureBucket ensures the backing bucket or directory exists.
func (s *Store) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Save persists an uploaded file under a collision-resistant name that
// preserves the original extension, and returns the generated name.
// It fails with ErrFileTooLarge before touching the backend when data
// exceeds maxSize.
func (s *Store) Save(ctx context.Context, data []byte, originalName string, maxSize int64) (string, error) {
	if int64(len(data)) > maxSize {
		return "", ErrFileTooLarge
	}

	name := uniqueName(originalName)
	if err := s.backend.Put(ctx, name, bytes.NewReader(data), int64(len(data)), contentTypeFor(name)); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored file. A file that is already gone is not an
// error; other backend failures are returned for the caller to decide.
func (s *Store) Remove(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	err := s.backend.Delete(ctx, name)
	if err != nil && !errors.Is(err, ErrObjectNotFound) {
		return err
	}
	return nil
}

// Open returns a reader for a stored file.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, name)
}

// Bucket returns the backend's bucket or directory name.
func (s *Store) Bucket() string {
	return s.backend.Bucket()
}

func uniqueName(originalName string) string {
	base := filepath.Base(strings.TrimSpace(originalName))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" || stem == "." {
		stem = "file"
	}
	return stem + "-" + uuid.NewString() + ext
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
