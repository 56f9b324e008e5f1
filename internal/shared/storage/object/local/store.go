package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"placement-backend/internal/shared/storage/object"
)

// Store keeps objects on disk under root, one directory per user and kind.
type Store struct {
	root string
}

// New returns a store rooted at root.
func New(root string) *Store {
	return &Store{root: root}
}

// Save writes through a temp file in the target directory and renames it into
// place, so a reader never sees a partial export.
func (s *Store) Save(ctx context.Context, up object.Upload, r io.Reader) (object.Stored, error) {
	key, mimeType, body, err := object.Prepare(ctx, up, r)
	if err != nil {
		return object.Stored{}, err
	}

	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return object.Stored{}, fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return object.Stored{}, fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return object.Stored{}, fmt.Errorf("write %s: %w", up.Kind, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return object.Stored{}, fmt.Errorf("rename into place: %w", err)
	}
	return object.Stored{Key: key, SizeBytes: size, MimeType: mimeType}, nil
}

// Open opens a stored object. Only keys shaped like those Save returns are
// accepted.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := object.KindOf(storageKey); err != nil {
		return nil, err
	}
	return os.Open(s.path(storageKey))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

var _ object.ObjectStore = (*Store)(nil)
