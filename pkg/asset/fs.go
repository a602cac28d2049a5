package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FSBackend stores blobs as files in one directory.
type FSBackend struct {
	dir string
}

// NewFSBackend creates the directory if needed.
func NewFSBackend(dir string) (*FSBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &FSBackend{dir: dir}, nil
}

func (b *FSBackend) Name() string { return "fs" }

// Dir returns the storage directory.
func (b *FSBackend) Dir() string { return b.dir }

func (b *FSBackend) path(name string) string {
	return filepath.Join(b.dir, filepath.Base(name))
}

// Put writes to a temporary file and renames it into place.
func (b *FSBackend) Put(ctx context.Context, name string, r io.Reader, size int64, info ObjectInfo) error {
	tmp, err := os.CreateTemp(b.dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n != size {
		return fmt.Errorf("wrote %d of %d bytes", n, size)
	}
	return os.Rename(tmp.Name(), b.path(name))
}

func (b *FSBackend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(b.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (b *FSBackend) Delete(ctx context.Context, name string) error {
	err := os.Remove(b.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

var _ Backend = (*FSBackend)(nil)
