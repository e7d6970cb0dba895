package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirStore is a Store backed by a local directory. File names double as
// ids. Used by tests and offline runs; the semantics mirror DriveStore.
type DirStore struct {
	dir string
}

// NewDirStore returns a DirStore rooted at dir, creating it if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %q: %w", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

func (d *DirStore) path(name string) string {
	return filepath.Join(d.dir, filepath.Base(name))
}

// FindFile returns the name itself as the id when the file exists.
func (d *DirStore) FindFile(_ context.Context, name string) (string, error) {
	_, err := os.Stat(d.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", name, err)
	}
	return name, nil
}

// CreateFile writes a new file. Creating a file that already exists is an
// error, matching the remote store where it would produce a duplicate.
func (d *DirStore) CreateFile(ctx context.Context, name string, content []byte) (string, error) {
	if id, err := d.FindFile(ctx, name); err != nil {
		return "", err
	} else if id != "" {
		return "", fmt.Errorf("file %q already exists", name)
	}
	if err := os.WriteFile(d.path(name), content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", name, err)
	}
	return name, nil
}

// UpdateFile replaces the content of an existing file.
func (d *DirStore) UpdateFile(_ context.Context, id string, content []byte) error {
	if _, err := os.Stat(d.path(id)); err != nil {
		return fmt.Errorf("cannot update %q: %w", id, err)
	}
	if err := os.WriteFile(d.path(id), content, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", id, err)
	}
	return nil
}

// LoadFile returns the file's content, or (nil, nil) when absent.
func (d *DirStore) LoadFile(_ context.Context, name string) ([]byte, error) {
	content, err := os.ReadFile(d.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	return content, nil
}
