// Package store persists team/project records in a cloud file store.
// The authoritative backend is Google Drive; a local-directory backend
// serves tests and offline runs. Both satisfy the same small capability
// interface so the rest of the application never sees the difference.
package store

import (
	"context"
	"fmt"
)

// Store is the file-store capability the application depends on.
type Store interface {
	// FindFile returns the id of the named file, or "" when it does
	// not exist.
	FindFile(ctx context.Context, name string) (string, error)

	// CreateFile creates a new file with the given content and returns
	// its id.
	CreateFile(ctx context.Context, name string, content []byte) (string, error)

	// UpdateFile replaces the content of an existing file.
	UpdateFile(ctx context.Context, id string, content []byte) error

	// LoadFile returns the content of the named file, or (nil, nil)
	// when it does not exist.
	LoadFile(ctx context.Context, name string) ([]byte, error)
}

// SaveFile writes content under name, creating the file if it does not
// exist yet and updating it in place otherwise.
func SaveFile(ctx context.Context, s Store, name string, content []byte) error {
	id, err := s.FindFile(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to look up %q: %w", name, err)
	}
	if id == "" {
		if _, err := s.CreateFile(ctx, name, content); err != nil {
			return fmt.Errorf("failed to create %q: %w", name, err)
		}
		return nil
	}
	if err := s.UpdateFile(ctx, id, content); err != nil {
		return fmt.Errorf("failed to update %q: %w", name, err)
	}
	return nil
}
