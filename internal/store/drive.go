package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/teamboard/teamboard/internal/logging"
)

// driveSpace is where record files live. The application data folder is
// invisible to the user's normal Drive view, which keeps the records out
// of harm's way.
const driveSpace = "appDataFolder"

// DriveStore persists files in Google Drive's application data folder.
type DriveStore struct {
	svc *drive.Service
}

// NewDriveStore builds a DriveStore from an already-authorized token
// source. Interactive authorization is the caller's problem; this layer
// only consumes tokens.
func NewDriveStore(ctx context.Context, ts oauth2.TokenSource) (*DriveStore, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveStore{svc: svc}, nil
}

// FindFile looks the named file up by exact name, skipping trashed files.
func (d *DriveStore) FindFile(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	list, err := d.svc.Files.List().
		Context(ctx).
		Q(query).
		Spaces(driveSpace).
		Fields("files(id, name)").
		PageSize(1).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search drive for %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// CreateFile creates the named file in the application data folder.
func (d *DriveStore) CreateFile(ctx context.Context, name string, content []byte) (string, error) {
	file := &drive.File{
		Name:     name,
		Parents:  []string{driveSpace},
		MimeType: "application/json",
	}
	created, err := d.svc.Files.Create(file).
		Context(ctx).
		Media(bytes.NewReader(content)).
		Fields("id").
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to create drive file %q: %w", name, err)
	}
	logging.Debug("created drive file", "name", name, "id", created.Id)
	return created.Id, nil
}

// UpdateFile replaces the content of an existing file by id.
func (d *DriveStore) UpdateFile(ctx context.Context, id string, content []byte) error {
	_, err := d.svc.Files.Update(id, &drive.File{}).
		Context(ctx).
		Media(bytes.NewReader(content)).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update drive file %s: %w", id, err)
	}
	return nil
}

// LoadFile downloads the named file's content, or (nil, nil) when it does
// not exist.
func (d *DriveStore) LoadFile(ctx context.Context, name string) ([]byte, error) {
	id, err := d.FindFile(ctx, name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	resp, err := d.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file %q: %w", name, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read drive file %q: %w", name, err)
	}
	return content, nil
}

// escapeQuery escapes the characters Drive's query language treats
// specially inside single-quoted strings.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
