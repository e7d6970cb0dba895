package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/teamboard/teamboard/internal/logging"
	"github.com/teamboard/teamboard/internal/merge"
	"github.com/teamboard/teamboard/pkg/models"
)

// RecordsFileName is the name of the team-records document in the store.
const RecordsFileName = "team-records.json"

// TeamRecords is the persisted team/project document.
type TeamRecords struct {
	LastUpdate time.Time                           `json:"lastUpdate"`
	Projects   map[string]models.ProjectAssignment `json:"projects"`
}

// Overlay is the locally cached partial record holding edits not yet
// confirmed to be reflected in the remote baseline. It is created on any
// local edit, merged into the working model on every load, and cleared
// only by an explicit fresh authoritative load.
type Overlay struct {
	UpdatedAt time.Time                           `json:"updatedAt"`
	Projects  map[string]models.ProjectAssignment `json:"projects"`
}

// Records manages the team-records document: remote baseline in the
// Store, local overlay on disk, merged view for callers.
type Records struct {
	store       Store
	overlayPath string
}

// NewRecords returns a Records service persisting its overlay at
// overlayPath.
func NewRecords(s Store, overlayPath string) *Records {
	return &Records{store: s, overlayPath: overlayPath}
}

// Load fetches the remote baseline and overlays any cached local edits.
// A missing remote document yields an empty baseline rather than an
// error. The overlay is left in place: it is only cleared explicitly.
func (r *Records) Load(ctx context.Context) (map[string]models.ProjectAssignment, error) {
	baseline := map[string]models.ProjectAssignment{}

	content, err := r.store.LoadFile(ctx, RecordsFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load team records: %w", err)
	}
	if content != nil {
		var doc TeamRecords
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("team records document is malformed: %w", err)
		}
		if doc.Projects != nil {
			baseline = doc.Projects
		}
	}

	overlay, err := r.loadOverlay()
	if err != nil {
		return nil, err
	}
	if overlay == nil {
		return merge.Assignments(baseline, nil), nil
	}

	logging.Debug("applying cached overlay",
		"projects", len(overlay.Projects), "updated_at", overlay.UpdatedAt)
	return merge.Assignments(baseline, overlay.Projects), nil
}

// Save writes the merged project map back as the new authoritative
// baseline and clears the overlay, which it now supersedes.
func (r *Records) Save(ctx context.Context, projects map[string]models.ProjectAssignment) error {
	doc := TeamRecords{
		LastUpdate: time.Now().UTC(),
		Projects:   projects,
	}
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode team records: %w", err)
	}
	if err := SaveFile(ctx, r.store, RecordsFileName, content); err != nil {
		return err
	}
	return r.ClearOverlay()
}

// RecordEdit stores a local edit in the overlay and appends a history
// entry to the edited project. The edit reaches the remote store on the
// next Save.
func (r *Records) RecordEdit(projectID string, edit models.ProjectAssignment, member, change string) error {
	overlay, err := r.loadOverlay()
	if err != nil {
		return err
	}
	if overlay == nil {
		overlay = &Overlay{Projects: map[string]models.ProjectAssignment{}}
	}

	existing := overlay.Projects[projectID]
	merged := merge.Assignments(
		map[string]models.ProjectAssignment{projectID: existing},
		map[string]models.ProjectAssignment{projectID: edit},
	)
	rec := merged[projectID]
	rec.MemberHistory = append(rec.MemberHistory, models.HistoryEntry{
		At:     time.Now().UTC(),
		Member: member,
		Change: change,
	})
	overlay.Projects[projectID] = rec
	overlay.UpdatedAt = time.Now().UTC()

	return r.saveOverlay(overlay)
}

// ClearOverlay drops the cached overlay. Called when a fresh
// authoritative state supersedes the local edits.
func (r *Records) ClearOverlay() error {
	err := os.Remove(r.overlayPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear overlay: %w", err)
	}
	return nil
}

func (r *Records) loadOverlay() (*Overlay, error) {
	content, err := os.ReadFile(r.overlayPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay: %w", err)
	}

	var overlay Overlay
	if err := json.Unmarshal(content, &overlay); err != nil {
		// A corrupt overlay would poison every future merge; better to
		// drop the local edits than to fail all loads.
		logging.Warn("discarding unreadable overlay", "path", r.overlayPath, "error", err)
		return nil, nil
	}
	if overlay.Projects == nil {
		overlay.Projects = map[string]models.ProjectAssignment{}
	}
	return &overlay, nil
}

func (r *Records) saveOverlay(overlay *Overlay) error {
	content, err := json.MarshalIndent(overlay, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.overlayPath), 0o755); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	if err := os.WriteFile(r.overlayPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return nil
}
