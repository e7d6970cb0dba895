package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboard/teamboard/pkg/models"
)

func newTestStore(t *testing.T) *DirStore {
	t.Helper()
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestDirStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Absent file: no id, nil content, no error.
	id, err := s.FindFile(ctx, "records.json")
	require.NoError(t, err)
	assert.Equal(t, "", id)

	content, err := s.LoadFile(ctx, "records.json")
	require.NoError(t, err)
	assert.Nil(t, content)

	// Create, then read back.
	id, err = s.CreateFile(ctx, "records.json", []byte(`{"a":1}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	content, err = s.LoadFile(ctx, "records.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(content))

	// Update in place.
	require.NoError(t, s.UpdateFile(ctx, id, []byte(`{"a":2}`)))
	content, err = s.LoadFile(ctx, "records.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(content))
}

func TestDirStoreCreateExisting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateFile(ctx, "records.json", []byte("{}"))
	require.NoError(t, err)

	_, err = s.CreateFile(ctx, "records.json", []byte("{}"))
	assert.Error(t, err)
}

func TestDirStoreUpdateMissing(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.UpdateFile(context.Background(), "nope.json", []byte("{}")))
}

func TestSaveFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// First save creates.
	require.NoError(t, SaveFile(ctx, s, "doc.json", []byte(`{"v":1}`)))
	content, err := s.LoadFile(ctx, "doc.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(content))

	// Second save updates instead of failing on the duplicate.
	require.NoError(t, SaveFile(ctx, s, "doc.json", []byte(`{"v":2}`)))
	content, err = s.LoadFile(ctx, "doc.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(content))
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `plain.json`, escapeQuery(`plain.json`))
	assert.Equal(t, `it\'s`, escapeQuery(`it's`))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
}

func TestRecordsLoadEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := NewRecords(s, filepath.Join(t.TempDir(), "overlay.json"))

	projects, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestRecordsSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := NewRecords(s, filepath.Join(t.TempDir(), "overlay.json"))

	projects := map[string]models.ProjectAssignment{
		"ErCore": {
			Members: map[string]models.MemberRecord{
				"alice": {Role: "lead", AssignedDate: "2026-02-01"},
			},
			Notes:         "pilot project",
			MemberHistory: []models.HistoryEntry{},
		},
	}
	require.NoError(t, r.Save(ctx, projects))

	loaded, err := r.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, loaded, "ErCore")
	assert.Equal(t, "lead", loaded["ErCore"].Members["alice"].Role)
	assert.Equal(t, "pilot project", loaded["ErCore"].Notes)
	assert.NotNil(t, loaded["ErCore"].MemberHistory)
}

func TestRecordsOverlayLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	overlayPath := filepath.Join(t.TempDir(), "overlay.json")
	r := NewRecords(s, overlayPath)

	// Remote baseline with one member.
	require.NoError(t, r.Save(ctx, map[string]models.ProjectAssignment{
		"ErCore": {
			Members: map[string]models.MemberRecord{
				"alice": {Role: "lead"},
				"bob":   {Role: "dev"},
			},
		},
	}))

	// A local edit changes alice's role.
	err := r.RecordEdit("ErCore", models.ProjectAssignment{
		Members: map[string]models.MemberRecord{"alice": {Role: "advisor"}},
	}, "alice", "role changed to advisor")
	require.NoError(t, err)

	// Load sees the overlay win per field; the remote-only member and
	// the history entry both survive.
	loaded, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "advisor", loaded["ErCore"].Members["alice"].Role)
	assert.Equal(t, "dev", loaded["ErCore"].Members["bob"].Role)
	require.Len(t, loaded["ErCore"].MemberHistory, 1)
	assert.Equal(t, "role changed to advisor", loaded["ErCore"].MemberHistory[0].Change)

	// Loading again still applies the overlay: merge does not clear it.
	loaded, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "advisor", loaded["ErCore"].Members["alice"].Role)

	// Saving the merged state supersedes and clears the overlay.
	require.NoError(t, r.Save(ctx, loaded))
	overlay, err := r.loadOverlay()
	require.NoError(t, err)
	assert.Nil(t, overlay)
}

func TestRecordsMalformedRemote(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateFile(ctx, RecordsFileName, []byte("not json"))
	require.NoError(t, err)

	r := NewRecords(s, filepath.Join(t.TempDir(), "overlay.json"))
	_, err = r.Load(ctx)
	assert.Error(t, err)
}

func TestTeamRecordsDocumentShape(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := NewRecords(s, filepath.Join(t.TempDir(), "overlay.json"))

	require.NoError(t, r.Save(ctx, map[string]models.ProjectAssignment{"P1": {}}))

	content, err := s.LoadFile(ctx, RecordsFileName)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.Contains(t, doc, "lastUpdate")
	assert.Contains(t, doc, "projects")
}
