package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"copyjob/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
}

func TestLoadDefaultsToPendingAndWritesFile(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Load([]string{"docs", "photos"}))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "docs", all[0].Name)
	assert.Equal(t, model.JobStatusPending, all[0].Status)
	assert.Equal(t, model.JobStatusPending, all[1].Status)

	_, err := os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestLoadMergesPersistedAndDropsUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := NewStore(path, zap.NewNop())
	require.NoError(t, first.Load([]string{"docs", "gone"}))
	require.NoError(t, first.Update("docs", func(st *model.JobState) {
		st.Status = model.JobStatusInactive
		st.TotalFiles = 4
		st.TotalBytes = 400
	}))

	second := NewStore(path, zap.NewNop())
	require.NoError(t, second.Load([]string{"docs", "fresh"}))

	docs, ok := second.Get("docs")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusInactive, docs.Status)
	assert.Equal(t, 4, docs.TotalFiles)

	fresh, ok := second.Get("fresh")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusPending, fresh.Status)

	_, ok = second.Get("gone")
	assert.False(t, ok)

	onDisk, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, onDisk, 2)
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{{{"), 0644))

	require.NoError(t, s.Load([]string{"docs"}))

	st, ok := s.Get("docs")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusPending, st.Status)

	onDisk, err := ReadFile(s.Path())
	require.NoError(t, err)
	assert.Len(t, onDisk, 1)
}

func TestUpdateRoundTrips(t *testing.T) {
	s := newTestStore(t)
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return stamp }

	require.NoError(t, s.Update("docs", func(st *model.JobState) {
		st.Status = model.JobStatusActive
		st.TotalFiles = 2
		st.TotalBytes = 30
		st.FilesRemaining = 1
		st.BytesRemaining = 20
		st.CurrentSourceFile = "/src/sub/b.txt"
		st.CurrentTargetFile = "/dst/sub/b.txt"
	}))

	want, ok := s.Get("docs")
	require.True(t, ok)
	assert.True(t, want.LastActionTime.Equal(stamp))

	reloaded := NewStore(s.Path(), zap.NewNop())
	require.NoError(t, reloaded.Load([]string{"docs"}))

	got, ok := reloaded.Get("docs")
	require.True(t, ok)
	assert.True(t, got.LastActionTime.Equal(want.LastActionTime))
	got.LastActionTime = want.LastActionTime
	assert.Equal(t, want, got)
}

func TestUpdateCreatesMissingState(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Update("new", nil))

	st, ok := s.Get("new")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusPending, st.Status)
}

func TestRenameCarriesState(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update("old", func(st *model.JobState) {
		st.Status = model.JobStatusInactive
		st.TotalFiles = 7
	}))

	require.NoError(t, s.Rename("old", "new"))

	_, ok := s.Get("old")
	assert.False(t, ok)

	st, ok := s.Get("new")
	require.True(t, ok)
	assert.Equal(t, "new", st.Name)
	assert.Equal(t, 7, st.TotalFiles)
}

func TestRemoveThenReAddStartsFresh(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update("docs", func(st *model.JobState) {
		st.Status = model.JobStatusInactive
		st.TotalFiles = 3
	}))

	require.NoError(t, s.Remove("docs"))
	_, ok := s.Get("docs")
	assert.False(t, ok)

	require.NoError(t, s.Update("docs", nil))
	st, _ := s.Get("docs")
	assert.Equal(t, model.JobStatusPending, st.Status)
	assert.Zero(t, st.TotalFiles)
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update("docs", nil))

	st, _ := s.Get("docs")
	st.TotalFiles = 99

	again, _ := s.Get("docs")
	assert.Zero(t, again.TotalFiles)
}
