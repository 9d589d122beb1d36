package backup

import (
	"path/filepath"
	"testing"

	"copyjob/internal/db"
	"copyjob/internal/model"
	"copyjob/internal/repository"
	"copyjob/internal/state"
	"copyjob/internal/translog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, maxJobs int) (*Manager, *state.Store, *translog.Log) {
	t.Helper()

	dir := t.TempDir()
	gdb, err := db.Open(filepath.Join(dir, "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	tlog, err := translog.New(filepath.Join(dir, "logs"), zap.NewNop())
	require.NoError(t, err)

	states := state.NewStore(filepath.Join(dir, "state.json"), zap.NewNop())
	m := NewManager(repository.NewJobRepository(gdb, maxJobs), states, tlog, zap.NewNop())
	require.NoError(t, m.LoadState())

	return m, states, tlog
}

func TestManagerAddCreatesPendingState(t *testing.T) {
	m, states, tlog := newTestManager(t, 5)

	created, err := m.Add(model.Job{Name: "docs", SourcePath: "/s", TargetPath: "/t"})
	require.NoError(t, err)
	assert.Equal(t, model.JobKindFull, created.Kind)

	st, ok := states.Get("docs")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusPending, st.Status)

	records, err := tlog.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.ActionJobCreated, records[0].ActionType)
}

func TestManagerAddRespectsCap(t *testing.T) {
	m, _, _ := newTestManager(t, 1)

	_, err := m.Add(model.Job{Name: "a", SourcePath: "/s", TargetPath: "/t"})
	require.NoError(t, err)

	_, err = m.Add(model.Job{Name: "b", SourcePath: "/s", TargetPath: "/t"})
	assert.ErrorIs(t, err, repository.ErrMaxJobsReached)
}

func TestManagerAddValidates(t *testing.T) {
	m, _, _ := newTestManager(t, 5)

	_, err := m.Add(model.Job{Name: "a", TargetPath: "/t"})
	assert.Error(t, err)
}

func TestManagerRenameCarriesState(t *testing.T) {
	m, states, _ := newTestManager(t, 5)
	_, err := m.Add(model.Job{Name: "old", SourcePath: "/s", TargetPath: "/t"})
	require.NoError(t, err)
	require.NoError(t, states.Update("old", func(st *model.JobState) {
		st.Status = model.JobStatusInactive
		st.TotalFiles = 9
	}))

	_, err = m.Update("old", model.Job{Name: "new", SourcePath: "/s2", TargetPath: "/t2"})
	require.NoError(t, err)

	_, ok := states.Get("old")
	assert.False(t, ok)
	st, ok := states.Get("new")
	require.True(t, ok)
	assert.Equal(t, 9, st.TotalFiles)
}

func TestManagerRemoveThenReAddStartsFresh(t *testing.T) {
	m, states, _ := newTestManager(t, 5)
	_, err := m.Add(model.Job{Name: "docs", SourcePath: "/s", TargetPath: "/t"})
	require.NoError(t, err)
	require.NoError(t, states.Update("docs", func(st *model.JobState) {
		st.Status = model.JobStatusInactive
		st.TotalFiles = 3
	}))

	require.NoError(t, m.Remove("docs"))
	_, ok := states.Get("docs")
	assert.False(t, ok)

	_, err = m.Add(model.Job{Name: "docs", SourcePath: "/s", TargetPath: "/t"})
	require.NoError(t, err)

	st, ok := states.Get("docs")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusPending, st.Status)
	assert.Zero(t, st.TotalFiles)
}

func TestManagerRemoveMissing(t *testing.T) {
	m, _, _ := newTestManager(t, 5)

	assert.ErrorIs(t, m.Remove("nope"), repository.ErrJobNotFound)
}
