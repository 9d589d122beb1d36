package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"copyjob/internal/backup"
	"copyjob/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	calls chan []string
}

func (f *fakeRunner) RunNames(names []string) ([]backup.Report, error) {
	f.calls <- names
	return nil, nil
}

func TestWatcherRunsJobOnChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0755))

	runner := &fakeRunner{calls: make(chan []string, 4)}
	w, err := New(runner, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Add(model.Job{Name: "docs", SourcePath: src, TargetPath: filepath.Join(dir, "dst")}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "a.txt"), []byte("hello"), 0644))

	select {
	case names := <-runner.calls:
		assert.Equal(t, []string{"docs"}, names)
	case <-time.After(5 * time.Second):
		t.Fatal("job was not triggered")
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherAddMissingSource(t *testing.T) {
	w, err := New(&fakeRunner{calls: make(chan []string, 1)}, time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	err = w.Add(model.Job{Name: "ghost", SourcePath: filepath.Join(t.TempDir(), "nope"), TargetPath: "/tmp/x"})
	assert.Error(t, err)
}
