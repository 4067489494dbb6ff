package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestIsRelevantEvent(t *testing.T) {
	t.Parallel()

	w, err := New(DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	require.True(t, w.isRelevantEvent(fsnotify.Event{Name: "views/list.jdsl", Op: fsnotify.Write}))
	require.True(t, w.isRelevantEvent(fsnotify.Event{Name: "data.YAML", Op: fsnotify.Create}))
	require.False(t, w.isRelevantEvent(fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}))
	require.False(t, w.isRelevantEvent(fsnotify.Event{Name: "list.jdsl", Op: fsnotify.Chmod}))
}

func TestWatcherSignalsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	nested := filepath.Join(dir, "partials")
	require.NoError(t, os.Mkdir(nested, 0o755))

	cfg := DefaultConfig(dir)
	cfg.DebounceDur = 20 * time.Millisecond
	w, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	changes, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(nested, "row.jdsl"), []byte("<j:template id=\"row\"/>"), 0o644))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a change notification")
	}
}

func TestStartFailsForMissingPath(t *testing.T) {
	t.Parallel()

	w, err := New(DefaultConfig(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	_, err = w.Start()
	require.Error(t, err)
}
