package editor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFileWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := NewFileWatcher(path, 20*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	select {
	case <-w.Changes():
		t.Fatal("change reported for another file")
	case <-time.After(200 * time.Millisecond):
	}

	// several quick writes collapse into one notification
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"SceneObjects":[]}`), 0o644))
	}
	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-w.Changes():
		t.Fatal("writes were not coalesced")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileWatcherMissingDirectory(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "scene.json"), DefaultSettle, nil)
	require.Error(t, err)
}
