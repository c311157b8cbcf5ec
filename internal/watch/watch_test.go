package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vvka-141/genmeta/internal/logging"
	"github.com/vvka-141/genmeta/internal/testing/fixtures"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

func newTestWatcher(t *testing.T, root string, settle time.Duration) *Watcher {
	t.Helper()
	w, err := New(root, settle, logging.NewNullLogger())
	require.NoError(t, err)
	return w
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "gone"), 0, logging.NewNullLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, genmeta.ErrNotFound)
}

func TestNew_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() { _, _ = New(t.TempDir(), 0, nil) })
}

func TestHandleAndDue(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), time.Second)
	defer w.fsw.Close()

	w.handle(fsnotify.Event{Name: "/out/b.png", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/out/notes.txt", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/out/a.webp", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/out/c.png", Op: fsnotify.Remove})
	require.Len(t, w.pending, 2)

	at := time.Now()
	w.pending["/out/b.png"] = at.Add(-3 * time.Second)
	w.pending["/out/a.webp"] = at.Add(-2 * time.Second)

	assert.Equal(t, []string{"/out/b.png", "/out/a.webp"}, w.due(at), "oldest first")
	assert.Empty(t, w.pending)
	assert.Nil(t, w.due(at))
}

func TestDue_WaitsForQuiet(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), time.Second)
	defer w.fsw.Close()

	w.handle(fsnotify.Event{Name: "/out/a.png", Op: fsnotify.Create})
	assert.Nil(t, w.due(time.Now()))
	assert.Equal(t, []string{"/out/a.png"}, w.due(time.Now().Add(2*time.Second)))
}

func TestRun_ReportsNewImages(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	w := newTestWatcher(t, root, 40*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(p string) { got <- p }) }()

	sub := filepath.Join(root, "day2")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// give the watcher a moment to pick up the new directory
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.txt"), []byte("x"), 0o644))
	img := filepath.Join(sub, "ComfyUI_00001_.png")
	require.NoError(t, os.WriteFile(img, fixtures.PNG(4, 4), 0o644))

	select {
	case p := <-got:
		assert.Equal(t, img, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no image reported")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, got, "each image is reported once")
}
