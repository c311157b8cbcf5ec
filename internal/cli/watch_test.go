package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/genmeta/internal/testing/fixtures"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

func TestWatchCmd_Errors(t *testing.T) {
	t.Run("no directory configured", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, _, err := execute(t, "", "watch")
		require.Error(t, err)
		assert.Equal(t, genmeta.ExitNotFound, genmeta.ExitCodeForError(err))
	})

	t.Run("missing directory", func(t *testing.T) {
		_, _, err := execute(t, "", "watch", filepath.Join(t.TempDir(), "gone"))
		require.Error(t, err)
		assert.Equal(t, genmeta.ExitNotFound, genmeta.ExitCodeForError(err))
	})
}

func TestWatchCmd_ReportsAndSaves(t *testing.T) {
	dir := t.TempDir()
	saveDir := t.TempDir()

	orig := watchContext
	defer func() { watchContext = orig }()
	watchContext = func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), 2*time.Second)
	}

	img := filepath.Join(dir, "fox.png")
	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = os.WriteFile(img, fixtures.PNG(16, 16, fixtures.TEXt("parameters", parametersText)), 0o644)
	}()

	out, _, err := execute(t, "", "watch", dir,
		"--format", "parameters", "--save", "--output-path", saveDir, "--output-filename", "last.txt")
	require.NoError(t, err)

	assert.Contains(t, out, "==> "+img+"\na red fox in snow\n")
	saved, err := os.ReadFile(filepath.Join(saveDir, "last.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Seed: 42")
}
