package report

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/vvka-141/genmeta/internal/files/filesystem"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// Save writes text to dir/name through a temporary file and a rename, so a
// reader never sees a half-written report. An empty name uses
// DefaultOutputFilename. It returns the final path.
func Save(fs filesystem.Writer, dir, name, text string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = genmeta.DefaultOutputFilename
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", &genmeta.SourceError{
			Path:    name,
			Message: "output filename must not contain a directory",
			Hint:    "Put the directory in output_path and only the file name in output_filename.",
			Err:     genmeta.ErrInvalidConfig,
		}
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}

	target := filepath.Join(dir, name)
	fail := func(msg string, err error) (string, error) {
		return "", &genmeta.SourceError{
			Path:    target,
			Message: msg,
			Hint:    "Check that output_path exists or can be created, and is writable.",
			Err:     errors.Join(genmeta.ErrWrite, err),
		}
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fail("could not create output directory", err)
	}
	tmp := target + ".tmp"
	if err := fs.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fail("could not write report", err)
	}
	if err := fs.Rename(tmp, target); err != nil {
		_ = fs.Remove(tmp)
		return fail("could not move report into place", err)
	}
	return target, nil
}
