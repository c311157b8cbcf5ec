package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// diskEntry is a File backed by a path on the local disk.
type diskEntry struct {
	path string
	rel  string
	info fs.FileInfo
}

func (e *diskEntry) Path() string                 { return e.path }
func (e *diskEntry) RelativePath() string         { return e.rel }
func (e *diskEntry) Info() FileInfo               { return e.info }
func (e *diskEntry) ReadContent() ([]byte, error) { return os.ReadFile(e.path) }

type diskDir struct {
	root string
}

func (d *diskDir) Path() string { return d.root }

// Walk visits root and everything below it in lexical order. Entries whose
// metadata cannot be read are reported to fn as errors.
func (d *diskDir) Walk(fn func(File, error) error) error {
	return filepath.WalkDir(d.root, func(path string, de fs.DirEntry, walkErr error) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("walk callback panicked at %s: %v", path, r)
			}
		}()

		if walkErr != nil {
			return fn(nil, fmt.Errorf("%s: %w", path, walkErr))
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			return fn(nil, fmt.Errorf("%s: %w", path, infoErr))
		}
		rel, relErr := filepath.Rel(d.root, path)
		if relErr != nil {
			return fn(nil, fmt.Errorf("relative path of %s: %w", path, relErr))
		}
		return fn(&diskEntry{path: path, rel: rel, info: info}, nil)
	})
}

// OSFileSystem reads and writes the local disk.
type OSFileSystem struct{}

func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Open returns the directory at path, made absolute.
func (*OSFileSystem) Open(path string) (Directory, error) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return nil, err
	case !info.IsDir():
		return nil, &fs.PathError{Op: "open", Path: path, Err: errors.New("not a directory")}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path of %s: %w", path, err)
	}
	return &diskDir{root: abs}, nil
}

func (*OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (*OSFileSystem) Stat(path string) (FileInfo, error)   { return os.Stat(path) }

func (*OSFileSystem) ReadDir(path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	infos := make([]FileInfo, len(entries))
	for i, de := range entries {
		if infos[i], err = de.Info(); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

func (*OSFileSystem) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (*OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Rename replaces newPath atomically on the same volume.
func (*OSFileSystem) Rename(oldPath, newPath string) error { return os.Rename(oldPath, newPath) }

func (*OSFileSystem) Remove(path string) error { return os.Remove(path) }
