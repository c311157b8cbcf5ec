package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// memoryFile implements File for in-memory files. Content is never mutated
// in place; writes replace the whole entry.
type memoryFile struct {
	absPath string
	relPath string
	content []byte
	info    *memoryFileInfo
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

func (f *memoryFile) ReadContent() ([]byte, error) {
	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out, nil
}

// memoryDirectory implements Directory interface for in-memory filesystem
type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	entries := d.fs.entriesUnder(d.absPath)

	// Sort by path for deterministic order
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].absPath < entries[j].absPath
	})

	for _, entry := range entries {
		var callbackErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					callbackErr = fmt.Errorf("walk callback panicked at %s: %v", entry.absPath, r)
				}
			}()

			rel := strings.TrimPrefix(strings.TrimPrefix(entry.absPath, d.absPath), "/")
			if rel == "" {
				rel = "."
			}
			callbackErr = fn(&memoryFile{
				absPath: entry.absPath,
				relPath: rel,
				content: entry.content,
				info:    entry.info,
			}, nil)
		}()

		if callbackErr != nil {
			return callbackErr
		}
	}

	return nil
}

// MemoryFileSystem implements ReadWriteProvider in memory. Safe for
// concurrent use.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryFile // absolute path -> entry
	root  string
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}
	mfs.files[root] = newMemoryDir(root, time.Now())
	return mfs
}

func newMemoryDir(absPath string, modTime time.Time) *memoryFile {
	return &memoryFile{
		absPath: absPath,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			mode:    0755 | fs.ModeDir,
			modTime: modTime,
			isDir:   true,
		},
	}
}

// AddFile adds a file to the in-memory filesystem
func (mfs *MemoryFileSystem) AddFile(path string, content string) {
	mfs.AddFileWithTime(path, content, time.Now())
}

// AddFileWithTime adds a file with a specific modification time
func (mfs *MemoryFileSystem) AddFileWithTime(filePath string, content string, modTime time.Time) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.put(mfs.abs(filePath), []byte(content), 0644, modTime)
}

func (mfs *MemoryFileSystem) put(absPath string, content []byte, perm fs.FileMode, modTime time.Time) {
	rel := strings.TrimPrefix(strings.TrimPrefix(absPath, mfs.root), "/")
	mfs.files[absPath] = &memoryFile{
		absPath: absPath,
		relPath: rel,
		content: content,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    perm,
			modTime: modTime,
		},
	}
	mfs.ensureDirectoriesExist(absPath)
}

// abs resolves a path against the root, using forward slashes.
func (mfs *MemoryFileSystem) abs(p string) string {
	p = filepath.ToSlash(p)
	switch {
	case p == "" || p == ".":
		return mfs.root
	case path.IsAbs(p):
		return path.Clean(p)
	default:
		return path.Join(mfs.root, p)
	}
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(filePath string) {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" || dir == filePath {
		return
	}
	if _, exists := mfs.files[dir]; exists {
		return
	}
	mfs.files[dir] = newMemoryDir(dir, time.Now())
	mfs.ensureDirectoriesExist(dir)
}

// entriesUnder returns all files and directories under basePath.
func (mfs *MemoryFileSystem) entriesUnder(basePath string) []*memoryFile {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var entries []*memoryFile
	for p, file := range mfs.files {
		if basePath == "/" || p == basePath || strings.HasPrefix(p, basePath+"/") {
			entries = append(entries, file)
		}
	}
	return entries
}

// Open implements FileSystemProvider.Open
func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	absPath := mfs.abs(openPath)

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[absPath]
	if !exists {
		return nil, fmt.Errorf("directory not found: %s: %w", openPath, fs.ErrNotExist)
	}
	if !file.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", openPath)
	}
	return &memoryDirectory{absPath: absPath, fs: mfs}, nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[mfs.abs(filePath)]
	if !exists {
		return nil, fmt.Errorf("file not found: %s: %w", filePath, fs.ErrNotExist)
	}
	if file.info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return file.ReadContent()
}

// ReadDir implements FileSystemProvider.ReadDir. Entries are sorted by name.
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	absPath := mfs.abs(dirPath)

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	dir, exists := mfs.files[absPath]
	if !exists || !dir.info.IsDir() {
		return nil, fmt.Errorf("failed to read directory: %s: %w", dirPath, fs.ErrNotExist)
	}

	var out []FileInfo
	for p, file := range mfs.files {
		if p != absPath && path.Dir(p) == absPath {
			out = append(out, file.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[mfs.abs(statPath)]
	if !exists {
		return nil, fmt.Errorf("path not found: %s: %w", statPath, fs.ErrNotExist)
	}
	return file.info, nil
}

// MkdirAll implements Writer.MkdirAll.
func (mfs *MemoryFileSystem) MkdirAll(dirPath string, perm fs.FileMode) error {
	absPath := mfs.abs(dirPath)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if file, exists := mfs.files[absPath]; exists {
		if !file.info.IsDir() {
			return fmt.Errorf("mkdir %s: not a directory", dirPath)
		}
		return nil
	}
	mfs.files[absPath] = newMemoryDir(absPath, time.Now())
	mfs.ensureDirectoriesExist(absPath)
	return nil
}

// WriteFile implements Writer.WriteFile. The parent directory must exist.
func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	absPath := mfs.abs(filePath)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	parent, exists := mfs.files[path.Dir(absPath)]
	if !exists || !parent.info.IsDir() {
		return fmt.Errorf("write %s: parent directory: %w", filePath, fs.ErrNotExist)
	}
	if file, exists := mfs.files[absPath]; exists && file.info.IsDir() {
		return fmt.Errorf("write %s: is a directory", filePath)
	}
	content := make([]byte, len(data))
	copy(content, data)
	mfs.put(absPath, content, perm, time.Now())
	return nil
}

// Rename implements Writer.Rename for files.
func (mfs *MemoryFileSystem) Rename(oldPath, newPath string) error {
	from, to := mfs.abs(oldPath), mfs.abs(newPath)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	file, exists := mfs.files[from]
	if !exists {
		return fmt.Errorf("rename %s: %w", oldPath, fs.ErrNotExist)
	}
	if file.info.IsDir() {
		return fmt.Errorf("rename %s: directories are not supported", oldPath)
	}
	if _, exists := mfs.files[path.Dir(to)]; !exists {
		return fmt.Errorf("rename %s: parent directory: %w", newPath, fs.ErrNotExist)
	}
	delete(mfs.files, from)
	mfs.put(to, file.content, file.info.mode, file.info.modTime)
	return nil
}

// Remove implements Writer.Remove for files and empty directories.
func (mfs *MemoryFileSystem) Remove(filePath string) error {
	absPath := mfs.abs(filePath)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	file, exists := mfs.files[absPath]
	if !exists {
		return fmt.Errorf("remove %s: %w", filePath, fs.ErrNotExist)
	}
	if file.info.IsDir() {
		for p := range mfs.files {
			if strings.HasPrefix(p, absPath+"/") {
				return fmt.Errorf("remove %s: directory not empty", filePath)
			}
		}
	}
	delete(mfs.files, absPath)
	return nil
}
