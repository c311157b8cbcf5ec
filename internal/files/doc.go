// Package files groups file access for genmeta.
//
// Sub-packages:
//   - filesystem: read/write abstraction with OS and in-memory implementations
//
// # Usage
//
//	import "github.com/vvka-141/genmeta/internal/files/filesystem"
//
//	fs := filesystem.NewOSFileSystem()
//	dir, err := fs.Open("./ComfyUI/output")
//	if err != nil {
//	    return err
//	}
//	err = dir.Walk(func(f filesystem.File, err error) error {
//	    // inspect f.Path(), f.Info().ModTime()
//	    return nil
//	})
//
// The locator reads images and sidecars through filesystem.FileSystemProvider
// and the report writer saves through filesystem.Writer, so both run against
// filesystem.NewMemoryFileSystem in tests.
package files
