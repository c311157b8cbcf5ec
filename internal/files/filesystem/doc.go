// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// The locator reads images and sidecar files through FileSystemProvider; the
// report writer saves through Writer. Both are implemented by the OS
// filesystem and by an in-memory filesystem for tests.
//
// Key interfaces:
//   - FileSystemProvider: directory walking, file reads and stats
//   - Writer: directory creation, writes and atomic renames
//   - Directory: a directory that can be traversed
//   - File: an individual file with metadata and content
//
// Implementations:
//   - OSFileSystem: production implementation using the OS filesystem
//   - MemoryFileSystem: in-memory implementation for testing
package filesystem
