// Package loader reads configuration sources into generic maps: TOML
// files (with @include) and FOLIO_* environment variables. Typed decoding
// happens in package config.
package loader

import (
	"io/fs"
	"os"
)

// Loader reads one configuration source. A missing source yields a nil
// map and no error.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is the file access loaders need. Tests substitute
// fstest.MapFS through FromFS.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FromFS adapts an fs.FS.
func FromFS(fsys fs.FS) FileSystem {
	return fsFS{fsys}
}

type fsFS struct{ fsys fs.FS }

func (f fsFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(f.fsys, path)
}
