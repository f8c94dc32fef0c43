// Package source loads container images and stores extracted files. All
// access goes through an afero.Fs so callers can swap in an in-memory tree.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Source reads and writes files on one filesystem.
type Source struct {
	fs afero.Fs
}

// New wraps fs. A nil fs means the host filesystem.
func New(fs afero.Fs) *Source {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Source{fs: fs}
}

// Load reads the whole image at path into memory. Decoding needs the full
// buffer, so nothing is streamed.
func (s *Source) Load(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return data, nil
}

// Store writes data to path, creating parent directories.
func (s *Source) Store(path string, data []byte) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// StoreUnder writes data to a slash-separated rel path inside dir, refusing
// paths that would escape dir.
func (s *Source) StoreUnder(dir, rel string, data []byte) error {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to write %q outside %s", rel, dir)
	}
	return s.Store(filepath.Join(dir, clean), data)
}
