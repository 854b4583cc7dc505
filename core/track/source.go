package track

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source opens the raw bytes of a model track by locator.
type Source interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// DirSource reads tracks from a directory tree on local disk.
type DirSource struct {
	Root string
}

// NewDirSource returns a Source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Root: dir}
}

func (s *DirSource) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Root, filepath.FromSlash(locator)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &TrackNotFoundError{Locator: locator, Reason: "no such file", Err: err}
		}
		return nil, &TrackNotFoundError{Locator: locator, Err: err}
	}
	return f, nil
}
