package fingerprint

import (
	"context"
	"os"
	"path/filepath"

	"warntrace/internal/errors"
)

// SourceReader loads the text of the file an issue refers to.
type SourceReader interface {
	ReadSource(ctx context.Context, fileName string) ([]byte, error)
}

// DirSource reads files relative to a repository root. Absolute file names
// are used as is.
type DirSource struct {
	Root string
}

// ReadSource implements SourceReader.
func (s DirSource) ReadSource(ctx context.Context, fileName string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := fileName
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, filepath.FromSlash(fileName))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.SourceUnavailable, "cannot read "+fileName, err)
	}
	return data, nil
}

// MemorySource serves sources from memory, keyed by file name.
type MemorySource map[string][]byte

// ReadSource implements SourceReader.
func (s MemorySource) ReadSource(ctx context.Context, fileName string) ([]byte, error) {
	data, ok := s[fileName]
	if !ok {
		return nil, errors.New(errors.SourceUnavailable, "no source for "+fileName, os.ErrNotExist)
	}
	return data, nil
}
