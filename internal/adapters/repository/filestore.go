package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps each artifact as <dir>/<name>.json.
type FileStore struct {
	dir  string
	perm os.FileMode
}

// NewFileStore returns a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string, opts ...Option) *FileStore {
	o := newOptions(opts)
	return &FileStore{dir: dir, perm: o.perm}
}

// FileName returns the file an artifact is stored in.
func FileName(name string) string { return name + ".json" }

func (s *FileStore) Name() string     { return "file" }
func (s *FileStore) Location() string { return s.dir }

func (s *FileStore) Read(ctx context.Context, names []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(names))
	for _, n := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, FileName(n)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", n, err)
		}
		out[n] = data
	}
	return out, nil
}

// Write stages every blob in a temp file and renames them into place, so a
// reader never sees a partially written artifact.
func (s *FileStore) Write(ctx context.Context, blobs map[string][]byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	staged := make(map[string]string, len(blobs))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()
	for name, data := range blobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := os.CreateTemp(s.dir, "."+name+"-*")
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		staged[name] = f.Name()
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return fmt.Errorf("stage %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		if err := os.Chmod(f.Name(), s.perm); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}
	for name, tmp := range staged {
		if err := os.Rename(tmp, filepath.Join(s.dir, FileName(name))); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		delete(staged, name)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
