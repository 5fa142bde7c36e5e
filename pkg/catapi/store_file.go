package catapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const tmpSuffix = ".tmp"

// FileStore keeps one file per entry in a directory.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates the directory if needed. A nil fs selects the OS file system.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		return nil, errors.New("cache directory is not set")
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

// Path returns the file that holds the entry name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Get(_ context.Context, name string) ([]byte, time.Time, error) {
	path := s.Path(name)
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, err
	}
	return data, info.ModTime(), nil
}

// Put writes to a temporary file and renames it over the entry.
func (s *FileStore) Put(_ context.Context, name string, data []byte) error {
	tmp, err := afero.TempFile(s.fs, s.dir, name+"-*"+tmpSuffix)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.Path(name)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(s.Path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) Entries(_ context.Context) (int64, error) {
	var n int64
	err := s.walk(func(string, os.FileInfo) error {
		n++
		return nil
	})
	return n, err
}

func (s *FileStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	var stale []string
	err := s.walk(func(path string, info os.FileInfo) error {
		if info.ModTime().Before(cutoff) {
			stale = append(stale, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for i, path := range stale {
		if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return i, fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return len(stale), nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := s.fs.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

// walk visits the entry files directly inside the store directory.
func (s *FileStore) walk(fn func(path string, info os.FileInfo) error) error {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, info := range infos {
		if info.IsDir() || strings.HasSuffix(info.Name(), tmpSuffix) {
			continue
		}
		if err := fn(filepath.Join(s.dir, info.Name()), info); err != nil {
			return err
		}
	}
	return nil
}
