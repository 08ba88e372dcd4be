package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps every object as a plain file directly inside one directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if it is absent and returns a store rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

// Dir returns the absolute storage directory.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Driver() string { return "local" }

// path returns the on-disk path for name after validating it.
func (s *LocalStore) path(name string) (string, error) {
	if err := ValidName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// List enumerates the directory (non-recursive) and reports regular files only.
// Entries removed between enumeration and stat are skipped.
func (s *LocalStore) List(_ context.Context) ([]Object, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		objects = append(objects, s.object(info))
	}
	return objects, nil
}

// Put creates name exclusively and copies r into it. A partially written file is
// removed when the copy fails.
func (s *LocalStore) Put(_ context.Context, name string, r io.Reader, _ string) (int64, error) {
	dst, err := s.path(name)
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, ErrExists
		}
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	written, err := io.Copy(out, r)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return written, fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return written, fmt.Errorf("close %s: %w", name, err)
	}
	return written, nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	obj, err := s.Stat(ctx, name)
	if err != nil {
		return nil, Object{}, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, fmt.Errorf("open %s: %w", name, err)
	}
	return f, obj, nil
}

func (s *LocalStore) Stat(_ context.Context, name string) (Object, error) {
	p, err := s.path(name)
	if err != nil {
		return Object{}, err
	}
	// symlinks are not stored files
	info, err := os.Lstat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Object{}, ErrNotFound
		}
		return Object{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return Object{}, ErrNotFound
	}
	return s.object(info), nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Ping verifies the storage directory still exists.
func (s *LocalStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *LocalStore) object(info fs.FileInfo) Object {
	return Object{
		Name:      info.Name(),
		Size:      info.Size(),
		CreatedAt: birthTime(filepath.Join(s.dir, info.Name()), info),
	}
}
