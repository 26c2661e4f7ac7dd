package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
)

// DiskStore keeps uploaded files under a root directory on local disk.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

// fullPath resolves key inside root; ".." segments cannot climb out of it.
func (s *DiskStore) fullPath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+key)))
}

// Save writes r to key, creating parent directories on demand. A partial
// file is removed if the copy fails.
func (s *DiskStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	p := s.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("disk mkdir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("disk create: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("disk write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return fmt.Errorf("disk close: %w", err)
	}
	return nil
}

// Open returns the file contents and a content type guessed from the extension.
func (s *DiskStore) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	f, err := os.Open(s.fullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, "", ErrNotFound
	}
	ct := mime.TypeByExtension(filepath.Ext(key))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return f, ct, nil
}

// Remove deletes key. A missing file yields ErrNotFound.
func (s *DiskStore) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.fullPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
