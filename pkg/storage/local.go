package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalStore writes files to a filesystem rooted at a directory. The afero
// abstraction keeps it testable against an in-memory filesystem.
type LocalStore struct {
	fs   afero.Fs
	root string
}

// NewLocalStore creates a store over the OS filesystem rooted at root.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{
		fs:   afero.NewOsFs(),
		root: root,
	}
}

// NewLocalStoreWithFs creates a store over an arbitrary afero filesystem.
func NewLocalStoreWithFs(fs afero.Fs, root string) *LocalStore {
	return &LocalStore{
		fs:   fs,
		root: root,
	}
}

// Store writes the stream to root/name, hashing it on the way through.
func (s *LocalStore) Store(ctx context.Context, name string, r io.Reader) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}

	path := filepath.Join(s.root, filepath.Clean("/"+name))
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return FileInfo{}, fmt.Errorf("error creating directory: %w", err)
	}

	f, err := s.fs.Create(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("error creating file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(f, io.TeeReader(r, h))
	if err != nil {
		return FileInfo{}, fmt.Errorf("error writing file: %w", err)
	}

	return FileInfo{
		Path:     path,
		Size:     size,
		Checksum: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
