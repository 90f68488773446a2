// Package storage defines the file-storage collaborator. The engine never
// reads file contents back; it stores only the metadata a FileStore returns.
package storage

import (
	"context"
	"io"
)

// FileInfo is the metadata returned by a store for a persisted byte stream.
// Checksum is an opaque string from the engine's point of view.
type FileInfo struct {
	Path     string
	Size     int64
	Checksum string
}

// FileStore persists a byte stream under a name and returns its metadata.
type FileStore interface {
	Store(ctx context.Context, name string, r io.Reader) (FileInfo, error)
}
