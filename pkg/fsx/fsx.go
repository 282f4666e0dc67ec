package fsx

import (
	"context"
	"io"
)

// FileSystem is the storage surface used for exports. Paths are relative,
// slash separated and never escape the file system root.
type FileSystem interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	WriteStream(ctx context.Context, path string, r io.Reader) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	DeleteFile(ctx context.Context, path string) error
	// Location describes where path lives, for display.
	Location(path string) string
}
